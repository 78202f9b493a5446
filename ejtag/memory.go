// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

// ReadU32 reads a single 32-bit word from the target at addr.
func (c *Context) ReadU32(addr uint32) (uint32, error) {
	out, err := c.Execute(readU32Stub(), []uint32{addr}, 1)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// WriteU32 writes a single 32-bit word to the target at addr.
func (c *Context) WriteU32(addr, value uint32) error {
	_, err := c.Execute(writeU32Stub(), []uint32{addr, value}, 0)
	return err
}

// ReadMem32 reads count words starting at addr. Per the blocksize policy
// preserved from the component it is grounded on, each PrAcc round trip
// transfers at most blockWords words; ReadMem32 issues as many Execute
// calls as needed and concatenates their output.
func (c *Context) ReadMem32(addr uint32, count int) ([]uint32, error) {
	result := make([]uint32, 0, count)
	for count > 0 {
		chunk := count
		if chunk > blockWords {
			chunk = blockWords
		}
		out, err := c.Execute(blockLoadStub(), []uint32{addr, uint32(chunk)}, chunk)
		if err != nil {
			return nil, err
		}
		result = append(result, out...)
		addr += uint32(chunk) * 4
		count -= chunk
	}
	return result, nil
}

// WriteMem32 writes values to the target, chunked at blockWords per
// Execute call the same way ReadMem32 is, using a resident loop stub
// instead of one round trip per word.
func (c *Context) WriteMem32(addr uint32, values []uint32) error {
	offset := 0
	for offset < len(values) {
		chunk := len(values) - offset
		if chunk > blockWords {
			chunk = blockWords
		}
		end := addr + uint32(offset+chunk)*4
		in := make([]uint32, 0, chunk+2)
		in = append(in, addr+uint32(offset)*4, end)
		in = append(in, values[offset:offset+chunk]...)
		if _, err := c.Execute(blockStoreStub(), in, 0); err != nil {
			return err
		}
		offset += chunk
	}
	return nil
}

// ReadMem16 reads count 16-bit halfwords starting at addr as a single
// whole-count PrAcc round trip, not split into blockWords-sized chunks.
// This mirrors the asymmetry the blocksize policy carries between 32-bit
// and narrower transfers: nothing here corrects it.
func (c *Context) ReadMem16(addr uint32, count int) ([]uint16, error) {
	out, err := c.Execute(readMem16Stub(), []uint32{addr, uint32(count)}, count)
	if err != nil {
		return nil, err
	}
	result := make([]uint16, count)
	for i, v := range out {
		result[i] = uint16(v)
	}
	return result, nil
}

// WriteMem16 writes count 16-bit halfwords starting at addr as a single
// whole-count PrAcc round trip.
func (c *Context) WriteMem16(addr uint32, values []uint16) error {
	in := make([]uint32, 0, len(values)+2)
	in = append(in, addr, uint32(len(values)))
	for _, v := range values {
		in = append(in, uint32(v))
	}
	_, err := c.Execute(writeMem16Stub(), in, 0)
	return err
}

// ReadMem8 reads count bytes starting at addr as a single whole-count
// PrAcc round trip.
func (c *Context) ReadMem8(addr uint32, count int) ([]byte, error) {
	out, err := c.Execute(readMem8Stub(), []uint32{addr, uint32(count)}, count)
	if err != nil {
		return nil, err
	}
	result := make([]byte, count)
	for i, v := range out {
		result[i] = byte(v)
	}
	return result, nil
}

// WriteMem8 writes count bytes starting at addr as a single whole-count
// PrAcc round trip.
func (c *Context) WriteMem8(addr uint32, values []byte) error {
	in := make([]uint32, 0, len(values)+2)
	in = append(in, addr, uint32(len(values)))
	for _, v := range values {
		in = append(in, uint32(v))
	}
	_, err := c.Execute(writeMem8Stub(), in, 0)
	return err
}
