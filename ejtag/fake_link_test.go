// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

// fakeCycle is one scripted PrAcc bus cycle: the address and direction the
// simulated target presents, and — for a write-case cycle — the data word
// it offers the probe.
type fakeCycle struct {
	addr    uint32
	writing bool
	data    uint32
}

// fakeLink is a scripted Link double. Rather than interpreting MIPS
// instructions, it plays back a fixed sequence of PrAcc cycles a test sets
// up in advance (the cycles a real stub would generate, in order), letting
// Context's read/write-case routing and exit detection be exercised
// directly. WriteControl's PRACC-clear advances to the next scripted
// cycle, mirroring how clearing PRACC on real hardware lets the target
// proceed.
type fakeLink struct {
	script []fakeCycle
	idx    int

	hostReads []uint32 // words the probe wrote back to service a read-case cycle

	fastIn  []uint32
	fastOut []uint32
}

func newFakeLink(script []fakeCycle) *fakeLink {
	return &fakeLink{script: script}
}

func (f *fakeLink) SetInstruction(instr uint32) error { return nil }

func (f *fakeLink) ReadControl() (uint32, error) {
	if f.idx >= len(f.script) {
		return 0, nil
	}
	ctrl := uint32(ctrlPracc)
	if f.script[f.idx].writing {
		ctrl |= ctrlPrnW
	}
	return ctrl, nil
}

func (f *fakeLink) ReadAddress() (uint32, error) {
	if f.idx >= len(f.script) {
		return 0, nil
	}
	return f.script[f.idx].addr, nil
}

func (f *fakeLink) ReadData() (uint32, error) {
	if f.idx >= len(f.script) {
		return 0, nil
	}
	return f.script[f.idx].data, nil
}

func (f *fakeLink) WriteData(value uint32) error {
	f.hostReads = append(f.hostReads, value)
	return nil
}

func (f *fakeLink) WriteControl(value uint32) error {
	f.idx++
	return nil
}

func (f *fakeLink) ReadFastData() (uint32, error) {
	if len(f.fastOut) == 0 {
		return 0, nil
	}
	v := f.fastOut[0]
	f.fastOut = f.fastOut[1:]
	return v, nil
}

func (f *fakeLink) WriteFastData(value uint32) error {
	f.fastIn = append(f.fastIn, value)
	return nil
}
