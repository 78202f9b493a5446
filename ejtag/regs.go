// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

// NumRegs is the size of the register file ReadRegs/WriteRegs exchange:
// GPR0..31, status, lo, hi, badvaddr, cause, depc.
const NumRegs = 38

// Register slot indices into the 38-word layout.
const (
	RegStatus   = 32
	RegLo       = 33
	RegHi       = 34
	RegBadVAddr = 35
	RegCause    = 36
	RegDEPC     = 37
)

// ReadRegs reads the target's 38-word register file, including lo/hi via
// mflo/mfhi. GPR0 is always reported as zero; it is never fetched from the
// target since MIPS hardwires it.
func (c *Context) ReadRegs() ([]uint32, error) {
	out, err := c.Execute(readRegsStub(), nil, NumRegs)
	if err != nil {
		return nil, err
	}
	out[0] = 0
	return out, nil
}

// WriteRegs writes the target's 38-word register file, including lo/hi via
// mtlo/mthi. regs[0] (GPR0) is ignored.
func (c *Context) WriteRegs(regs []uint32) error {
	if len(regs) != NumRegs {
		return newDeviceError(ErrOutOfArena, "register file must have 38 words")
	}
	_, err := c.Execute(writeRegsStub(), regs, 0)
	return err
}
