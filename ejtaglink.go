// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

import "github.com/kmorrow-labs/go-ublaster/ejtag"

// irBits is the width of the EJTAG instruction register. All five
// instructions this adapter issues (address/data/control/fastdata/all)
// fit in it.
const irBits = 5

// EjtagLink implements ejtag.Link on top of a tapDriver's Scan primitive,
// making the PrAcc engine a client of the JTAG engine rather than a
// second driver of the wire: every Link method is just an IR scan to
// select the right EJTAG instruction followed by a 32-bit DR scan.
type EjtagLink struct {
	tap *tapDriver
}

// NewEjtagLink binds an EjtagLink to tap. The caller typically obtains tap
// via Session.TAP after opening the session.
func NewEjtagLink(tap *tapDriver) *EjtagLink {
	return &EjtagLink{tap: tap}
}

var _ ejtag.Link = (*EjtagLink)(nil)

func (e *EjtagLink) selectInstruction(instr uint32) error {
	data := []byte{byte(instr)}
	return e.tap.Scan(&ScanCommand{
		Direction: ScanOut,
		IR:        true,
		Bits:      irBits,
		Data:      data,
		EndState:  StateIdle,
	})
}

func (e *EjtagLink) shiftDR32(value uint32, capture bool) (uint32, error) {
	data := make([]byte, 4)
	putLE32(data, value)
	cmd := &ScanCommand{
		IR:       false,
		Bits:     32,
		Data:     data,
		EndState: StateIdle,
	}
	if capture {
		cmd.Direction = ScanInOut
	} else {
		cmd.Direction = ScanOut
	}
	if err := e.tap.Scan(cmd); err != nil {
		return 0, err
	}
	if capture {
		return le32(cmd.Data), nil
	}
	return 0, nil
}

// SetInstruction selects one of the EJTAG IR instructions (address, data,
// control, fastdata, all) defined in ejtag's constants.
func (e *EjtagLink) SetInstruction(instr uint32) error {
	return e.selectInstruction(instr)
}

func (e *EjtagLink) ReadControl() (uint32, error) {
	if err := e.selectInstruction(ejtag.InstrControl); err != nil {
		return 0, err
	}
	return e.shiftDR32(0, true)
}

func (e *EjtagLink) WriteControl(value uint32) error {
	if err := e.selectInstruction(ejtag.InstrControl); err != nil {
		return err
	}
	_, err := e.shiftDR32(value, false)
	return err
}

func (e *EjtagLink) ReadAddress() (uint32, error) {
	if err := e.selectInstruction(ejtag.InstrAddress); err != nil {
		return 0, err
	}
	return e.shiftDR32(0, true)
}

func (e *EjtagLink) ReadData() (uint32, error) {
	if err := e.selectInstruction(ejtag.InstrData); err != nil {
		return 0, err
	}
	return e.shiftDR32(0, true)
}

func (e *EjtagLink) WriteData(value uint32) error {
	if err := e.selectInstruction(ejtag.InstrData); err != nil {
		return err
	}
	_, err := e.shiftDR32(value, false)
	return err
}

func (e *EjtagLink) ReadFastData() (uint32, error) {
	if err := e.selectInstruction(ejtag.InstrFastData); err != nil {
		return 0, err
	}
	return e.shiftDR32(0, true)
}

func (e *EjtagLink) WriteFastData(value uint32) error {
	if err := e.selectInstruction(ejtag.InstrFastData); err != nil {
		return err
	}
	_, err := e.shiftDR32(value, false)
	return err
}
