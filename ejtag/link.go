// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

// Link is the thin EJTAG wrapper spec.md §2 says is "supplied by the host":
// it sets an IR instruction and shifts 32-bit DRs. This package specifies
// only the sequences of IR/DR operations that drive PrAcc and FASTDATA, not
// the scan primitives themselves — those live one layer down, in whatever
// JTAG engine the host wires up (github.com/kmorrow-labs/go-ublaster's
// EjtagLink is the reference adapter).
type Link interface {
	// SetInstruction shifts instr into IR so the following DR scans target
	// the matching EJTAG register.
	SetInstruction(instr uint32) error

	// ReadControl shifts the Control DR in read direction and returns its
	// captured value.
	ReadControl() (uint32, error)
	// WriteControl shifts value into the Control DR.
	WriteControl(value uint32) error

	// ReadAddress shifts the Address DR in read direction.
	ReadAddress() (uint32, error)

	// ReadData shifts the Data DR in read direction (serving a target
	// fetch/load).
	ReadData() (uint32, error)
	// WriteData shifts value into the Data DR (serving a target store).
	WriteData(value uint32) error

	// ReadFastData shifts the FASTDATA DR in read direction.
	ReadFastData() (uint32, error)
	// WriteFastData shifts value into the FASTDATA DR.
	WriteFastData(value uint32) error
}
