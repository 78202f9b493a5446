// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

// PrAcc debug memory segment addresses (spec.md §4.3). Per spec.md §6
// these are "supplied by the EJTAG layer; the executor only compares
// against them, treating them as opaque constants of the surrounding MIPS
// environment" — the values below are the module's default MIPS
// environment. Context.WithAddresses overrides them for the executor's
// routing only; the instruction stubs in stubs.go always embed these
// defaults.
const (
	DefaultPraccText     = 0xFF200200
	DefaultPraccParamIn  = 0xFF201000
	DefaultPraccParamOut = 0xFF202000
	DefaultPraccStack    = 0xFF204000

	// DefaultPraccFastdataArea is the fixed dmseg address the FASTDATA
	// handler's own code reads start_addr/end_addr from at run time and the
	// host polls as the handshake address once the handler takes over
	// (spec.md §4.4 steps 2 and 4). It is a separate address from every
	// other debug memory segment above, not an alias for the caller's work
	// area: the work area is ordinary target RAM the handler merely resides
	// in, while this is the register the handler's own LWs/SWs target.
	DefaultPraccFastdataArea = 0xFF200000
)

// EJTAG IR instruction opcodes (spec.md §2: "thin wrappers ... that set an
// IR instruction and shift 32-bit DRs").
const (
	InstrAddress  = 0x08
	InstrData     = 0x09
	InstrControl  = 0x0A
	InstrFastData = 0x0E
	InstrAll      = 0x0B
)

// Control DR bit positions (spec.md §4.3).
const (
	ctrlPracc = 1 << 18 // per-cycle handshake bit.
	ctrlPrnW  = 1 << 19 // 1 = target writing (store), 0 = target reading.
	ctrlProbEn = 1 << 15
	ctrlSetDev = 1 << 14
)

// blockWords is the word-count blocksize cap for read_mem32/write_mem32,
// per spec.md §4.3's "Blocksize policy".
const blockWords = 0x400
