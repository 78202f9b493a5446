// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

// MIPS opcode/function codes used by the instruction stubs below. These are
// the typed assembler builder spec.md §9's Design Notes calls for: the
// bit-exact instruction words stay the on-the-wire contract, but the
// encoders are pure, range-checked functions so the stubs can be expressed
// and unit-tested independently of execution.
const (
	opSpecial = 0x00
	opCop0    = 0x10
	opJ       = 0x02
	opBEQ     = 0x04
	opBNE     = 0x05
	opADDIU   = 0x09
	opANDI    = 0x0C
	opORI     = 0x0D
	opLUI     = 0x0F
	opLB      = 0x20
	opLH      = 0x21
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opSB      = 0x28
	opSH      = 0x29
	opSW      = 0x2B

	funcADDU = 0x21
	funcSLL  = 0x00 // NOP is SLL $0,$0,0
	funcJR   = 0x08
	funcMFHI = 0x10
	funcMTHI = 0x11
	funcMFLO = 0x12
	funcMTLO = 0x13

	cop0MF = 0x00
	cop0MT = 0x04
)

// EncodeR builds an R-format instruction word: opcode(6) rs(5) rt(5) rd(5)
// shamt(5) funct(6). Panics on out-of-range register/shamt/funct fields —
// these are compile-time-constant call sites within this package, not
// caller input.
func EncodeR(opcode, rs, rt, rd, shamt, funct uint32) uint32 {
	checkField("opcode", opcode, 6)
	checkField("rs", rs, 5)
	checkField("rt", rt, 5)
	checkField("rd", rd, 5)
	checkField("shamt", shamt, 5)
	checkField("funct", funct, 6)
	return opcode<<26 | rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

// EncodeI builds an I-format instruction word: opcode(6) rs(5) rt(5)
// immediate(16).
func EncodeI(opcode, rs, rt uint32, immediate int32) uint32 {
	checkField("opcode", opcode, 6)
	checkField("rs", rs, 5)
	checkField("rt", rt, 5)
	if immediate < -32768 || immediate > 65535 {
		panic("ejtag: immediate out of range for I-format instruction")
	}
	return opcode<<26 | rs<<21 | rt<<16 | uint32(uint16(immediate))
}

// EncodeJ builds a J-format instruction word: opcode(6) address(26). address
// is the word-aligned target shifted right by 2, per MIPS convention.
func EncodeJ(opcode, target uint32) uint32 {
	checkField("opcode", opcode, 6)
	addr := (target >> 2) & 0x3FFFFFF
	return opcode<<26 | addr
}

func checkField(name string, v uint32, bits uint) {
	if v >= 1<<bits {
		panic("ejtag: " + name + " does not fit in its instruction field")
	}
}

// Convenience builders over EncodeR/I/J for the mnemonics the stub tables
// in stubs.go actually use. Each is a one-line wrapper kept deliberately
// uncollapsed so a stub array reads like assembly.
func nop() uint32                       { return EncodeR(opSpecial, 0, 0, 0, 0, funcSLL) }
func addiu(rt, rs uint32, imm int32) uint32 { return EncodeI(opADDIU, rs, rt, imm) }
func addu(rd, rs, rt uint32) uint32     { return EncodeR(opSpecial, rs, rt, rd, 0, funcADDU) }
func lui(rt uint32, imm int32) uint32   { return EncodeI(opLUI, 0, rt, imm) }
func ori(rt, rs uint32, imm int32) uint32 { return EncodeI(opORI, rs, rt, imm) }
func lw(rt, base uint32, offset int32) uint32  { return EncodeI(opLW, base, rt, offset) }
func sw(rt, base uint32, offset int32) uint32  { return EncodeI(opSW, base, rt, offset) }
func lhu(rt, base uint32, offset int32) uint32 { return EncodeI(opLHU, base, rt, offset) }
func sh(rt, base uint32, offset int32) uint32  { return EncodeI(opSH, base, rt, offset) }
func lbu(rt, base uint32, offset int32) uint32 { return EncodeI(opLBU, base, rt, offset) }
func sb(rt, base uint32, offset int32) uint32  { return EncodeI(opSB, base, rt, offset) }
func beq(rs, rt uint32, offset int32) uint32   { return EncodeI(opBEQ, rs, rt, offset) }
func bne(rs, rt uint32, offset int32) uint32   { return EncodeI(opBNE, rs, rt, offset) }
func j(target uint32) uint32            { return EncodeJ(opJ, target) }
func jr(rs uint32) uint32               { return EncodeR(opSpecial, rs, 0, 0, 0, funcJR) }

func mfc0(rt, rd uint32) uint32 { return EncodeR(opCop0, cop0MF, rt, rd, 0, 0) }
func mtc0(rt, rd uint32) uint32 { return EncodeR(opCop0, cop0MT, rt, rd, 0, 0) }

func mfhi(rd uint32) uint32 { return EncodeR(opSpecial, 0, 0, rd, 0, funcMFHI) }
func mflo(rd uint32) uint32 { return EncodeR(opSpecial, 0, 0, rd, 0, funcMFLO) }
func mthi(rs uint32) uint32 { return EncodeR(opSpecial, rs, 0, 0, 0, funcMTHI) }
func mtlo(rs uint32) uint32 { return EncodeR(opSpecial, rs, 0, 0, 0, funcMTLO) }
