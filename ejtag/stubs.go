// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

// Register numbers used by the stubs below. k0/k1 are the kernel-reserved
// scratch registers EJTAG debug code prefers as working registers; t0-t3
// back the looping block-transfer stubs and the FASTDATA handler in
// fastdata.go. $15 is reserved across every stub as the PRACC_STACK pointer:
// its real value is stashed in COP0 DeSave on entry and restored in the
// trailing branch's delay slot, exactly as the component this package runs
// on top of does. readRegsStub and writeRegsStub point $15 at paramOut and
// paramIn instead, and the FASTDATA handler is entered with $15 pointing at
// its own load address, per fastdata.go.
const (
	regZero = 0
	regT0   = 8
	regT1   = 9
	regT2   = 10
	regT3   = 11
	regK0   = 26
	regK1   = 27
	reg15   = 15

	cop0DeSave = 31
)

// loadAddress returns the two-instruction lui/ori sequence that materializes
// the full 32-bit address addr into reg. MIPS I-format immediates are only
// 16 bits wide, so every stub below builds its debug memory segment
// pointers this way rather than using them directly as load/store offsets.
func loadAddress(reg, addr uint32) []uint32 {
	upper := int32((addr >> 16) & 0xFFFF)
	lower := int32(addr & 0xFFFF)
	return []uint32{lui(reg, upper), ori(reg, reg, lower)}
}

// branchToStart returns the beq/nop pair that sends control back to the
// first word of the stub from instruction index branchIndex, implementing
// the natural-exit contract: the PrAcc executor's Execute loop ends the run
// the second time it observes a fetch from the start of text (see
// ServiceCycle in pracc.go). The branch target is index 0 of the stub's own
// word array, not an absolute address, since every stub is placed at
// DefaultPraccText by the executor.
func branchToStart(branchIndex int) (uint32, uint32) {
	return beq(regZero, regZero, -(int32(branchIndex) + 1)), nop()
}

// branchToStartWithDelay is branchToStart with the trailing nop replaced by
// delay, the slot every stub below uses to move COP0 DeSave back into $15.
func branchToStartWithDelay(branchIndex int, delay uint32) (uint32, uint32) {
	return beq(regZero, regZero, -(int32(branchIndex) + 1)), delay
}

// mtc0DeSave and mfc0DeSave save and restore $15 across a stub's body.
func mtc0DeSave() uint32 { return mtc0(reg15, cop0DeSave) }
func mfc0DeSave() uint32 { return mfc0(reg15, cop0DeSave) }

// spillPrologue saves $15 to COP0 DeSave, points $15 at the PrAcc debug
// stack, and pushes regs onto it in order. The executor's Context treats
// PRACC_STACK as an actual LIFO (see push/pop in pracc.go), so every push
// below targets the same address at offset 0 from $15 rather than a
// distinct memory slot per register — the same convention the component
// this package runs on top of uses for its own register spills.
func spillPrologue(regs []uint32) []uint32 {
	code := []uint32{mtc0DeSave()}
	code = append(code, loadAddress(reg15, DefaultPraccStack)...)
	for _, r := range regs {
		code = append(code, sw(r, reg15, 0))
	}
	return code
}

// restoreRegs pops regs back off the PrAcc debug stack in reverse order,
// undoing spillPrologue.
func restoreRegs(regs []uint32) []uint32 {
	code := make([]uint32, 0, len(regs))
	for i := len(regs) - 1; i >= 0; i-- {
		code = append(code, lw(regs[i], reg15, 0))
	}
	return code
}

// readU32Stub loads the word at the address held in paramIn[0] and stores
// it to paramOut[0].
func readU32Stub() []uint32 {
	code := spillPrologue([]uint32{regK0, regK1})
	code = append(code, loadAddress(regK0, DefaultPraccParamIn)...)
	code = append(code, lw(regK0, regK0, 0)) // k0 = paramIn[0] = target address
	code = append(code, lw(regK1, regK0, 0)) // k1 = *target address
	code = append(code, loadAddress(regK0, DefaultPraccParamOut)...)
	code = append(code, sw(regK1, regK0, 0)) // paramOut[0] = k1
	code = append(code, restoreRegs([]uint32{regK0, regK1})...)
	b, n := branchToStartWithDelay(len(code), mfc0DeSave())
	return append(code, b, n)
}

// writeU32Stub stores paramIn[1] to the address held in paramIn[0].
func writeU32Stub() []uint32 {
	code := spillPrologue([]uint32{regK0, regK1, regT0})
	code = append(code, loadAddress(regK0, DefaultPraccParamIn)...)
	code = append(code, lw(regK1, regK0, 0)) // k1 = target address
	code = append(code, lw(regT0, regK0, 4)) // t0 = value
	code = append(code, sw(regT0, regK1, 0)) // *target address = t0
	code = append(code, restoreRegs([]uint32{regK0, regK1, regT0})...)
	b, n := branchToStartWithDelay(len(code), mfc0DeSave())
	return append(code, b, n)
}

// blockLoadStub reads paramIn[1] words starting at paramIn[0] into
// paramOut[0..count), looping in target code rather than unrolling so the
// stub's own size stays constant regardless of the per-call blocksize
// (bounded at blockWords by memory.go). count is fetched from paramIn[1] at
// run time rather than assembled as an immediate, matching the component
// this package runs on top of.
func blockLoadStub() []uint32 {
	code := spillPrologue([]uint32{regK0, regK1, regT1, regT2})
	code = append(code, loadAddress(regK0, DefaultPraccParamIn)...)
	code = append(code, lw(regT1, regK0, 4))  // t1 = count
	code = append(code, lw(regK0, regK0, 0))  // k0 = src address
	code = append(code, loadAddress(regK1, DefaultPraccParamOut)...)

	loopStart := len(code)
	endBranchIndex := len(code)
	code = append(code, nop(), nop()) // beq/nop placeholders, patched below
	code = append(code,
		lw(regT2, regK0, 0), // t2 = *src
		sw(regT2, regK1, 0), // *dst = t2
		addiu(regK0, regK0, 4),
		addiu(regK1, regK1, 4),
		addiu(regT1, regT1, -1),
	)
	backBranchIndex := len(code)
	code = append(code, bne(regT1, regZero, int32(loopStart-(backBranchIndex+1))), nop())

	endIndex := len(code)
	code[endBranchIndex] = beq(regZero, regT1, int32(endIndex-(endBranchIndex+1)))

	code = append(code, restoreRegs([]uint32{regK0, regK1, regT1, regT2})...)
	b, n := branchToStartWithDelay(len(code), mfc0DeSave())
	return append(code, b, n)
}

// blockStoreStub writes paramIn[2:] to the target starting at paramIn[0],
// stopping once the write pointer reaches paramIn[1] (the end address),
// the loop shape write_mem32 uses in the component this package runs on
// top of. memory.go bounds count at blockWords per call the same way
// blockLoadStub is bounded.
func blockStoreStub() []uint32 {
	code := spillPrologue([]uint32{regK0, regK1, regT0, regT1, regT2})
	code = append(code, loadAddress(regT0, DefaultPraccParamIn)...)
	code = append(code, lw(regT1, regT0, 0))   // t1 = write address
	code = append(code, lw(regT2, regT0, 4))   // t2 = end address
	code = append(code, addiu(regT0, regT0, 8)) // t0 = data pointer

	loopStart := len(code)
	code = append(code,
		lw(regK0, regT0, 0), // k0 = *dataPtr
		sw(regK0, regT1, 0), // *writeAddr = k0
		addiu(regT1, regT1, 4),
	)
	branchIndex := len(code)
	code = append(code, bne(regT2, regT1, int32(loopStart-(branchIndex+1))), addiu(regT0, regT0, 4))

	code = append(code, restoreRegs([]uint32{regK0, regK1, regT0, regT1, regT2})...)
	b, n := branchToStartWithDelay(len(code), mfc0DeSave())
	return append(code, b, n)
}

// blockTransferWidth picks the memory-width load/store encoder for the
// 16-bit and 8-bit looping stubs below.
type blockTransferWidth struct {
	load  func(rt, base uint32, offset int32) uint32
	store func(rt, base uint32, offset int32) uint32
	step  int32
}

var width16 = blockTransferWidth{load: lhu, store: sh, step: 2}
var width8 = blockTransferWidth{load: lbu, store: sb, step: 1}

// readBlockStub reads paramIn[1] elements of w's width starting at
// paramIn[0], zero-extended into one paramOut word per element. Both
// read_mem16 and read_mem8 in the component this package runs on top of
// issue one such whole-count PrAcc round trip per call rather than chunking
// at blockWords — memory.go preserves that asymmetry against the 32-bit
// path.
func readBlockStub(w blockTransferWidth) []uint32 {
	code := spillPrologue([]uint32{regK0, regK1, regT1, regT2})
	code = append(code, loadAddress(regK0, DefaultPraccParamIn)...)
	code = append(code, lw(regT1, regK0, 4)) // t1 = count
	code = append(code, lw(regK0, regK0, 0)) // k0 = src address
	code = append(code, loadAddress(regK1, DefaultPraccParamOut)...)

	loopStart := len(code)
	endBranchIndex := len(code)
	code = append(code, nop(), nop())
	code = append(code,
		w.load(regT2, regK0, 0), // t2 = *src (memory-width)
		sw(regT2, regK1, 0),     // paramOut[i] = t2 (full word)
		addiu(regK0, regK0, w.step),
		addiu(regK1, regK1, 4),
		addiu(regT1, regT1, -1),
	)
	backBranchIndex := len(code)
	code = append(code, bne(regT1, regZero, int32(loopStart-(backBranchIndex+1))), nop())

	endIndex := len(code)
	code[endBranchIndex] = beq(regZero, regT1, int32(endIndex-(endBranchIndex+1)))

	code = append(code, restoreRegs([]uint32{regK0, regK1, regT1, regT2})...)
	b, n := branchToStartWithDelay(len(code), mfc0DeSave())
	return append(code, b, n)
}

// writeBlockStub writes paramIn[1] elements of w's width, read as full
// words from paramIn[2:], to the target starting at paramIn[0].
func writeBlockStub(w blockTransferWidth) []uint32 {
	code := spillPrologue([]uint32{regK1, regT0, regT1, regT2})
	code = append(code, loadAddress(regT0, DefaultPraccParamIn)...)
	code = append(code, lw(regK1, regT0, 0)) // k1 = write address
	code = append(code, lw(regT1, regT0, 4)) // t1 = count
	code = append(code, addiu(regT0, regT0, 8))

	loopStart := len(code)
	endBranchIndex := len(code)
	code = append(code, nop(), nop())
	code = append(code,
		lw(regT2, regT0, 0),     // t2 = *dataPtr (full word)
		w.store(regT2, regK1, 0), // target = t2 (memory-width)
		addiu(regT1, regT1, -1),
		addiu(regK1, regK1, w.step),
		addiu(regT0, regT0, 4),
	)
	backBranchIndex := len(code)
	code = append(code, bne(regT1, regZero, int32(loopStart-(backBranchIndex+1))), nop())

	endIndex := len(code)
	code[endBranchIndex] = beq(regZero, regT1, int32(endIndex-(endBranchIndex+1)))

	code = append(code, restoreRegs([]uint32{regK1, regT0, regT1, regT2})...)
	b, n := branchToStartWithDelay(len(code), mfc0DeSave())
	return append(code, b, n)
}

func readMem16Stub() []uint32  { return readBlockStub(width16) }
func readMem8Stub() []uint32   { return readBlockStub(width8) }
func writeMem16Stub() []uint32 { return writeBlockStub(width16) }
func writeMem8Stub() []uint32  { return writeBlockStub(width8) }

// cop0Slot pairs a cop0 register number with its slot index in the 38-word
// register layout (GPR0..31, status, lo, hi, badvaddr, cause, depc).
type cop0Slot struct {
	reg  uint32
	slot int32
}

var cop0Slots = []cop0Slot{
	{12, 32}, // status
	{8, 35},  // badvaddr
	{13, 36}, // cause
	{24, 37}, // depc
}

// readRegsStub copies the 38-word register file to paramOut. $26 and $27
// (k0/k1) are written to their own paramOut slots first, directly through
// $15, before being repurposed as the stub's own scratch registers for the
// rest of the walk — there is no need to round-trip them through
// PRACC_STACK since every GPR already has a dedicated output slot. $15
// itself is handled the same way: its real value is already sitting in
// COP0 DeSave from the first instruction, so it is read back into $27 and
// stored to its slot before $15 is repurposed as the paramOut pointer. GPR0
// is always zero and is filled by the caller rather than emitted by target
// code.
func readRegsStub() []uint32 {
	code := []uint32{mtc0DeSave()}
	code = append(code, loadAddress(reg15, DefaultPraccParamOut)...)
	code = append(code, sw(regK0, reg15, 4*26))
	code = append(code, sw(regK1, reg15, 4*27))
	code = append(code, mfc0(regK1, cop0DeSave), sw(regK1, reg15, 4*15))

	for r := uint32(1); r < 32; r++ {
		if r == 15 || r == 26 || r == 27 {
			continue
		}
		code = append(code, sw(r, reg15, int32(4*r)))
	}
	for _, cr := range cop0Slots {
		code = append(code,
			mfc0(regK1, cr.reg),
			sw(regK1, reg15, 4*cr.slot),
		)
	}
	code = append(code, mflo(regK1), sw(regK1, reg15, int32(4*RegLo)))
	code = append(code, mfhi(regK1), sw(regK1, reg15, int32(4*RegHi)))

	b, n := branchToStartWithDelay(len(code), mfc0DeSave())
	return append(code, b, n)
}

// writeRegsStub is readRegsStub's mirror image: every slot is restored
// directly through $15 except $26/$27, which are loaded last since $27 is
// borrowed as the cop0/lo/hi transfer register up to that point, and $15
// itself, which is restored by loading the new value into COP0 DeSave so
// the trailing branch's delay slot lands it in $15 as the stub returns
// control.
func writeRegsStub() []uint32 {
	code := []uint32{mtc0DeSave()}
	code = append(code, loadAddress(reg15, DefaultPraccParamIn)...)

	for r := uint32(1); r < 32; r++ {
		if r == 15 || r == 26 || r == 27 {
			continue
		}
		code = append(code, lw(r, reg15, int32(4*r)))
	}
	code = append(code, lw(regK1, reg15, 4*15), mtc0(regK1, cop0DeSave))

	for _, cr := range cop0Slots {
		code = append(code,
			lw(regK1, reg15, 4*cr.slot),
			mtc0(regK1, cr.reg),
		)
	}
	code = append(code, lw(regK1, reg15, int32(4*RegLo)), mtlo(regK1))
	code = append(code, lw(regK1, reg15, int32(4*RegHi)), mthi(regK1))

	code = append(code, lw(regK0, reg15, 4*26))
	code = append(code, lw(regK1, reg15, 4*27))

	b, n := branchToStartWithDelay(len(code), mfc0DeSave())
	return append(code, b, n)
}
