// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

import "fmt"

// fastdataHandlerWords is the resident target-RAM handler size, in words,
// that the FASTDATA engine uploads once per work area before streaming: the
// instruction body (spill/load-area/loop/restore/return-jump) plus four
// trailing data words the handler's own spill/restore code uses to stash
// $8-$11 across the copy loop. A work area smaller than this cannot host
// FASTDATA and fails with ErrResourceShortage.
const fastdataHandlerWords = 24

// fastdataJumpWords is the size of the jump stub pushed to the target one
// PrAcc cycle at a time to start the resident handler running, rather than
// through a normal Execute call (spec.md's FASTDATA engine step 3: "push
// these via the PrAcc read path, one word per PrAcc cycle").
const fastdataJumpWords = 5

// Direction distinguishes a FASTDATA upload from a download.
type Direction int

const (
	DirWrite Direction = iota // host -> target
	DirRead                   // target -> host
)

// fastdataHandler returns the resident dispatch loop uploaded once per work
// area, per spec.md §4.4's handler description. It is entered with $15
// pointing at its own load address (textAddr is where it returns to, not
// where it lives). On entry it:
//
//  1. spills $8-$11 (t0-t3) to its own trailing data words, addressed off
//     $15 rather than a fixed dmseg offset;
//  2. loads the fixed FASTDATA area address into t0 and reads start_addr
//     and end_addr from it into t1/t2 — these two words are the ones the
//     host scans out before the per-word data phase (spec.md §4.4 step 5);
//  3. loops a single patchable load/store pair copying one word per
//     iteration between the FASTDATA area and memory at t1, incrementing
//     t1 by 4 until it equals t2;
//  4. restores $8-$11;
//  5. jumps back to textAddr through an absolute lui/ori/jr sequence, with
//     the real $15 restored from COP0 DeSave in the jr's delay slot.
//
// Unlike the ordinary PrAcc stubs in stubs.go, this handler is never
// re-entered by ServiceCycle's natural-exit check while its loop runs: it
// executes as ordinary target RAM code, which is the whole point of the
// FASTDATA engine bypassing the per-cycle PrAcc dialog for bulk transfers.
func fastdataHandler(dir Direction, textAddr, fastdataArea uint32) []uint32 {
	var code []uint32

	spillAt := len(code)
	code = append(code, nop(), nop(), nop(), nop()) // sw t0..t3, patched once tailBase is known

	code = append(code, loadAddress(regT0, fastdataArea)...) // t0 = FASTDATA area
	code = append(code, lw(regT1, regT0, 0))                 // t1 = start_addr
	code = append(code, lw(regT2, regT0, 0))                 // t2 = end_addr

	loopStart := len(code)
	if dir == DirWrite {
		code = append(code, lw(regT3, regT0, 0)) // t3 = *fastdata area
		code = append(code, sw(regT3, regT1, 0)) // *t1 = t3
	} else {
		code = append(code, lw(regT3, regT1, 0)) // t3 = *t1
		code = append(code, sw(regT3, regT0, 0)) // *fastdata area = t3
	}
	branchAt := len(code)
	code = append(code, bne(regT2, regT1, int32(loopStart-(branchAt+1))), addiu(regT1, regT1, 4))

	restoreAt := len(code)
	code = append(code, nop(), nop(), nop(), nop()) // lw t0..t3, patched below

	code = append(code, loadAddress(reg15, textAddr)...)
	code = append(code, jr(reg15), mfc0DeSave())

	tailBase := len(code)

	code[spillAt+0] = sw(regT0, reg15, int32(4*(tailBase+3)))
	code[spillAt+1] = sw(regT1, reg15, int32(4*(tailBase+2)))
	code[spillAt+2] = sw(regT2, reg15, int32(4*(tailBase+1)))
	code[spillAt+3] = sw(regT3, reg15, int32(4*(tailBase+0)))

	code[restoreAt+0] = lw(regT0, reg15, int32(4*(tailBase+3)))
	code[restoreAt+1] = lw(regT1, reg15, int32(4*(tailBase+2)))
	code[restoreAt+2] = lw(regT2, reg15, int32(4*(tailBase+1)))
	code[restoreAt+3] = lw(regT3, reg15, int32(4*(tailBase+0)))

	return append(code, 0, 0, 0, 0) // t0..t3 spill slots; never fetched as instructions
}

// fastdataJumpStub is the 5-word stub that starts the resident handler
// already uploaded at handlerAddr running, per spec.md §4.4 step 3: "set
// $15 to the work-area address and jump there." A register jump is used
// rather than a PC-relative j so that all five words are genuinely fetched
// through the ordinary PrAcc read path before control transfers — a plain
// j only has one delay-slot word before the jump lands, which would leave
// three of these words unfetched on real hardware while PumpJumpStub is
// still waiting on them.
func fastdataJumpStub(handlerAddr uint32) []uint32 {
	code := []uint32{mtc0DeSave()}
	code = append(code, loadAddress(reg15, handlerAddr)...)
	code = append(code, jr(reg15), nop())
	return code
}

// Stream is the FASTDATA engine (spec.md §4.4). workAddr/workWords name the
// caller-owned target-RAM region the resident handler is uploaded into and
// runs from; addr names the separate memory region being bulk-transferred,
// with data (for a write) or len(data) (for a read) giving its extent. The
// handler upload is skipped when a previous call on this Context already
// uploaded a handler for the same direction; the work area address is not
// part of that check.
func (c *Context) Stream(dir Direction, workAddr uint32, workWords int, addr uint32, data []uint32) ([]uint32, error) {
	if workWords < fastdataHandlerWords {
		return nil, newDeviceError(ErrResourceShortage, "work area too small to host the FASTDATA handler")
	}
	count := len(data)
	if dir == DirRead && count == 0 {
		return nil, newDeviceError(ErrResourceShortage, "read stream requires a non-zero word count")
	}

	if !c.fastdataHandlerUp || c.fastdataLastDir != dir {
		handler := fastdataHandler(dir, c.textAddr, c.fastdataAreaAddr)
		if err := c.uploadHandler(handler, workAddr); err != nil {
			return nil, err
		}
		c.fastdataHandlerUp = true
		c.fastdataLastDir = dir
	}

	if err := c.PumpJumpStub(workAddr); err != nil {
		return nil, err
	}

	// The handler's first action is reading start_addr off the FASTDATA
	// area, so this is the first PrAcc-visible event once it takes over —
	// a bare poll-and-read of the Address DR, with no Data DR traffic,
	// matching the hardware's own handling of this one address (spec.md
	// §4.4 step 4). A mismatch here means the jump never reached the
	// handler and is a hard failure, not a warning.
	if _, err := c.pollPracc(); err != nil {
		return nil, err
	}
	entryAddr, err := c.link.ReadAddress()
	if err != nil {
		return nil, wrapLinkError("read address DR (fastdata handshake)", err)
	}
	if entryAddr != c.fastdataAreaAddr {
		return nil, newDeviceError(ErrHandshake, fmt.Sprintf("fastdata handler entry address 0x%08x, expected 0x%08x", entryAddr, c.fastdataAreaAddr))
	}

	end := addr
	if count > 0 {
		end = addr + uint32(4*(count-1))
	}
	out, err := c.pumpFastData(dir, addr, end, data)
	if err != nil {
		return nil, err
	}

	// The handler's final action is the absolute jump back to textAddr; a
	// mismatch here is logged but not fatal (spec.md §4.4 step 8, §9's open
	// question on the final address check).
	if finalAddr, err := c.link.ReadAddress(); err == nil {
		if finalAddr != c.textAddr {
			logger.Warnf("fastdata stream did not return to 0x%08x, observed 0x%08x", c.textAddr, finalAddr)
		}
	}

	return out, nil
}

// uploadHandler writes the resident handler to the target's work area using
// the ordinary one-word-per-call PrAcc write path, the same primitive
// WriteU32 uses.
func (c *Context) uploadHandler(handler []uint32, workAddr uint32) error {
	for i, word := range handler {
		if err := c.WriteU32(workAddr+uint32(4*i), word); err != nil {
			return err
		}
	}
	return nil
}

// PumpJumpStub feeds a jump-to-handler stub to the target one PrAcc read
// cycle at a time rather than through Execute, since the target has
// already branched out of the ordinary text segment by the time the
// handler is running and Execute's natural-exit rule would never fire.
func (c *Context) PumpJumpStub(handlerAddr uint32) error {
	stub := fastdataJumpStub(handlerAddr)
	c.code = stub // still fetched from the ordinary text address (c.textAddr is unchanged)
	c.startSeen = 0
	served := 0
	for served < len(stub) {
		done, err := c.ServiceCycle()
		if err != nil {
			return err
		}
		served++
		if done {
			break
		}
	}
	return nil
}

// pumpFastData scans start and end as the first two outbound FASTDATA
// words (spec.md §4.4 step 5), then shifts count words through the
// FASTDATA DR, one per handler loop iteration, in the requested direction.
func (c *Context) pumpFastData(dir Direction, start, end uint32, data []uint32) ([]uint32, error) {
	if err := c.link.WriteFastData(start); err != nil {
		return nil, wrapLinkError("write fastdata start address", err)
	}
	if err := c.link.WriteFastData(end); err != nil {
		return nil, wrapLinkError("write fastdata end address", err)
	}

	if dir == DirWrite {
		for _, v := range data {
			if err := c.link.WriteFastData(v); err != nil {
				return nil, wrapLinkError("write fastdata DR", err)
			}
		}
		return nil, nil
	}

	out := make([]uint32, len(data))
	for i := range data {
		v, err := c.link.ReadFastData()
		if err != nil {
			return nil, wrapLinkError("read fastdata DR", err)
		}
		out[i] = v
	}
	return out, nil
}
