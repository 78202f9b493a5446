// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

import (
	"fmt"
	"time"
)

// praccDeadline is the 1s wall-clock bound on waiting for PRACC to assert in
// the Control DR (spec.md §4.3 step 1, §5).
const praccDeadline = 1 * time.Second

// Context is the pracc context from spec.md §3: a pointer to the caller's
// input/output parameter arrays, the instruction word array, a bounded
// 32-slot LIFO debug stack, and a handle to the EJTAG link. Each Execute
// call resets the per-run fields (code, parameters, stack, exit tracking);
// the Context itself is reused across calls and keeps the FASTDATA
// handler's last-uploaded direction between Stream calls.
type Context struct {
	link Link

	textAddr, paramInAddr, paramOutAddr, stackAddr uint32
	fastdataAreaAddr                               uint32

	code []uint32
	in   []uint32
	out  []uint32

	stack    [32]uint32
	stackTop int

	startSeen int
	lastCtrl  uint32

	fastdataHandlerUp bool
	fastdataLastDir   Direction
}

// NewContext builds a Context bound to link, using the module's default
// debug memory segment layout. WithAddresses overrides the addresses the
// executor routes by.
func NewContext(link Link) *Context {
	return &Context{
		link:             link,
		textAddr:         DefaultPraccText,
		paramInAddr:      DefaultPraccParamIn,
		paramOutAddr:     DefaultPraccParamOut,
		stackAddr:        DefaultPraccStack,
		fastdataAreaAddr: DefaultPraccFastdataArea,
	}
}

// WithAddresses overrides the four debug memory segment addresses the
// executor routes cycles by. The instruction stubs in stubs.go are not
// rebuilt: they always load the Default* addresses.
func (c *Context) WithAddresses(text, paramIn, paramOut, stack uint32) *Context {
	c.textAddr, c.paramInAddr, c.paramOutAddr, c.stackAddr = text, paramIn, paramOut, stack
	return c
}

// WithFastdataArea overrides the FASTDATA handshake address the FASTDATA
// engine's handler reads start/end addresses from and the host polls for
// at handler entry (spec.md §4.4).
func (c *Context) WithFastdataArea(addr uint32) *Context {
	c.fastdataAreaAddr = addr
	return c
}

// StackOffset reports the debug stack's current depth. Spec.md §3 invariant
// 6 requires this to be zero at the end of one Execute call; a non-zero
// value there is a warning, not an error (spec.md §7).
func (c *Context) StackOffset() int { return c.stackTop }

// Execute runs code on the halted target, serving its instruction fetches
// and loads/stores until the natural exit condition fires: the probe
// observes a read-case fetch from the start of text for the second time
// (spec.md §4.3 step 6). in supplies the input parameter words; numOut
// words are reserved for output parameters and returned.
func (c *Context) Execute(code []uint32, in []uint32, numOut int) ([]uint32, error) {
	c.code = code
	c.in = in
	c.out = make([]uint32, numOut)
	c.stackTop = 0
	c.startSeen = 0

	for {
		done, err := c.ServiceCycle()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	if c.stackTop != 0 {
		logger.Warnf("pracc debug stack not balanced at exit: offset %d", c.stackTop)
	}

	return c.out, nil
}

// ServiceCycle services exactly one PrAcc bus cycle (spec.md §4.3 steps
// 1-5): it is the "cycle=0" single-step primitive the component design
// names, reused both by Execute's loop and by the FASTDATA engine when it
// manually pumps its jump stub through the PrAcc read path one word at a
// time (spec.md §4.4 step 3). done reports whether this cycle was the
// read-case fetch that ends a full Execute run.
func (c *Context) ServiceCycle() (done bool, err error) {
	ctrl, err := c.pollPracc()
	if err != nil {
		return false, err
	}

	addr, err := c.link.ReadAddress()
	if err != nil {
		return false, wrapLinkError("read address DR", err)
	}

	writing := ctrl&ctrlPrnW != 0

	if !writing {
		if addr == c.textAddr {
			c.startSeen++
			if c.startSeen >= 2 {
				// Natural exit (spec.md §4.3 step 6): this fetch is never
				// answered, matching mips32_pracc_exec's own break before
				// mips32_pracc_exec_read on the second hit of textAddr.
				return true, nil
			}
		}

		word, err := c.serveRead(addr)
		if err != nil {
			return false, err
		}
		if err := c.link.WriteData(word); err != nil {
			return false, wrapLinkError("write data DR (serving read)", err)
		}
		if err := c.clearPracc(ctrl); err != nil {
			return false, err
		}
		return false, nil
	}

	val, err := c.link.ReadData()
	if err != nil {
		return false, wrapLinkError("read data DR (serving write)", err)
	}
	if err := c.serveWrite(addr, val); err != nil {
		return false, err
	}
	return false, c.clearPracc(ctrl)
}

func (c *Context) pollPracc() (uint32, error) {
	deadline := time.Now().Add(praccDeadline)
	for {
		ctrl, err := c.link.ReadControl()
		if err != nil {
			return 0, wrapLinkError("poll control DR", err)
		}
		if ctrl&ctrlPracc != 0 {
			c.lastCtrl = ctrl
			return ctrl, nil
		}
		if time.Now().After(deadline) {
			return 0, newDeviceError(ErrTimeout, "timed out waiting for PRACC to assert")
		}
	}
}

func (c *Context) clearPracc(ctrl uint32) error {
	if err := c.link.WriteControl(ctrl &^ ctrlPracc); err != nil {
		return wrapLinkError("clear PRACC in control DR", err)
	}
	return nil
}

func (c *Context) serveRead(addr uint32) (uint32, error) {
	switch {
	case inRange(addr, c.textAddr, len(c.code)):
		return c.code[(addr-c.textAddr)/4], nil
	case inRange(addr, c.paramInAddr, len(c.in)):
		return c.in[(addr-c.paramInAddr)/4], nil
	case inRange(addr, c.paramOutAddr, len(c.out)):
		// Re-read semantics: a previously captured output slot may be
		// fetched again by the stub (spec.md §4.3 step 4).
		return c.out[(addr-c.paramOutAddr)/4], nil
	case addr == c.stackAddr:
		return c.pop()
	default:
		return 0, newDeviceError(ErrOutOfArena, fmt.Sprintf("pracc read from unmapped address 0x%08x", addr))
	}
}

func (c *Context) serveWrite(addr, val uint32) error {
	switch {
	case inRange(addr, c.paramOutAddr, len(c.out)):
		c.out[(addr-c.paramOutAddr)/4] = val
		return nil
	case inRange(addr, c.paramInAddr, len(c.in)):
		c.in[(addr-c.paramInAddr)/4] = val
		return nil
	case addr == c.stackAddr:
		return c.push(val)
	default:
		return newDeviceError(ErrOutOfArena, fmt.Sprintf("pracc write to unmapped address 0x%08x", addr))
	}
}

func inRange(addr, base uint32, count int) bool {
	if count == 0 {
		return false
	}
	return addr >= base && addr < base+4*uint32(count)
}

func (c *Context) push(v uint32) error {
	if c.stackTop >= len(c.stack) {
		return newDeviceError(ErrOutOfArena, "pracc debug stack overflow")
	}
	c.stack[c.stackTop] = v
	c.stackTop++
	return nil
}

func (c *Context) pop() (uint32, error) {
	if c.stackTop <= 0 {
		return 0, newDeviceError(ErrOutOfArena, "pracc debug stack underflow")
	}
	c.stackTop--
	return c.stack[c.stackTop], nil
}
