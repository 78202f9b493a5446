// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

import "testing"

func newTestTAP(t *testing.T) (*tapDriver, *Session, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	s := &Session{buf: newPacketBuffer(ft)}
	tap := newTAPDriver(s, StandardTransitions{})
	s.tap = tap
	return tap, s, ft
}

func TestStandardTransitionsPathFromResetToIdle(t *testing.T) {
	o := StandardTransitions{}
	path := o.Path(StateReset, StateIdle)
	if len(path) != 1 || path[0] != false {
		t.Fatalf("expected single TMS=0 step, got %v", path)
	}
}

func TestStandardTransitionsPathFromIdleToShiftDR(t *testing.T) {
	o := StandardTransitions{}
	path := o.Path(StateIdle, StateDRShift)
	want := []bool{true, false, false}
	if len(path) != len(want) {
		t.Fatalf("expected %d steps, got %d (%v)", len(want), len(path), path)
	}
	state := StateIdle
	for _, tms := range path {
		state = o.Next(state, tms)
	}
	if state != StateDRShift {
		t.Fatalf("path did not land on DRSHIFT, landed on %v", state)
	}
}

func TestStateMoveIsNoopWhenAlreadyAtTarget(t *testing.T) {
	tap, _, ft := newTestTAP(t)
	tap.state = StateIdle
	if err := tap.StateMove(StateIdle); err != nil {
		t.Fatalf("StateMove: %v", err)
	}
	if len(ft.written) != 0 {
		t.Fatalf("expected no bytes written for a no-op move, got %d", len(ft.written))
	}
}

func TestStateMoveToResetAlwaysMoves(t *testing.T) {
	tap, _, ft := newTestTAP(t)
	tap.state = StateReset
	if err := tap.StateMove(StateReset); err != nil {
		t.Fatalf("StateMove: %v", err)
	}
	_ = tap.session.buf.flush()
	if len(ft.written) == 0 {
		t.Fatal("expected state_move(Reset) to always clock TMS=1 regardless of current state")
	}
}

func TestStandardTransitionsPathToResetIsFiveTMSOnePulses(t *testing.T) {
	o := StandardTransitions{}
	for _, from := range []State{StateIdle, StateDRShift, StateReset, StateIRPause} {
		path := o.Path(from, StateReset)
		if len(path) != 5 {
			t.Fatalf("from %v: expected exactly 5 TMS pulses to Reset, got %d (%v)", from, len(path), path)
		}
		for i, tms := range path {
			if !tms {
				t.Fatalf("from %v: expected pulse %d to be TMS=1, got TMS=0", from, i)
			}
		}
	}
}

func TestPathMoveRejectsNonNeighborState(t *testing.T) {
	tap, _, _ := newTestTAP(t)
	tap.state = StateIdle
	err := tap.PathMove([]State{StateDRShift})
	if err == nil {
		t.Fatal("expected an error requesting a non-neighbor state")
	}
	de, ok := err.(*DeviceError)
	if !ok || de.Kind != ErrProgrammer {
		t.Fatalf("expected ErrProgrammer, got %v", err)
	}
}

func TestQueueTDIZeroBitsIsNoop(t *testing.T) {
	tap, _, ft := newTestTAP(t)
	out, err := tap.queueTDI(0, []byte{0xFF}, true, true)
	if err != nil {
		t.Fatalf("queueTDI: %v", err)
	}
	if len(out) != 1 || out[0] != 0xFF {
		t.Fatalf("expected data echoed unchanged, got %v", out)
	}
	if len(ft.written) != 0 {
		t.Fatal("expected no bytes written for nbBits==0")
	}
}

func TestQueueTDIShiftsSingleByteInBitBangWithCapture(t *testing.T) {
	tap, _, ft := newTestTAP(t)
	// 8 bits, all zero byte-shift eligible, but with allowExit it borrows a
	// bit-bang bit so the exit can be driven: nb8 becomes 0, nb1 becomes 8.
	ft.queueRx([]byte{0x01, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00})
	out, err := tap.queueTDI(8, []byte{0xAA}, true, true)
	if err != nil {
		t.Fatalf("queueTDI: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 output byte, got %d", len(out))
	}
	if out[0] != 0x55 { // bits 0,2,4,6 captured as 1 -> 0b01010101
		t.Fatalf("expected captured byte 0x55, got %#x", out[0])
	}
}

func TestQueueTDINoExitWhenDataIsNil(t *testing.T) {
	tap, s, ft := newTestTAP(t)
	ft.queueRx([]byte{0x00, 0x00, 0x00, 0x00})
	s.tms = false
	_, err := tap.queueTDI(4, nil, true, true)
	if err != nil {
		t.Fatalf("queueTDI: %v", err)
	}
	if s.tms {
		t.Fatal("expected TMS to stay low on the final bit when data is nil (clock zeros, no exit)")
	}
}

func TestQueueTDIMultiByteUsesByteShift(t *testing.T) {
	tap, _, ft := newTestTAP(t)
	data := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	// 64 bits with allowExit=true: nb8=8, nb1=0 -> borrow makes nb8=7, nb1=8.
	ft.queueRx(make([]byte, 7)) // byte-shift capture response, not used (no capture).
	out, err := tap.queueTDI(64, data, false, true)
	if err != nil {
		t.Fatalf("queueTDI: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil output when capture is false, got %v", out)
	}
	_ = tap.session.buf.flush()
	if len(ft.written) == 0 {
		t.Fatal("expected bytes written for an 8-byte shift")
	}
	if ft.written[0] != byteShiftHeader(7, false) {
		t.Fatalf("expected a byte-shift header for 7 bytes first, got %#x", ft.written[0])
	}
}

func TestRunTestUsesTMSZero(t *testing.T) {
	tap, s, _ := newTestTAP(t)
	tap.state = StateIdle
	s.tms = true // stale value from a prior operation
	if err := tap.RunTest(4, StateIdle); err != nil {
		t.Fatalf("RunTest: %v", err)
	}
	if s.tms {
		t.Fatal("expected RunTest to leave TMS at 0 after clocking zeros")
	}
}

func TestResetOnlyDrivesBoundPins(t *testing.T) {
	tap, s, _ := newTestTAP(t)
	tap.state = StateIdle
	if err := tap.Reset(true, true); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.pin6 || s.pin8 {
		t.Fatal("expected unbound pins to stay untouched by Reset")
	}

	s.pin6Bound = true
	if err := tap.Reset(true, false); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !s.pin6 {
		t.Fatal("expected bound pin6 to be driven by Reset")
	}
}
