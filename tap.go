// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

// ScanDirection is a scan command's data direction (spec.md §3).
type ScanDirection int

const (
	ScanOut   ScanDirection = iota // write-only; payload is read-only input.
	ScanIn                         // read-only; payload may be nil, allocated for output.
	ScanInOut                      // caller's buffer is overwritten with TDO in place.
)

// ScanCommand is the payload spec.md §3 describes for one IR or DR scan.
type ScanCommand struct {
	Direction ScanDirection
	IR        bool // true selects IRSHIFT, false DRSHIFT.
	Bits      int
	Data      []byte // nil ⇒ clock zeros (ScanOut) or allocate-on-read (ScanIn).
	StayInShift bool // caller wants to stay in *SHIFT instead of exiting.
	EndState  State
}

// tapDriver keeps the current TAP state and drives it through the session's
// packet buffer and codec, per spec.md §4.2. It is the sole owner of both
// the write buffer and the TAP state (spec.md §5).
type tapDriver struct {
	session     *Session
	state       State
	transitions TransitionOracle
}

func newTAPDriver(s *Session, transitions TransitionOracle) *tapDriver {
	return &tapDriver{session: s, state: StateReset, transitions: transitions}
}

// State reports the driver's recorded TAP state, which spec.md §3 invariant
// 2 guarantees equals the physical TAP state after any public call returns
// (barring a requested shift-stop).
func (t *tapDriver) State() State { return t.state }

// TMSSequence emits n TMS transitions, one TCK pulse each, with TDI held at
// its last value (spec.md §4.2). bits[i] is the TMS value for pulse i.
func (t *tapDriver) TMSSequence(bits []bool) error {
	s := t.session
	for _, tms := range bits {
		s.tms = tms
		if err := s.pulseTCK(false); err != nil {
			return err
		}
	}
	return s.idleClock()
}

// PathMove walks through a caller-supplied sequence of target states, at
// each step asking the oracle which TMS value reaches that neighbor
// (spec.md §4.2).
func (t *tapDriver) PathMove(states []State) error {
	s := t.session
	for _, target := range states {
		tms := t.transitions.Next(t.state, false) != target
		s.tms = tms
		if err := s.pulseTCK(false); err != nil {
			return err
		}
		t.state = t.transitions.Next(t.state, tms)
		if t.state != target {
			return newDeviceError(ErrProgrammer, "PathMove: requested state is not a direct neighbor of the current state")
		}
	}
	return s.idleClock()
}

// StateMove asks the oracle for the TMS path from the current state to
// target and delegates to TMSSequence (spec.md §4.2). Reset is always
// asserted via the oracle's fixed TMS=1x5 sequence, even when already at
// Reset, since "state_move(RESET)" means "assert Test-Logic-Reset", not
// "reach the Reset node."
func (t *tapDriver) StateMove(target State) error {
	if t.state == target && target != StateReset {
		return nil
	}
	bits := t.transitions.Path(t.state, target)
	if err := t.TMSSequence(bits); err != nil {
		return err
	}
	t.state = target
	return nil
}

// RunTest moves to Idle, shifts cycles zero bits with TMS=0 (no exit), then
// moves to end (spec.md §4.2). The zero bits are routed through queueTDI so
// runs of eight or more clocks batch into byte-shift packets instead of
// bit-banging every cycle, the same packing the idle-clocking loop gets for
// ordinary scans.
func (t *tapDriver) RunTest(cycles int, end State) error {
	if err := t.StateMove(StateIdle); err != nil {
		return err
	}
	if cycles > 0 {
		t.session.tms = false
		if _, err := t.queueTDI(cycles, nil, false, false); err != nil {
			return err
		}
	}
	return t.StateMove(end)
}

// StableClocks shifts cycles zero bits with TMS held at its current value
// and no exit (spec.md §4.2), batched through queueTDI the same way RunTest
// is.
func (t *tapDriver) StableClocks(cycles int) error {
	if cycles == 0 {
		return nil
	}
	_, err := t.queueTDI(cycles, nil, false, false)
	return err
}

// Reset drives pin6/pin8 to their configured levels (only if the host has
// bound them via Session.SetPin, per spec.md §9's open question) and then
// always asserts Test-Logic-Reset via state_move(Reset) (five TMS=1
// cycles), per spec.md §4.2.
func (t *tapDriver) Reset(trst, srst bool) error {
	s := t.session
	if s.pin6Bound {
		s.pin6 = trst
	}
	if s.pin8Bound {
		s.pin8 = srst
	}
	return t.StateMove(StateReset)
}

// Scan moves to IRSHIFT or DRSHIFT, shifts cmd.Bits bits per queueTDI, then
// — unless the caller asked to stay in shift — exits to Pause and moves to
// the requested end state (spec.md §4.2).
func (t *tapDriver) Scan(cmd *ScanCommand) error {
	shiftState := StateDRShift
	if cmd.IR {
		shiftState = StateIRShift
	}
	if err := t.StateMove(shiftState); err != nil {
		return err
	}

	capture := cmd.Direction == ScanIn || cmd.Direction == ScanInOut
	allowExit := !cmd.StayInShift

	// queueTDI only raises TMS on the final bit when it has a buffer to
	// shift, so a nil payload is shifted as explicit zeros when the scan
	// exits, keeping the exit1 bookkeeping below true.
	data := cmd.Data
	if data == nil && allowExit && cmd.Bits > 0 {
		data = make([]byte, (cmd.Bits+7)/8)
	}
	out, err := t.queueTDI(cmd.Bits, data, capture, allowExit)
	if err != nil {
		return err
	}
	if capture && cmd.Data == nil {
		cmd.Data = out
	}

	if cmd.StayInShift {
		t.state = shiftState
		return nil
	}

	exit1 := StateDRExit1
	pause := StateDRPause
	if cmd.IR {
		exit1, pause = StateIRExit1, StateIRPause
	}
	if cmd.Bits > 0 {
		t.state = exit1 // the exit bit inside queueTDI already drove this transition physically.
		if err := t.PathMove([]State{pause}); err != nil {
			return err
		}
	} else {
		// A zero-bit scan clocks nothing, so the TAP is still sitting in
		// shiftState; reaching pause needs the ordinary two-step exit the
		// oracle computes, not the single-hop shortcut above.
		if err := t.StateMove(pause); err != nil {
			return err
		}
	}

	if cmd.EndState != pause {
		return t.StateMove(cmd.EndState)
	}
	return nil
}

// queueTDI is the shift algorithm from spec.md §4.2. nbBits==0 is a no-op.
// data may be nil (clock zeros / allocate-on-capture, per the "in-out
// buffer" design note in spec.md §9). When capture is true and data is
// non-nil, data is overwritten in place; when data is nil, a fresh buffer is
// allocated and returned.
func (t *tapDriver) queueTDI(nbBits int, data []byte, capture, allowExit bool) ([]byte, error) {
	if nbBits == 0 {
		return data, nil
	}

	s := t.session

	nb8 := nbBits / 8
	nb1 := nbBits % 8
	if allowExit && nb1 == 0 && nb8 > 0 {
		nb8--
		nb1 = 8
	}

	var out []byte
	if capture {
		if data != nil {
			out = data
		} else {
			out = make([]byte, (nbBits+7)/8)
		}
	}

	bytePos := 0
	for nb8 > 0 {
		trans := s.buf.remaining() - 1
		if trans > nb8 {
			trans = nb8
		}
		if trans < 1 {
			trans = 1
		}
		if trans > 63 {
			trans = 63
		}

		var payload []byte
		if data != nil {
			payload = data[bytePos : bytePos+trans]
		}

		var tmp []byte
		if capture {
			tmp = make([]byte, trans)
		}
		if err := s.emitByteShift(payload, trans, capture, tmp); err != nil {
			return nil, err
		}
		if capture {
			copy(out[bytePos:bytePos+trans], tmp)
		}

		bytePos += trans
		nb8 -= trans
	}

	// Queue all nb1 bit-bang pulses first, then — if capturing — flush once
	// and read nb1 bytes in one go (spec.md §4.1: "after a run of bit-bang
	// TCK-high events with READ, flush, then read one byte per clocked
	// bit").
	for i := 0; i < nb1; i++ {
		isLast := i == nb1-1

		var tdiBit bool
		if data != nil {
			tdiBit = (data[bytePos]>>uint(i))&1 != 0
		}
		s.tdi = tdiBit

		raisedExit := false
		if isLast && allowExit && data != nil {
			s.tms = true
			raisedExit = true
		}

		if err := s.pulseTCK(capture); err != nil {
			return nil, err
		}

		if raisedExit {
			s.tms = false
		}
	}

	if capture && nb1 > 0 {
		resp := make([]byte, nb1)
		if err := s.buf.read(resp, nb1); err != nil {
			return nil, err
		}
		for i := 0; i < nb1; i++ {
			if resp[i]&1 != 0 {
				out[bytePos] |= 1 << uint(i)
			} else {
				out[bytePos] &^= 1 << uint(i)
			}
		}
	}

	if err := s.idleClock(); err != nil {
		return nil, err
	}

	return out, nil
}
