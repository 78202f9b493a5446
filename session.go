// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

import (
	"github.com/boljen/go-bitmap"
)

// SessionConfig is a small struct consumed once by Open, gathering
// everything the configuration surface can set before the transport is
// opened.
type SessionConfig struct {
	Backend     string // "" tries every registered back-end in order
	VID, PID    uint16
	Description string
	InitialKHz  uint32
}

// NewSessionConfig builds a config with the USB-Blaster's usual VID/PID.
func NewSessionConfig() *SessionConfig {
	return &SessionConfig{VID: blasterDefaultVID, PID: blasterDefaultPID, InitialKHz: 1000}
}

// Session owns everything spec.md §3 says a probe session owns: the
// transport handle, the 64-byte write buffer and its fill index (inside
// packetBuffer), the last-set pin levels, and the configured VID/PID/
// description. It is not thread-safe — exclusive ownership by the caller,
// per spec.md §5.
type Session struct {
	transport Transport
	buf       *packetBuffer
	flags     bitmap.Bitmap

	// last-set output pin levels, per spec.md §3.
	pin6, pin8 bool
	tms, tdi   bool

	// pin6Bound/pin8Bound record whether the host has wired pin6/pin8 to
	// TRST/SRST via SetPin. Per spec.md §9's open question, reset(trst,srst)
	// only drives these pins when the host has bound them.
	pin6Bound, pin8Bound bool

	tap *tapDriver

	vid, pid uint16
	desc     string
}

// NewSession creates an unopened session with the capability flags spec.md
// §6 says the engine exposes to the host.
func NewSession(transitions TransitionOracle) *Session {
	if transitions == nil {
		transitions = StandardTransitions{}
	}
	s := &Session{flags: newCapabilityFlags()}
	s.tap = newTAPDriver(s, transitions)
	return s
}

// HasCapability reports one of the flags from spec.md §6
// ("TMS-sequence supported", "JTAG-only transport").
func (s *Session) HasCapability(flag int) bool {
	return s.flags.Get(flag)
}

// SetDescription sets the device description string. Per spec.md §6 this is
// only meaningful before Open (config phase).
func (s *Session) SetDescription(desc string) { s.desc = desc }

// SetVIDPID sets the 16-bit VID/PID pair used to locate the probe. Per
// spec.md §6, a config command supplying any count other than two is a
// caller error the host dispatcher is expected to have already rejected;
// this method itself always takes exactly a VID and a PID.
func (s *Session) SetVIDPID(vid, pid uint16) { s.vid, s.pid = vid, pid }

// SetPin sets pin6 or pin8's output level. Accepted at any phase; if the
// transport is already open the new level takes effect on the next queued
// byte (spec.md §6).
func (s *Session) SetPin(pin int, level bool) error {
	switch pin {
	case 6:
		s.pin6, s.pin6Bound = level, true
	case 8:
		s.pin8, s.pin8Bound = level, true
	default:
		return newDeviceError(ErrProgrammer, "SetPin: pin must be 6 or 8")
	}
	return nil
}

// Open opens the configured transport, then performs the wire-level open
// sequence from spec.md §6: flush the probe's input FIFO with 128 zero
// bytes, then force Test-Logic-Reset with five TMS=1 cycles.
func (s *Session) Open(cfg *SessionConfig) error {
	t, err := OpenTransport(cfg.Backend, cfg.VID, cfg.PID, cfg.Description)
	if err != nil {
		return err
	}
	s.transport = t
	s.vid, s.pid, s.desc = cfg.VID, cfg.PID, cfg.Description
	s.buf = newPacketBuffer(t)

	if err := t.SetSpeed(cfg.InitialKHz); err != nil {
		logger.Warnf("SetSpeed(%d) failed: %v", cfg.InitialKHz, err)
	}

	zero := make([]byte, packetSize)
	for i := 0; i < 2; i++ {
		if _, err := t.Write(zero); err != nil {
			return wrapTransportError("flush probe input FIFO", err)
		}
	}

	return s.tap.StateMove(StateReset)
}

// Quit releases all drive lines (a single zero byte, per spec.md §6) and
// closes the transport.
func (s *Session) Quit() error {
	if s.transport == nil {
		return nil
	}
	if _, err := s.transport.Write([]byte{0}); err != nil {
		logger.Warnf("quit: failed to release drive lines: %v", err)
	}
	return s.transport.Close()
}

// TAP returns the TAP driver bound to this session's buffer and transport.
func (s *Session) TAP() *tapDriver { return s.tap }
