// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

// Bit-bang byte layout (spec.md §4.1).
const (
	bbTCK     = 1 << 0
	bbTMS     = 1 << 1
	bbNCE     = 1 << 2
	bbNCS     = 1 << 3
	bbTDI     = 1 << 4
	bbLED     = 1 << 5
	bbREAD    = 1 << 6
	bbSHMODE  = 1 << 7
	byteShift = bbSHMODE
)

// buildOut composes one bit-bang output byte from the session's current pin
// state, setting READ iff the caller says this half-clock should capture
// TDO.
func (s *Session) buildOut(read bool) byte {
	var b byte = bbLED // LED is always set when the probe is active.

	if s.pin6 {
		b |= bbNCE
	}
	if s.pin8 {
		b |= bbNCS
	}
	if s.tms {
		b |= bbTMS
	}
	if s.tdi {
		b |= bbTDI
	}
	if read {
		b |= bbREAD
	}
	return b
}

// pulseTCK emits one TCK pulse: a low-phase byte (signals set up, TCK=0)
// followed by a high-phase byte (same signals, TCK=1). If read is true the
// high-phase byte requests TDO capture.
func (s *Session) pulseTCK(read bool) error {
	low := s.buildOut(false)
	high := s.buildOut(read) | bbTCK

	if err := s.buf.queueByte(low); err != nil {
		return err
	}
	return s.buf.queueByte(high)
}

// idleClock emits the single extra low byte that leaves TCK low at the end
// of any logical operation (spec.md §3 invariant 1, §4.1).
func (s *Session) idleClock() error {
	return s.buf.queueByte(s.buildOut(false))
}

// byteShiftHeader builds the header byte for a byte-shift burst of n
// payload bytes (spec.md §4.1/§6): bit7 set, bit6 = read, bits5..0 = n.
func byteShiftHeader(n int, read bool) byte {
	h := byteShift | byte(n&0x3f)
	if read {
		h |= 1 << 6
	}
	return h
}

// emitByteShift queues one byte-shift header followed by n payload bytes
// (data == nil means zeros), and, if read is true, flushes and reads back n
// TDO bytes into out. Precondition: TCK is low at header emission, which is
// guaranteed because every prior operation ends with idleClock (spec.md
// §4.1).
func (s *Session) emitByteShift(data []byte, n int, read bool, out []byte) error {
	if n < 1 || n > 63 {
		panic("ublaster: byte-shift length out of range [1,63]")
	}

	if err := s.buf.queueByte(byteShiftHeader(n, read)); err != nil {
		return err
	}
	if err := s.buf.queueBytes(data, n); err != nil {
		return err
	}
	if read {
		return s.buf.read(out, n)
	}
	return nil
}
