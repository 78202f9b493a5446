// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

import "fmt"

// ErrorKind classifies a DeviceError the way spec.md §7 enumerates error
// kinds for the JTAG engine.
type ErrorKind int

const (
	// ErrTransport wraps a failure returned unchanged from the transport
	// back-end (read/write/open/set_speed).
	ErrTransport ErrorKind = iota
	// ErrProgrammer marks caller misuse of the engine's API. A packet buffer
	// overflow (requesting more bytes than remain) is not returned with this
	// kind: it panics through queueOverflow. SetPin with a pin other than 6
	// or 8 and PathMove to a non-neighbor state return a DeviceError of this
	// kind.
	ErrProgrammer
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTransport:
		return "transport"
	case ErrProgrammer:
		return "programmer"
	default:
		return "unknown"
	}
}

// DeviceError is the error type returned by every public JTAG engine
// operation that can fail. It never carries rollback state: per spec.md §7,
// the caller is expected to re-synchronize the TAP (state_move(Reset)) after
// seeing one.
type DeviceError struct {
	Kind ErrorKind
	msg  string
	err  error
}

func (e *DeviceError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("ublaster: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("ublaster: %s", e.msg)
}

func (e *DeviceError) Unwrap() error { return e.err }

func newDeviceError(kind ErrorKind, msg string) error {
	return &DeviceError{Kind: kind, msg: msg}
}

func wrapTransportError(msg string, err error) error {
	return &DeviceError{Kind: ErrTransport, msg: msg, err: err}
}

// queueOverflow is the programmer-error abort path described in spec.md
// §4.1: "Overflow attempts ... are a programmer error and must abort the
// process — callers are required to check remaining first."
func queueOverflow(requested, remaining int) {
	panic(fmt.Sprintf("ublaster: packet buffer overflow: requested %d bytes, only %d remaining", requested, remaining))
}
