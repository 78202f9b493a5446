// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

import "fmt"

// ErrorKind classifies a DeviceError per spec.md §7's PrAcc/FASTDATA error
// kinds.
type ErrorKind int

const (
	// ErrTimeout is a PrAcc timeout: the 1s PRACC-asserted poll deadline
	// expired.
	ErrTimeout ErrorKind = iota
	// ErrOutOfArena means a read/write-case address fell outside the text,
	// param-in, param-out, and stack regions: the target has diverged from
	// the stub and the host cannot recover safely.
	ErrOutOfArena
	// ErrHandshake is a FASTDATA handshake mismatch at handler entry.
	ErrHandshake
	// ErrResourceShortage means the caller's work area is smaller than the
	// FASTDATA handler, or a FASTDATA read stream asked for zero words.
	ErrResourceShortage
	// ErrTransport wraps a Link error returned unchanged from the host's
	// scan primitives.
	ErrTransport
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "timeout"
	case ErrOutOfArena:
		return "out-of-arena"
	case ErrHandshake:
		return "handshake"
	case ErrResourceShortage:
		return "resource-shortage"
	case ErrTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// DeviceError is the error type every public PrAcc/FASTDATA operation
// returns on failure. Per spec.md §7, it aborts the current operation with
// no partial rollback; the caller is expected to re-initialize the TAP
// (state_move(Reset)) afterward.
type DeviceError struct {
	Kind ErrorKind
	msg  string
	err  error
}

func (e *DeviceError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("ejtag: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("ejtag: %s", e.msg)
}

func (e *DeviceError) Unwrap() error { return e.err }

func newDeviceError(kind ErrorKind, msg string) error {
	return &DeviceError{Kind: kind, msg: msg}
}

func wrapLinkError(msg string, err error) error {
	return &DeviceError{Kind: ErrTransport, msg: msg, err: err}
}
