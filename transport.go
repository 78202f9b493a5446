// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// Transport is the narrow contract spec.md §6 says the core consumes from a
// USB-Blaster back-end: byte-oriented bulk read/write, open/close, and a
// pass-through speed setter. Back-ends additionally carry VID/PID/
// description fields that the configuration surface mutates before Open.
type Transport interface {
	Open() error
	Close() error
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	SetSpeed(khz uint32) error

	SetVIDPID(vid, pid uint16)
	SetDescription(desc string)
	Identify() (vid, pid uint16, desc string)
}

// TransportFactory builds a fresh, unopened Transport instance. Each
// registered back-end name maps to one of these (spec.md §9 "Back-end
// selection → capability dispatch": a registry of factories replaces a
// function-pointer table of named registrars).
type TransportFactory func() Transport

var transportRegistry = map[string]TransportFactory{}
var transportOrder []string

// RegisterTransport adds a named back-end factory to the registry. Back-ends
// register themselves from an init() in their own file, mirroring how the
// teacher's usb.go owns device discovery for its single back-end.
func RegisterTransport(name string, factory TransportFactory) {
	if _, exists := transportRegistry[name]; !exists {
		transportOrder = append(transportOrder, name)
	}
	transportRegistry[name] = factory
}

// OpenTransport selects a back-end by name and opens it. An empty name
// tries every registered back-end in registration order, returning the
// first one that opens successfully (spec.md §6).
func OpenTransport(name string, vid, pid uint16, desc string) (Transport, error) {
	if name != "" {
		factory, ok := transportRegistry[name]
		if !ok {
			return nil, newDeviceError(ErrTransport, fmt.Sprintf("unknown transport back-end %q", name))
		}
		t := factory()
		t.SetVIDPID(vid, pid)
		t.SetDescription(desc)
		if err := t.Open(); err != nil {
			return nil, wrapTransportError(fmt.Sprintf("open back-end %q", name), err)
		}
		return t, nil
	}

	var lastErr error
	for _, candidate := range transportOrder {
		t := transportRegistry[candidate]()
		t.SetVIDPID(vid, pid)
		t.SetDescription(desc)
		if err := t.Open(); err != nil {
			logger.Debugf("transport %q failed to open: %v", candidate, err)
			lastErr = err
			continue
		}
		logger.Infof("opened transport back-end %q", candidate)
		return t, nil
	}

	if lastErr == nil {
		lastErr = newDeviceError(ErrTransport, "no transport back-ends registered")
	}
	return nil, wrapTransportError("no transport back-end could be opened", lastErr)
}

// Capability flags exposed to the host (spec.md §6), stored the way the
// teacher's StLinkVersion.flags bitmap tracks optional firmware features in
// constants.go/accessport.go.
const (
	capTMSSequence = iota
	capJTAGOnlyTransport
)

func newCapabilityFlags() bitmap.Bitmap {
	flags := bitmap.New(2)
	flags.Set(capTMSSequence, true)
	flags.Set(capJTAGOnlyTransport, true)
	return flags
}
