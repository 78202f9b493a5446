// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

// ftd2xxTransport is the vendor-D2XX-style back-end named in spec.md §6.
// FTDI's real D2XX driver is closed-source and unavailable to this module;
// on Linux (and most BSDs) a D2XX-class USB-Blaster clone shows up as a
// plain bulk USB device once the vendor kernel driver is unbound, so this
// back-end reaches the same chip through github.com/google/gousb under a
// distinct name, reusing ftdiTransport's device lookup and endpoints,
// matching the way D2XX-mode clones are commonly unlocked for libusb access. See DESIGN.md for the tradeoff
// against vendoring a cgo binding to the real D2XX shared library.
type ftd2xxTransport struct {
	ftdiTransport
}

func init() {
	RegisterTransport("ftd2xx", func() Transport {
		return &ftd2xxTransport{ftdiTransport{vid: blasterDefaultVID, pid: blasterDefaultPID}}
	})
}

func (t *ftd2xxTransport) Open() error {
	if err := t.ftdiTransport.Open(); err != nil {
		return err
	}
	logger.Infof("opened USB-Blaster (ftd2xx) [%04x:%04x]", t.vid, t.pid)
	return nil
}
