// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

import (
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// Default USB-Blaster VID/PID.
const (
	blasterDefaultVID = 0x09fb
	blasterDefaultPID = 0x6001

	blasterOutEndpoint = 1
	blasterInEndpoint  = 2
)

// ftdiTransport is the libusb-style back-end, built directly on
// github.com/google/gousb.
type ftdiTransport struct {
	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	iface  *gousb.Interface
	out    *gousb.OutEndpoint
	in     *gousb.InEndpoint

	vid  uint16
	pid  uint16
	desc string
}

func init() {
	RegisterTransport("ftdi", func() Transport { return &ftdiTransport{vid: blasterDefaultVID, pid: blasterDefaultPID} })
}

func (t *ftdiTransport) SetVIDPID(vid, pid uint16) { t.vid, t.pid = vid, pid }
func (t *ftdiTransport) SetDescription(d string)   { t.desc = d }
func (t *ftdiTransport) Identify() (uint16, uint16, string) {
	return t.vid, t.pid, t.desc
}

func (t *ftdiTransport) Open() error {
	t.ctx = gousb.NewContext()

	devices, err := t.ctx.OpenDevices(func(d *gousb.DeviceDesc) bool {
		return uint16(d.Vendor) == t.vid && uint16(d.Product) == t.pid
	})
	if err != nil {
		t.ctx.Close()
		return err
	}
	if len(devices) == 0 {
		t.ctx.Close()
		return fmt.Errorf("no USB-Blaster found for VID:PID %04x:%04x (%s)", t.vid, t.pid, t.desc)
	}
	for _, extra := range devices[1:] {
		extra.Close()
	}
	t.device = devices[0]

	t.config, err = t.device.Config(1)
	if err != nil {
		t.device.Close()
		t.ctx.Close()
		return fmt.Errorf("could not claim configuration 1: %w", err)
	}

	t.iface, err = t.config.Interface(0, 0)
	if err != nil {
		t.config.Close()
		t.device.Close()
		t.ctx.Close()
		return fmt.Errorf("could not claim interface 0,0: %w", err)
	}

	t.out, err = t.iface.OutEndpoint(blasterOutEndpoint)
	if err != nil {
		t.Close()
		return fmt.Errorf("could not open out endpoint: %w", err)
	}

	t.in, err = t.iface.InEndpoint(blasterInEndpoint)
	if err != nil {
		t.Close()
		return fmt.Errorf("could not open in endpoint: %w", err)
	}

	logger.Infof("opened USB-Blaster (ftdi) [%04x:%04x]", t.vid, t.pid)
	return nil
}

func (t *ftdiTransport) Close() error {
	if t.iface != nil {
		t.iface.Close()
	}
	if t.config != nil {
		t.config.Close()
	}
	if t.device != nil {
		t.device.Close()
	}
	if t.ctx != nil {
		t.ctx.Close()
	}
	return nil
}

func (t *ftdiTransport) Write(buf []byte) (int, error) {
	if t.out == nil {
		return 0, errors.New("ftdi transport not open")
	}
	n, err := t.out.Write(buf)
	if err != nil {
		return n, err
	}
	logger.Tracef("ftdi: wrote %d bytes", n)
	return n, nil
}

func (t *ftdiTransport) Read(buf []byte) (int, error) {
	if t.in == nil {
		return 0, errors.New("ftdi transport not open")
	}
	n, err := t.in.Read(buf)
	if err != nil {
		return n, err
	}
	logger.Tracef("ftdi: read %d bytes", n)
	return n, nil
}

func (t *ftdiTransport) SetSpeed(khz uint32) error {
	// The USB-Blaster's clock rate is a function of the bit-bang/byte-shift
	// pacing the host drives, not a device-side register; pass-through only
	// (spec.md §1 non-goals: "adaptive clock negotiation beyond a
	// pass-through speed setting").
	logger.Debugf("ftdi: requested speed %d kHz (pass-through, no device register)", khz)
	return nil
}
