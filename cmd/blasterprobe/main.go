// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/kmorrow-labs/go-ublaster"
)

func main() {
	log.Info("Starting USB-Blaster probe test...")

	session := ublaster.NewSession(nil)
	cfg := ublaster.NewSessionConfig()

	if err := session.Open(cfg); err != nil {
		log.Fatalf("could not open probe: %v", err)
	}
	defer session.Quit()

	log.Infof("probe open, TAP state: %v", session.TAP().State())

	if err := session.TAP().Reset(true, false); err != nil {
		log.Fatalf("reset failed: %v", err)
	}

	irData := []byte{0x01} // vendor-specific IDCODE-select instruction value.
	irCmd := &ublaster.ScanCommand{
		Direction: ublaster.ScanOut,
		IR:        true,
		Bits:      5,
		Data:      irData,
		EndState:  ublaster.StateIdle,
	}
	if err := session.TAP().Scan(irCmd); err != nil {
		log.Fatalf("IR scan failed: %v", err)
	}

	drCmd := &ublaster.ScanCommand{
		Direction: ublaster.ScanIn,
		IR:        false,
		Bits:      32,
		EndState:  ublaster.StateIdle,
	}
	if err := session.TAP().Scan(drCmd); err != nil {
		log.Fatalf("DR scan failed: %v", err)
	}

	log.Infof("DR scan returned %d bytes: % x", len(drCmd.Data), drCmd.Data)
}
