// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/kmorrow-labs/go-ublaster"
	"github.com/kmorrow-labs/go-ublaster/ejtag"
)

func main() {
	log.Info("Starting MIPS32 EJTAG memory tool...")

	session := ublaster.NewSession(nil)
	cfg := ublaster.NewSessionConfig()

	if err := session.Open(cfg); err != nil {
		log.Fatalf("could not open probe: %v", err)
	}
	defer session.Quit()

	link := ublaster.NewEjtagLink(session.TAP())
	ctx := ejtag.NewContext(link)

	const probeAddr = 0xA0000000
	word, err := ctx.ReadU32(probeAddr)
	if err != nil {
		log.Fatalf("ReadU32(0x%08x) failed: %v", probeAddr, err)
	}
	log.Infof("word at 0x%08x: 0x%08x", probeAddr, word)

	block, err := ctx.ReadMem32(probeAddr, 16)
	if err != nil {
		log.Fatalf("ReadMem32 failed: %v", err)
	}
	log.Infof("read %d words starting at 0x%08x", len(block), probeAddr)

	regs, err := ctx.ReadRegs()
	if err != nil {
		log.Fatalf("ReadRegs failed: %v", err)
	}
	log.Infof("status=0x%08x cause=0x%08x depc=0x%08x",
		regs[ejtag.RegStatus], regs[ejtag.RegCause], regs[ejtag.RegDEPC])
}
