// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// Package ejtag implements the MIPS32 EJTAG processor-access (PrAcc) engine:
// it runs short instruction sequences on a halted target by serving its
// instruction fetches and loads/stores over the debug-mode memory access
// mechanism, and a FASTDATA streaming path for bulk memory transfer.
//
// The engine is a client of a JTAG scan primitive supplied by the host
// through the Link interface — this package never drives a TAP directly.
// github.com/kmorrow-labs/go-ublaster's EjtagLink adapter is one such host.
package ejtag
