// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// Package ublaster implements the USB-Blaster JTAG engine: a TAP driver
// and its two-mode (bit-bang / byte-shift) wire codec, batched into 64-byte
// USB bulk packets over a pluggable transport back-end.
//
// The companion package github.com/kmorrow-labs/go-ublaster/ejtag runs on
// top of this package's scan primitives to drive a halted MIPS32 EJTAG core.
package ublaster
