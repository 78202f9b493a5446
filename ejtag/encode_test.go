// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

import "testing"

func TestEncodeRFieldPlacement(t *testing.T) {
	word := EncodeR(0x00, 1, 2, 3, 4, 0x21)
	if (word>>26)&0x3F != 0 {
		t.Fatalf("opcode field wrong: %#x", word)
	}
	if (word>>21)&0x1F != 1 {
		t.Fatalf("rs field wrong: %#x", word)
	}
	if (word>>16)&0x1F != 2 {
		t.Fatalf("rt field wrong: %#x", word)
	}
	if (word>>11)&0x1F != 3 {
		t.Fatalf("rd field wrong: %#x", word)
	}
	if (word>>6)&0x1F != 4 {
		t.Fatalf("shamt field wrong: %#x", word)
	}
	if word&0x3F != 0x21 {
		t.Fatalf("funct field wrong: %#x", word)
	}
}

func TestEncodeIFieldPlacementAndSignExtension(t *testing.T) {
	word := EncodeI(0x09, 5, 6, -1)
	if word&0xFFFF != 0xFFFF {
		t.Fatalf("expected immediate field 0xFFFF for -1, got %#x", word&0xFFFF)
	}
}

func TestEncodeJMasksAndShiftsTarget(t *testing.T) {
	word := EncodeJ(0x02, 0x80100004)
	if (word>>26)&0x3F != 0x02 {
		t.Fatalf("opcode field wrong: %#x", word)
	}
	if word&0x3FFFFFF != (0x80100004>>2)&0x3FFFFFF {
		t.Fatalf("address field wrong: %#x", word&0x3FFFFFF)
	}
}

func TestCheckFieldPanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a field that does not fit")
		}
	}()
	EncodeR(0x40, 0, 0, 0, 0, 0) // opcode 0x40 does not fit in 6 bits
}

func TestNopIsZero(t *testing.T) {
	if nop() != 0 {
		t.Fatalf("expected NOP to encode as 0, got %#x", nop())
	}
}

func TestLoadAddressSplitsUpperLower(t *testing.T) {
	words := loadAddress(regK0, 0xFF200300)
	if len(words) != 2 {
		t.Fatalf("expected a 2-instruction sequence, got %d", len(words))
	}
	// lui k0, 0xFF20 then ori k0, k0, 0x0300.
	if words[0]&0xFFFF != 0xFF20 {
		t.Fatalf("expected lui immediate 0xFF20, got %#x", words[0]&0xFFFF)
	}
	if words[1]&0xFFFF != 0x0300 {
		t.Fatalf("expected ori immediate 0x0300, got %#x", words[1]&0xFFFF)
	}
}

func TestBranchToStartTargetsIndexZero(t *testing.T) {
	b, n := branchToStart(3)
	if n != nop() {
		t.Fatal("expected the delay slot to be a NOP")
	}
	if int32(int16(b&0xFFFF)) != -4 {
		t.Fatalf("expected offset -4 from branch index 3, got %d", int32(int16(b&0xFFFF)))
	}
}
