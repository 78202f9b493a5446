// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

import "testing"

// TestReadRegsRoundTripsLoHi scripts a full register dump, including the
// lo/hi slots the stub fills via mflo/mfhi, and checks they come back
// untouched alongside an ordinary GPR.
func TestReadRegsRoundTripsLoHi(t *testing.T) {
	script := []fakeCycle{{addr: DefaultPraccText, writing: false}}
	values := make([]uint32, NumRegs)
	for i := 1; i < NumRegs; i++ {
		values[i] = uint32(0x1000 + i)
		script = append(script, fakeCycle{
			addr:    DefaultPraccParamOut + uint32(4*i),
			writing: true,
			data:    values[i],
		})
	}
	script = append(script, fakeCycle{addr: DefaultPraccText, writing: false})

	c := NewContext(newFakeLink(script))
	out, err := c.ReadRegs()
	if err != nil {
		t.Fatalf("ReadRegs: %v", err)
	}
	if out[0] != 0 {
		t.Fatalf("expected GPR0 to be reported as zero, got %#x", out[0])
	}
	if out[RegLo] != values[RegLo] || out[RegHi] != values[RegHi] {
		t.Fatalf("expected lo=%#x hi=%#x, got lo=%#x hi=%#x",
			values[RegLo], values[RegHi], out[RegLo], out[RegHi])
	}
	if out[5] != values[5] {
		t.Fatalf("expected GPR5=%#x, got %#x", values[5], out[5])
	}
}

func TestWriteRegsSendsLoHiAsInput(t *testing.T) {
	regs := make([]uint32, NumRegs)
	regs[RegLo] = 0xAAAA
	regs[RegHi] = 0xBBBB

	script := []fakeCycle{
		{addr: DefaultPraccText, writing: false},
		{addr: DefaultPraccText, writing: false},
	}
	c := NewContext(newFakeLink(script))
	if err := c.WriteRegs(regs); err != nil {
		t.Fatalf("WriteRegs: %v", err)
	}
	if c.in[RegLo] != 0xAAAA || c.in[RegHi] != 0xBBBB {
		t.Fatalf("expected lo/hi forwarded as input, got lo=%#x hi=%#x", c.in[RegLo], c.in[RegHi])
	}
}
