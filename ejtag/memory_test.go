// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ejtag

import "testing"

// The stub never exposes the target word it dereferences as its own PrAcc
// cycle — that load happens in target code, invisible to the probe — so
// this script only needs the fetch/param-in/param-out/loop-back cycles
// the probe actually services.
func TestReadU32RoundTrip(t *testing.T) {
	link := newFakeLink([]fakeCycle{
		{addr: DefaultPraccText, writing: false},
		{addr: DefaultPraccParamIn, writing: false},
		{addr: DefaultPraccParamOut, writing: true, data: 0x11223344},
		{addr: DefaultPraccText, writing: false},
	})
	c := NewContext(link)

	got, err := c.ReadU32(0x80001000)
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if got != 0x11223344 {
		t.Fatalf("expected 0x11223344, got %#x", got)
	}
}

func TestWriteU32SendsAddressAndValueAsInput(t *testing.T) {
	link := newFakeLink([]fakeCycle{
		{addr: DefaultPraccText, writing: false},
		{addr: DefaultPraccParamIn, writing: false},
		{addr: DefaultPraccParamIn, writing: false},
		{addr: DefaultPraccText, writing: false},
	})
	c := NewContext(link)
	if err := c.WriteU32(0x80002000, 0xAABBCCDD); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if c.in[0] != 0x80002000 || c.in[1] != 0xAABBCCDD {
		t.Fatalf("expected in=[addr,value], got %v", c.in)
	}
}

func TestReadMem32ChunksAtBlockWords(t *testing.T) {
	count := blockWords + 5
	// The text fetch that ends one Execute is left unanswered and is the
	// first fetch of the next, so each chunk's closing fetch is shared.
	script := []fakeCycle{{addr: DefaultPraccText, writing: false}}
	chunks := []int{blockWords, 5}
	for _, n := range chunks {
		for i := 0; i < n; i++ {
			script = append(script, fakeCycle{addr: DefaultPraccParamOut + uint32(4*i), writing: true, data: uint32(i)})
		}
		script = append(script, fakeCycle{addr: DefaultPraccText, writing: false})
	}
	link := newFakeLink(script)
	c := NewContext(link)

	out, err := c.ReadMem32(0x80000000, count)
	if err != nil {
		t.Fatalf("ReadMem32: %v", err)
	}
	if len(out) != count {
		t.Fatalf("expected %d words, got %d", count, len(out))
	}
}

func TestWriteRegsRejectsWrongLength(t *testing.T) {
	c := NewContext(newFakeLink(nil))
	err := c.WriteRegs(make([]uint32, 10))
	if err == nil {
		t.Fatal("expected an error for a register file that isn't 38 words")
	}
}
