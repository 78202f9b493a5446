// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

// packetSize is the USB-Blaster's bulk packet size (spec.md §6).
const packetSize = 64

// packetBuffer is the 64-byte write-side accumulator described in spec.md
// §4.1. It fills, auto-flushes on overflow, and must be explicitly flushed
// before any read (spec.md §3 invariant 4).
type packetBuffer struct {
	transport Transport
	buf       [packetSize]byte
	fill      int
}

func newPacketBuffer(t Transport) *packetBuffer {
	return &packetBuffer{transport: t}
}

// remaining reports how many more bytes can be queued before a flush is
// forced. Callers must check this before queueBytes to avoid the
// programmer-error abort path.
func (p *packetBuffer) remaining() int {
	return packetSize - p.fill
}

// queueByte appends one byte, flushing first if the buffer was already full
// and flushing again if this byte exactly fills it.
func (p *packetBuffer) queueByte(b byte) error {
	if p.fill >= packetSize {
		if err := p.flush(); err != nil {
			return err
		}
	}

	p.buf[p.fill] = b
	p.fill++

	if p.fill == packetSize {
		return p.flush()
	}
	return nil
}

// queueBytes appends a block of n bytes (data == nil means n zero bytes),
// flushing iff the block exactly fills the buffer. n must not exceed
// remaining(); violating that is a programmer error per spec.md §4.1 and
// aborts the process rather than returning an error.
func (p *packetBuffer) queueBytes(data []byte, n int) error {
	if n > p.remaining() {
		queueOverflow(n, p.remaining())
	}

	if data == nil {
		for i := 0; i < n; i++ {
			p.buf[p.fill+i] = 0
		}
	} else {
		copy(p.buf[p.fill:p.fill+n], data[:n])
	}
	p.fill += n

	if p.fill == packetSize {
		return p.flush()
	}
	return nil
}

// flush writes the accumulated bytes to the transport, retrying on partial
// writes until all bytes are accepted (spec.md §4.1), then resets fill to
// zero (spec.md §3 invariant 3).
func (p *packetBuffer) flush() error {
	if p.fill == 0 {
		return nil
	}

	pending := p.buf[:p.fill]
	for len(pending) > 0 {
		wrote, err := p.transport.Write(pending)
		if err != nil {
			p.fill = 0
			return wrapTransportError("packet buffer flush", err)
		}
		pending = pending[wrote:]
	}

	p.fill = 0
	return nil
}

// read flushes any pending writes (spec.md §3 invariant 4) and then reads
// exactly n bytes from the transport.
func (p *packetBuffer) read(out []byte, n int) error {
	if err := p.flush(); err != nil {
		return err
	}

	got := 0
	for got < n {
		n2, err := p.transport.Read(out[got:n])
		if err != nil {
			return wrapTransportError("packet buffer read", err)
		}
		if n2 == 0 {
			return newDeviceError(ErrTransport, "packet buffer read: transport returned zero bytes")
		}
		got += n2
	}
	return nil
}
