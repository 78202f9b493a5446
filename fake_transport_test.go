// Copyright 2020 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package ublaster

// fakeTransport is an in-memory Transport double shared by this package's
// tests. Writes accumulate in written; reads are served from a caller-
// primed queue of responses, one Read call's worth at a time.
type fakeTransport struct {
	written []byte
	rx      [][]byte

	vid, pid uint16
	desc     string
	opened   bool
	speed    uint32
}

func newFakeTransport() *fakeTransport { return &fakeTransport{} }

func (f *fakeTransport) Open() error  { f.opened = true; return nil }
func (f *fakeTransport) Close() error { f.opened = false; return nil }

func (f *fakeTransport) Write(buf []byte) (int, error) {
	f.written = append(f.written, buf...)
	return len(buf), nil
}

// queueRx primes the next Read call to return data.
func (f *fakeTransport) queueRx(data []byte) { f.rx = append(f.rx, data) }

func (f *fakeTransport) Read(buf []byte) (int, error) {
	if len(f.rx) == 0 {
		return 0, newDeviceError(ErrTransport, "fakeTransport: no queued response")
	}
	next := f.rx[0]
	f.rx = f.rx[1:]
	n := copy(buf, next)
	return n, nil
}

func (f *fakeTransport) SetSpeed(khz uint32) error { f.speed = khz; return nil }
func (f *fakeTransport) SetVIDPID(vid, pid uint16) { f.vid, f.pid = vid, pid }
func (f *fakeTransport) SetDescription(desc string) { f.desc = desc }
func (f *fakeTransport) Identify() (uint16, uint16, string) { return f.vid, f.pid, f.desc }
