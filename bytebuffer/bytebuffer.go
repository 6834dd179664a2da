/*
NAME
  bytebuffer.go - random-access byte-level view over a .sub/.idx file.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bytebuffer provides random-access, big-endian reads over a file,
// with the underlying file handle owned and closed by the buffer.
package bytebuffer

import (
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// ByteBuffer is a random-access view over a file. Unlike an io.Reader, reads
// do not advance an implicit cursor: callers pass the absolute offset to
// read from on every call. This is required so that PsPacketizer and
// SubpictureReader can jump between packet fragments scattered across the
// file without tracking a shared read position.
type ByteBuffer struct {
	mu   sync.Mutex
	f    *os.File
	path string
	size int64
}

// Open opens the file at path for random-access reading. The returned
// ByteBuffer owns the file handle; callers must call Close on every exit
// path, including error paths taken after Open succeeds.
func Open(path string) (*ByteBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "could not stat %s", path)
	}
	return &ByteBuffer{f: f, path: path, size: info.Size()}, nil
}

// Size returns the total size of the underlying file in bytes.
func (b *ByteBuffer) Size() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Close releases the underlying file handle. Close is idempotent.
func (b *ByteBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	return err
}

// Error is returned by the read accessors when ofs is out of range or the
// underlying file read fails.
type Error struct {
	Path   string
	Offset int64
	N      int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bytebuffer: %s: read at %d (%d bytes): %v", e.Path, e.Offset, e.N, e.Err)
	}
	return fmt.Sprintf("bytebuffer: %s: offset %d (%d bytes) out of range", e.Path, e.Offset, e.N)
}

func (e *Error) Unwrap() error { return e.Err }

// ReadBytes reads n bytes starting at ofs.
func (b *ByteBuffer) ReadBytes(ofs int64, n int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.f == nil {
		return nil, &Error{Path: b.path, Offset: ofs, N: n, Err: os.ErrClosed}
	}
	if ofs < 0 || n < 0 || ofs+int64(n) > b.size {
		return nil, &Error{Path: b.path, Offset: ofs, N: n}
	}
	buf := make([]byte, n)
	got, err := b.f.ReadAt(buf, ofs)
	if err != nil {
		return nil, &Error{Path: b.path, Offset: ofs, N: n, Err: err}
	}
	return buf[:got], nil
}

// ReadU8 reads an unsigned 8-bit value at ofs.
func (b *ByteBuffer) ReadU8(ofs int64) (byte, error) {
	d, err := b.ReadBytes(ofs, 1)
	if err != nil {
		return 0, err
	}
	return d[0], nil
}

// ReadU16BE reads a big-endian unsigned 16-bit value at ofs.
func (b *ByteBuffer) ReadU16BE(ofs int64) (uint16, error) {
	d, err := b.ReadBytes(ofs, 2)
	if err != nil {
		return 0, err
	}
	return uint16(d[0])<<8 | uint16(d[1]), nil
}

// ReadU32BE reads a big-endian unsigned 32-bit value at ofs.
func (b *ByteBuffer) ReadU32BE(ofs int64) (uint32, error) {
	d, err := b.ReadBytes(ofs, 4)
	if err != nil {
		return 0, err
	}
	return uint32(d[0])<<24 | uint32(d[1])<<16 | uint32(d[2])<<8 | uint32(d[3]), nil
}
