/*
NAME
  bytebuffer_test.go - tests for bytebuffer.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bytebuffer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("could not write temp file: %v", err)
	}
	return path
}

func TestReadU8(t *testing.T) {
	path := writeTempFile(t, []byte{0x00, 0xAB, 0xFF})
	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer buf.Close()

	v, err := buf.ReadU8(1)
	if err != nil {
		t.Fatalf("ReadU8 failed: %v", err)
	}
	if v != 0xAB {
		t.Errorf("got 0x%02x, want 0xAB", v)
	}
}

func TestReadU16BE(t *testing.T) {
	path := writeTempFile(t, []byte{0x12, 0x34, 0x00})
	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer buf.Close()

	v, err := buf.ReadU16BE(0)
	if err != nil {
		t.Fatalf("ReadU16BE failed: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("got 0x%04x, want 0x1234", v)
	}
}

func TestReadU32BE(t *testing.T) {
	path := writeTempFile(t, []byte{0x00, 0x00, 0x01, 0xBA, 0xFF})
	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer buf.Close()

	v, err := buf.ReadU32BE(0)
	if err != nil {
		t.Fatalf("ReadU32BE failed: %v", err)
	}
	if v != 0x000001BA {
		t.Errorf("got 0x%08x, want 0x000001ba", v)
	}
}

func TestReadOutOfRange(t *testing.T) {
	path := writeTempFile(t, []byte{0x01, 0x02})
	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer buf.Close()

	if _, err := buf.ReadU32BE(0); err == nil {
		t.Error("expected error reading 4 bytes from a 2-byte file, got nil")
	}
	if _, err := buf.ReadU8(5); err == nil {
		t.Error("expected error reading out-of-range offset, got nil")
	}
}

func TestCloseThenRead(t *testing.T) {
	path := writeTempFile(t, []byte{0x01, 0x02, 0x03, 0x04})
	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := buf.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Close should be idempotent.
	if err := buf.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := buf.ReadU8(0); err == nil {
		t.Error("expected error reading from closed buffer, got nil")
	}
}

func TestSize(t *testing.T) {
	path := writeTempFile(t, make([]byte, 2048))
	buf, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer buf.Close()
	if buf.Size() != 2048 {
		t.Errorf("got size %d, want 2048", buf.Size())
	}
}
