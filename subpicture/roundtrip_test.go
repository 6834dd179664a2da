/*
NAME
  roundtrip_test.go - end-to-end write/read tests driving the packetizer
  and control-sequence codec together through a full subpicture.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subpicture

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vobsub/bytebuffer"
	"github.com/ausocean/vobsub/idx"
	"github.com/ausocean/vobsub/mpegps"
)

func testLogger() logging.Logger {
	return logging.New(logging.Debug, &bytes.Buffer{}, true)
}

func openBuf(t *testing.T, data []byte) *bytebuffer.ByteBuffer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sub")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("could not write temp file: %v", err)
	}
	bb, err := bytebuffer.Open(path)
	if err != nil {
		t.Fatalf("could not open byte buffer: %v", err)
	}
	t.Cleanup(func() { bb.Close() })
	return bb
}

// TestWriteDecodeRoundTrip builds a SubPicture, encodes it with Writer,
// decodes the resulting bytes with Reader, and checks every field the
// codec controls survives (spec.md §8 property 1/2).
func TestWriteDecodeRoundTrip(t *testing.T) {
	hdr := &idx.Header{ScreenWidth: 720, ScreenHeight: 576}

	sp := &SubPicture{
		StartPTS:       90000,
		EndPTS:         90000 + 25*1024,
		ScreenWidth:    720,
		ScreenHeight:   576,
		ImageX:         10,
		ImageY:         20,
		ImageWidth:     16,
		ImageHeight:    32,
		PaletteIndices: [4]uint8{0, 1, 2, 3},
		AlphaIndices:   [4]uint8{15, 15, 15, 15},
		Forced:         false,
	}

	rleEven := bytes.Repeat([]byte{0xAB}, 60)
	rleOdd := bytes.Repeat([]byte{0xCD}, 40)

	w := NewWriter(0, 0)
	out, err := w.Encode(sp, rleEven, rleOdd)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(out)%mpegps.PackSize != 0 {
		t.Fatalf("encoded length %d is not a multiple of %d (§8 property 3)", len(out), mpegps.PackSize)
	}

	bb := openBuf(t, out)
	r := NewReader(bb, hdr, 0, false, testLogger())
	got, err := r.Decode(idx.Seed{PTS: sp.StartPTS, FileOffset: 0}, int64(len(out)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.StartPTS != sp.StartPTS {
		t.Errorf("StartPTS: got %d, want %d", got.StartPTS, sp.StartPTS)
	}
	if got.EndPTS != sp.EndPTS {
		t.Errorf("EndPTS: got %d, want %d", got.EndPTS, sp.EndPTS)
	}
	if got.ImageX != sp.ImageX || got.ImageY != sp.ImageY {
		t.Errorf("image origin: got (%d,%d), want (%d,%d)", got.ImageX, got.ImageY, sp.ImageX, sp.ImageY)
	}
	if got.ImageWidth != sp.ImageWidth || got.ImageHeight != sp.ImageHeight {
		t.Errorf("image size: got %dx%d, want %dx%d", got.ImageWidth, got.ImageHeight, sp.ImageWidth, sp.ImageHeight)
	}
	if diff := cmp.Diff(sp.PaletteIndices, got.PaletteIndices); diff != "" {
		t.Errorf("palette mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sp.AlphaIndices, got.AlphaIndices); diff != "" {
		t.Errorf("alpha mismatch (-want +got):\n%s", diff)
	}
	if got.Forced != sp.Forced {
		t.Errorf("Forced: got %v, want %v", got.Forced, sp.Forced)
	}
	if got.OddOffset-got.EvenOffset != uint16(len(rleEven)) {
		t.Errorf("odd_offset - even_offset = %d, want %d (§8 property 4)", got.OddOffset-got.EvenOffset, len(rleEven))
	}

	rle, err := r.ReadRle(got)
	if err != nil {
		t.Fatalf("ReadRle failed: %v", err)
	}
	wantRle := append(append([]byte{}, rleEven...), rleOdd...)
	if !bytes.Equal(rle, wantRle) {
		t.Errorf("rle bytes mismatch: got %d bytes, want %d bytes", len(rle), len(wantRle))
	}
}

// TestWriteDecodeForced exercises the forced-caption path end to end: the
// leading control command shifts by one byte and the reader's NumForced
// counter increments.
func TestWriteDecodeForced(t *testing.T) {
	hdr := &idx.Header{ScreenWidth: 320, ScreenHeight: 240}
	sp := &SubPicture{
		StartPTS:       1000,
		EndPTS:         1000,
		ScreenWidth:    320,
		ScreenHeight:   240,
		ImageX:         0,
		ImageY:         0,
		ImageWidth:     8,
		ImageHeight:    8,
		PaletteIndices: [4]uint8{1, 1, 1, 1},
		AlphaIndices:   [4]uint8{15, 0, 0, 0},
		Forced:         true,
	}
	rle := bytes.Repeat([]byte{0x01}, 20)

	w := NewWriter(0, 0)
	out, err := w.Encode(sp, rle[:10], rle[10:])
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	bb := openBuf(t, out)
	r := NewReader(bb, hdr, 0, false, testLogger())
	got, err := r.Decode(idx.Seed{PTS: sp.StartPTS, FileOffset: 0}, int64(len(out)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !got.Forced {
		t.Error("forced flag lost across write/decode round trip")
	}
	if r.NumForced() != 1 {
		t.Errorf("NumForced: got %d, want 1", r.NumForced())
	}
}

// TestMultiPackWriteDecode exercises spec.md §8 scenario S3: a payload
// large enough that Writer must split it across three packs, with the
// final pack padded by a 0x000001BE packet.
func TestMultiPackWriteDecode(t *testing.T) {
	hdr := &idx.Header{ScreenWidth: 720, ScreenHeight: 576}
	sp := &SubPicture{
		StartPTS:       500000,
		EndPTS:         500000 + 50*1024,
		ScreenWidth:    720,
		ScreenHeight:   576,
		ImageWidth:     100,
		ImageHeight:    200,
		PaletteIndices: [4]uint8{3, 2, 1, 0},
		AlphaIndices:   [4]uint8{15, 10, 5, 0},
	}
	rleEven := bytes.Repeat([]byte{0x5A}, 2500)
	rleOdd := bytes.Repeat([]byte{0xA5}, 2500)

	w := NewWriter(0, 0)
	out, err := w.Encode(sp, rleEven, rleOdd)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got, want := len(out), 3*mpegps.PackSize; got != want {
		t.Fatalf("encoded length = %d, want %d (three packs)", got, want)
	}

	bb := openBuf(t, out)
	r := NewReader(bb, hdr, 0, false, testLogger())
	got, err := r.Decode(idx.Seed{PTS: sp.StartPTS, FileOffset: 0}, int64(len(out)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	rle, err := r.ReadRle(got)
	if err != nil {
		t.Fatalf("ReadRle failed: %v", err)
	}
	wantRle := append(append([]byte{}, rleEven...), rleOdd...)
	if !bytes.Equal(rle, wantRle) {
		t.Error("rle bytes mismatch across multi-pack round trip")
	}
}
