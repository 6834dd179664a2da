/*
NAME
  control_test.go - tests for control sequence parsing and serialization.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package spu

import (
	"bytes"
	"testing"

	"github.com/ausocean/utils/logging"
)

func testLogger() logging.Logger {
	return logging.New(logging.Debug, &bytes.Buffer{}, true)
}

// TestRoundTrip builds a ControlSequence, serializes it and parses the
// result back, checking every field survives.
func TestRoundTrip(t *testing.T) {
	cs := &ControlSequence{
		PaletteIndices: [4]uint8{0, 1, 2, 3},
		AlphaIndices:   [4]uint8{15, 15, 15, 15},
		Rect:           Rect{X: 0, Y: 0, Width: 16, Height: 32},
		EvenOffset:     0,
		OddOffset:      12,
		Forced:         false,
		Delay:          25 * 1024,
	}
	const ctrlOffsetRelative = 1000 // Stands in for rle_size + 2.

	buf := cs.Bytes(ctrlOffsetRelative)
	if len(buf) != cs.Size() {
		t.Fatalf("Bytes produced %d bytes, Size reports %d", len(buf), cs.Size())
	}

	got, err := Parse(buf, ParseOptions{CtrlOffsetRelative: ctrlOffsetRelative}, testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.PaletteIndices != cs.PaletteIndices {
		t.Errorf("palette: got %v, want %v", got.PaletteIndices, cs.PaletteIndices)
	}
	if got.AlphaIndices != cs.AlphaIndices {
		t.Errorf("alpha: got %v, want %v", got.AlphaIndices, cs.AlphaIndices)
	}
	if got.Rect != cs.Rect {
		t.Errorf("rect: got %+v, want %+v", got.Rect, cs.Rect)
	}
	if got.EvenOffset != cs.EvenOffset || got.OddOffset != cs.OddOffset {
		t.Errorf("offsets: got (%d,%d), want (%d,%d)", got.EvenOffset, got.OddOffset, cs.EvenOffset, cs.OddOffset)
	}
	if got.Delay != cs.Delay {
		t.Errorf("delay: got %d, want %d", got.Delay, cs.Delay)
	}
	if got.NumSequences != 2 {
		t.Errorf("num sequences: got %d, want 2", got.NumSequences)
	}
}

// TestForcedRoundTrip checks the forced-caption marker survives a round
// trip and correctly shifts the end-sequence offset by one byte.
func TestForcedRoundTrip(t *testing.T) {
	cs := &ControlSequence{
		PaletteIndices: [4]uint8{1, 1, 1, 1},
		AlphaIndices:   [4]uint8{15, 0, 0, 0},
		Rect:           Rect{X: 10, Y: 20, Width: 100, Height: 40},
		EvenOffset:     0,
		OddOffset:      200,
		Forced:         true,
	}
	buf := cs.Bytes(500)
	if raw, want := int(buf[0])<<8|int(buf[1]), 500+2+firstRecordFixedLen+1; raw != want {
		t.Errorf("end-sequence offset field: got %d, want %d", raw, want)
	}
	got, err := Parse(buf, ParseOptions{CtrlOffsetRelative: 500}, testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !got.Forced {
		t.Error("forced flag lost across round trip")
	}
	if got.Delay != 0 {
		t.Errorf("got delay %d, want 0", got.Delay)
	}
}

// TestZeroAlphaFixup verifies the invisible-caption fallback (§4.5 edge
// cases): when every parsed alpha index is zero and FixZeroAlpha is set,
// the previous subpicture's alpha is substituted.
func TestZeroAlphaFixup(t *testing.T) {
	cs := &ControlSequence{
		PaletteIndices: [4]uint8{0, 1, 2, 3},
		AlphaIndices:   [4]uint8{0, 0, 0, 0},
		Rect:           Rect{X: 0, Y: 0, Width: 8, Height: 8},
	}
	buf := cs.Bytes(0)

	prev := [4]uint8{4, 5, 6, 7}
	got, err := Parse(buf, ParseOptions{FixZeroAlpha: true, PrevAlpha: prev}, testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.AlphaIndices != prev {
		t.Errorf("got alpha %v, want fallback %v", got.AlphaIndices, prev)
	}
}

// TestZeroAlphaNoFixup checks that without FixZeroAlpha the zero alpha is
// left untouched (just warned about).
func TestZeroAlphaNoFixup(t *testing.T) {
	cs := &ControlSequence{Rect: Rect{Width: 1, Height: 1}}
	buf := cs.Bytes(0)
	got, err := Parse(buf, ParseOptions{}, testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.AlphaIndices != ([4]uint8{}) {
		t.Errorf("got alpha %v, want all zero", got.AlphaIndices)
	}
}

// TestThreeSequenceChainWarns builds a control buffer with three chained
// end-sequence records by hand and checks the last delay wins and the
// erratic-result warning condition (NumSequences > 2) is detected.
func TestThreeSequenceChainWarns(t *testing.T) {
	const ctrlOffsetRelative = 0

	// Record 0: minimal commands, no forced marker.
	cs := &ControlSequence{Rect: Rect{Width: 1, Height: 1}}
	rec0 := cs.Bytes(ctrlOffsetRelative)
	// Bytes() always appends its own single chained record (6 bytes); trim
	// that off and hand-build three records instead so we control their
	// "next" pointers precisely.
	rec0 = rec0[:len(rec0)-6]

	firstLen := len(rec0)
	rec1Ofs := firstLen
	rec2Ofs := rec1Ofs + 6

	// Patch record 0's header slot to point at record 1.
	raw1 := ctrlOffsetRelative + 2 + rec1Ofs
	rec0[0] = byte(raw1 >> 8)
	rec0[1] = byte(raw1)

	mkRecord := func(delay uint16, nextRaw int) []byte {
		return []byte{
			byte(delay >> 8), byte(delay),
			byte(nextRaw >> 8), byte(nextRaw),
			cmdStopDisplay, cmdEnd,
		}
	}
	raw2 := ctrlOffsetRelative + 2 + rec2Ofs

	buf := append([]byte{}, rec0...)
	buf = append(buf, mkRecord(10, raw2)...) // record 1: points at record 2.
	buf = append(buf, mkRecord(20, raw2)...) // record 2: points at itself (terminator).

	got, err := Parse(buf, ParseOptions{CtrlOffsetRelative: ctrlOffsetRelative}, testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.NumSequences != 3 {
		t.Fatalf("got %d sequences, want 3", got.NumSequences)
	}
	if got.Delay != 20*1024 {
		t.Errorf("got delay %d, want %d", got.Delay, 20*1024)
	}
}
