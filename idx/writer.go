/*
NAME
  writer.go - emits the textual .idx sidecar (§4.3).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package idx

import (
	"fmt"
	"io"
)

// preamble is the fixed first line of every .idx file emitted by this
// package; VobSub players key off this exact text.
const preamble = "# VobSub index file, v7 (do not modify this line!)"

// WriterConfig carries the fields that influence idx emission beyond the
// Header and Seeds themselves.
type WriterConfig struct {
	// CropOffsetY is subtracted twice from the screen height on emission
	// (§4.3): the writer assumes CropOffsetY rows were trimmed from both
	// the top and bottom of every bitmap before encoding.
	CropOffsetY uint16

	// LanguageIndex selects the row of idx.Languages to emit as the id:/
	// langidx: pair. NOTE: per spec.md §9, the original writer hardcodes
	// "langidx: 0" regardless of the configured language index; that
	// inconsistency is preserved here deliberately (see DESIGN.md).
	LanguageIndex int
}

// Write emits a complete .idx file to w for the given header and seeds.
func Write(w io.Writer, hdr *Header, seeds []Seed, cfg WriterConfig) error {
	lang, ok := LookupIndex(cfg.LanguageIndex)
	if !ok {
		lang = Languages[0]
	}

	height := int(hdr.ScreenHeight) - 2*int(cfg.CropOffsetY)
	if height < 0 {
		height = 0
	}

	fmt.Fprintln(w, preamble)
	fmt.Fprintln(w, "#")
	fmt.Fprintf(w, "size: %dx%d\n", hdr.ScreenWidth, height)
	fmt.Fprintf(w, "org: %d, %d\n", hdr.GlobalXOfs, hdr.GlobalYOfs)
	fmt.Fprintln(w, "scale: 100%")
	fmt.Fprintln(w, "alpha: 100%")
	fmt.Fprintln(w, "smooth: OFF")
	fmt.Fprintln(w, "fadein/out: 0, 0")
	fmt.Fprintln(w, "align: OFF at LEFT TOP")
	fmt.Fprintf(w, "time offset: %d\n", hdr.GlobalDelayPTS/ptsFreq)
	fmt.Fprintln(w, "forced subs: 0")
	fmt.Fprint(w, "palette: ")
	for i, c := range hdr.Palette {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%06x", c)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "custom colors: OFF, tridx: 0000, colors: 000000, 000000, 000000, 000000")
	// NOTE: langidx is always written as 0, matching the known original
	// writer inconsistency (spec.md §9 Open Question); cfg.LanguageIndex
	// only selects which id: row is emitted below.
	fmt.Fprintln(w, "langidx: 0")
	fmt.Fprintf(w, "id: %s, index: 0\n", lang.Code)
	for _, s := range seeds {
		fmt.Fprintf(w, "timestamp: %s, filepos: %09x\n", formatHHMMSSms(s.PTS), s.FileOffset)
	}
	return nil
}

// formatHHMMSSms formats a PTS value (90 kHz ticks) as hh:mm:ss:ms.
func formatHHMMSSms(pts int64) string {
	ms := pts / ptsFreq
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d:%03d", h, m, s, ms)
}
