/*
NAME
  config.go - configuration settings for the VobSub codec.

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

// Package vobsubcfg contains the configuration settings for the VobSub
// codec. It deliberately only defines the struct and its field defaults:
// the general-purpose key-value file loader that could populate it from an
// INI-style file is out of scope (spec.md §1 non-goals); callers construct
// a Config directly or via their own flag/JSON/INI glue.
package vobsubcfg

import "github.com/ausocean/utils/logging"

// Config carries the behavioural knobs the codec needs beyond what's
// encoded in the .idx/.sub wire format itself.
type Config struct {
	// FixZeroAlpha enables the invisible-caption fallback (spec.md §4.5):
	// when a subpicture's parsed alpha indices are all zero, reuse the
	// previous subpicture's alpha instead of leaving it fully transparent.
	FixZeroAlpha bool

	// CropOffsetY is the number of rows trimmed from the top and bottom of
	// every bitmap before RLE encoding. It shifts both the height written
	// to the .idx file (spec.md §4.3) and the vertical origin of every
	// subpicture written to the .sub file (spec.md §4.7).
	CropOffsetY uint16

	// LanguageIndex selects which row of idx.Languages is written as the
	// id:/langidx: pair by IdxWriter. NOTE: the langidx: value itself is
	// always emitted as 0 regardless of this field, a known inconsistency
	// in the original writer that is preserved; see DESIGN.md.
	LanguageIndex int

	// Logger receives every FormatWarning (spec.md §7) emitted while
	// reading or writing. Must be set; the codec does not fall back to
	// the standard log package.
	Logger logging.Logger
}

// Default returns a Config with the codec's default behaviour: no
// zero-alpha fixup, no vertical crop, the first language table row, and l
// as the logger.
func Default(l logging.Logger) Config {
	return Config{
		FixZeroAlpha:  false,
		CropOffsetY:   0,
		LanguageIndex: 0,
		Logger:        l,
	}
}
