/*
NAME
  subpicture.go - the in-memory representation of one decoded DVD caption.

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

// Package subpicture drives the MPEG-PS packetizer and the control
// sequence parser/serializer to read and write whole DVD subpictures, and
// exposes them through a small subtitle-stream capability interface.
package subpicture

import "github.com/ausocean/vobsub/mpegps"

// SubPicture is one displayed DVD caption, either freshly parsed from a
// .sub file or about to be written to one (spec.md §3).
type SubPicture struct {
	FileOffset uint64
	StartPTS   int64
	EndPTS     int64

	ScreenWidth, ScreenHeight   uint16
	ImageX, ImageY              uint16
	ImageWidth, ImageHeight     uint16
	PaletteIndices              [4]uint8
	AlphaIndices                [4]uint8
	Forced                      bool
	EvenOffset, OddOffset       uint16

	// RleFragments records where this subpicture's RLE bytes live in the
	// source file; populated only when SubPicture was produced by a Reader.
	RleFragments []mpegps.RleFragment
	RleSize      int

	// Original* is a snapshot of the fields above taken immediately after
	// parsing, preserved so a caller can detect and re-encode only the
	// fields a user actually edited.
	OriginalPaletteIndices [4]uint8
	OriginalAlphaIndices   [4]uint8
	OriginalImageX         uint16
	OriginalImageY         uint16
}

// snapshotOriginal copies the current mutable fields into the Original*
// fields; called once, right after a Reader finishes populating sp.
func (sp *SubPicture) snapshotOriginal() {
	sp.OriginalPaletteIndices = sp.PaletteIndices
	sp.OriginalAlphaIndices = sp.AlphaIndices
	sp.OriginalImageX = sp.ImageX
	sp.OriginalImageY = sp.ImageY
}
