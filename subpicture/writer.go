/*
NAME
  writer.go - serializes a subpicture back into RLE + control header bytes
  and MPEG-PS packs.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subpicture

import (
	"github.com/ausocean/vobsub/mpegps"
	"github.com/ausocean/vobsub/spu"
)

// Writer packetizes SubPicture values for a single stream ID.
type Writer struct {
	StreamID uint8

	// CropOffsetY shifts a subpicture's vertical origin up (reduces its Y)
	// by this many pixels, clamped so the bitmap still fits on screen
	// (spec.md §4.7).
	CropOffsetY uint16
}

// NewWriter returns a Writer that tags every pack it produces with
// streamID and applies cropOffsetY to each subpicture's vertical origin.
func NewWriter(streamID uint8, cropOffsetY uint16) *Writer {
	return &Writer{StreamID: streamID, CropOffsetY: cropOffsetY}
}

// Encode serializes sp, with its bitmap already compressed into rleEven
// and rleOdd, into the MPEG-PS packs that would reproduce it on read.
func (w *Writer) Encode(sp *SubPicture, rleEven, rleOdd []byte) ([]byte, error) {
	rle := make([]byte, 0, len(rleEven)+len(rleOdd))
	rle = append(rle, rleEven...)
	rle = append(rle, rleOdd...)

	cs := &spu.ControlSequence{
		PaletteIndices: sp.PaletteIndices,
		AlphaIndices:   sp.AlphaIndices,
		Rect: spu.Rect{
			X:      sp.ImageX,
			Y:      w.cropY(sp),
			Width:  sp.ImageWidth,
			Height: sp.ImageHeight,
		},
		EvenOffset: 0,
		OddOffset:  uint16(len(rleEven)),
		Forced:     sp.Forced,
		Delay:      sp.EndPTS - sp.StartPTS,
	}

	ctrlOffsetRelative := len(rle) + 2
	ctrl := cs.Bytes(ctrlOffsetRelative)

	return mpegps.Write(rle, ctrl, sp.StartPTS, w.StreamID), nil
}

// cropY applies the vertical crop-offset clamp: the image's on-screen Y
// origin is reduced by CropOffsetY, but never pushed past the point where
// the bitmap (inflated by twice the crop offset) would run off the bottom
// of the screen or above the top.
func (w *Writer) cropY(sp *SubPicture) uint16 {
	y := int(sp.ImageY) - int(w.CropOffsetY)
	max := int(sp.ScreenHeight) - int(sp.ImageHeight) - 2*int(w.CropOffsetY)
	if y < 0 {
		y = 0
	}
	if max < 0 {
		max = 0
	}
	if y > max {
		y = max
	}
	return uint16(y)
}
