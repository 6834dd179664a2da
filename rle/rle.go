/*
NAME
  rle.go - the run-length image codec collaborator interface.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rle declares the run-length encoding interface the VobSub codec
// treats as an external collaborator: compressing and decompressing the
// even/odd interleaved subpicture bitmap is deliberately out of scope for
// this module (spec.md §1), so callers supply their own implementation.
package rle

import "image"

// Bitmap holds one 2-bit index per pixel selecting one of the four
// palette/alpha entries, as consumed and produced by an Encoder/Decoder.
type Bitmap struct {
	Width, Height int
	// Pixels holds one index (0..3) per pixel, row-major.
	Pixels []uint8
}

// Encoder compresses a bitmap into the even and odd interleaved RLE byte
// streams a subpicture's control header points at.
type Encoder interface {
	// EncodeLines compresses either the even-numbered or odd-numbered rows
	// of bitmap, returning the resulting RLE byte stream.
	EncodeLines(bitmap *Bitmap, evenField bool) ([]byte, error)
}

// Decoder reconstructs a bitmap from a subpicture's reassembled RLE bytes.
type Decoder interface {
	// DecodeImage decompresses buffer (the concatenated even/odd RLE
	// streams starting at their respective offsets) into a bitmap sized
	// width x height, treating transparentIndex as fully transparent.
	DecodeImage(width, height int, buffer []byte, evenOffset, oddOffset int, transparentIndex uint8) (*Bitmap, error)
}

// Codec composes Encoder and Decoder; most callers implement both sides
// together since they share the same palette/alpha conventions.
type Codec interface {
	Encoder
	Decoder
}

// ToImage renders bitmap through a 4-entry RGBA palette, handy for callers
// that want a standard library image.Image rather than raw indices.
func ToImage(bitmap *Bitmap, palette [4]uint32, alpha [4]uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, bitmap.Width, bitmap.Height))
	for y := 0; y < bitmap.Height; y++ {
		for x := 0; x < bitmap.Width; x++ {
			idx := bitmap.Pixels[y*bitmap.Width+x] & 0x03
			c := palette[idx]
			a := alpha[idx] * 17 // Scale 4-bit alpha (0..15) to 8-bit (0..255).
			o := img.PixOffset(x, y)
			img.Pix[o+0] = byte(c >> 16)
			img.Pix[o+1] = byte(c >> 8)
			img.Pix[o+2] = byte(c)
			img.Pix[o+3] = a
		}
	}
	return img
}
