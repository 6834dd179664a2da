/*
NAME
  stream.go - a capability interface over a decoded .idx/.sub pair, so
  callers can work against "a subtitle stream" without depending on the
  VobSub container format directly.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subpicture

import (
	"fmt"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vobsub/bytebuffer"
	"github.com/ausocean/vobsub/idx"
	"github.com/ausocean/vobsub/rle"
)

// Stream is the capability surface a decoded subtitle track exposes,
// independent of its on-disk container. Frame indices are positions in the
// seed list returned by idx.Parse, in ascending PTS order.
type Stream interface {
	// Decode parses the i'th subpicture's control header, without yet
	// decompressing its bitmap.
	Decode(i int) error

	// GetImage returns the i'th subpicture's bitmap, decoding it on demand
	// with the Decoder supplied at construction.
	GetImage(i int) (*rle.Bitmap, error)

	// GetPalette returns the 16-entry RGB palette from the .idx header.
	GetPalette() [16]uint32

	// GetBitmap returns the i'th subpicture's decompressed indexed pixels,
	// without palette/alpha application. It returns the same bitmap as
	// GetImage.
	GetBitmap(i int) (*rle.Bitmap, error)

	// GetSubPicture returns the i'th subpicture's parsed metadata, calling
	// Decode for i first if it has not been decoded yet.
	GetSubPicture(i int) (*SubPicture, error)

	GetStartTime(i int) (int64, error)
	GetEndTime(i int) (int64, error)
	GetFrameCount() int
	IsForced(i int) (bool, error)

	Close() error
}

// SubDvd is a Stream backed by a VobSub .idx/.sub pair.
type SubDvd struct {
	bb     *bytebuffer.ByteBuffer
	hdr    *idx.Header
	seeds  []idx.Seed
	reader *Reader
	codec  rle.Decoder

	decoded []*SubPicture // decoded[i] is nil until Decode(i) succeeds.
}

// OpenSubDvd parses idxPath and opens subPath, returning a Stream over the
// active-language subpictures they describe. codec decompresses each
// subpicture's RLE bitmap; it may be nil if callers only need metadata.
func OpenSubDvd(idxPath, subPath string, fixZeroAlpha bool, codec rle.Decoder, log logging.Logger) (*SubDvd, error) {
	hdr, seeds, err := idx.Parse(idxPath, log)
	if err != nil {
		return nil, err
	}
	bb, err := bytebuffer.Open(subPath)
	if err != nil {
		return nil, err
	}

	streamID := uint8(0)
	for _, s := range hdr.Streams {
		if s.Index == hdr.ActiveLanguageIndex {
			streamID = s.Index
			break
		}
	}

	return &SubDvd{
		bb:      bb,
		hdr:     hdr,
		seeds:   seeds,
		reader:  NewReader(bb, hdr, streamID, fixZeroAlpha, log),
		codec:   codec,
		decoded: make([]*SubPicture, len(seeds)),
	}, nil
}

func (s *SubDvd) checkIndex(i int) error {
	if i < 0 || i >= len(s.seeds) {
		return fmt.Errorf("subpicture index %d out of range [0,%d)", i, len(s.seeds))
	}
	return nil
}

func (s *SubDvd) endOffset(i int) int64 {
	if i+1 < len(s.seeds) {
		return int64(s.seeds[i+1].FileOffset)
	}
	return s.bb.Size()
}

// Decode implements Stream.
func (s *SubDvd) Decode(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if s.decoded[i] != nil {
		return nil
	}
	sp, err := s.reader.Decode(s.seeds[i], s.endOffset(i))
	if err != nil {
		return err
	}
	s.decoded[i] = sp
	return nil
}

// GetSubPicture implements Stream.
func (s *SubDvd) GetSubPicture(i int) (*SubPicture, error) {
	if err := s.Decode(i); err != nil {
		return nil, err
	}
	return s.decoded[i], nil
}

// GetBitmap implements Stream.
func (s *SubDvd) GetBitmap(i int) (*rle.Bitmap, error) {
	sp, err := s.GetSubPicture(i)
	if err != nil {
		return nil, err
	}
	if s.codec == nil {
		return nil, fmt.Errorf("no RLE decoder configured")
	}
	rleBytes, err := s.reader.ReadRle(sp)
	if err != nil {
		return nil, err
	}
	transparent := uint8(0) // Convention: palette entry 0 is background.
	return s.codec.DecodeImage(int(sp.ImageWidth), int(sp.ImageHeight), rleBytes, int(sp.EvenOffset), int(sp.OddOffset), transparent)
}

// GetImage implements Stream.
func (s *SubDvd) GetImage(i int) (*rle.Bitmap, error) {
	return s.GetBitmap(i)
}

// GetPalette implements Stream.
func (s *SubDvd) GetPalette() [16]uint32 { return s.hdr.Palette }

// GetStartTime implements Stream.
func (s *SubDvd) GetStartTime(i int) (int64, error) {
	sp, err := s.GetSubPicture(i)
	if err != nil {
		return 0, err
	}
	return sp.StartPTS, nil
}

// GetEndTime implements Stream.
func (s *SubDvd) GetEndTime(i int) (int64, error) {
	sp, err := s.GetSubPicture(i)
	if err != nil {
		return 0, err
	}
	return sp.EndPTS, nil
}

// GetFrameCount implements Stream.
func (s *SubDvd) GetFrameCount() int { return len(s.seeds) }

// IsForced implements Stream.
func (s *SubDvd) IsForced(i int) (bool, error) {
	sp, err := s.GetSubPicture(i)
	if err != nil {
		return false, err
	}
	return sp.Forced, nil
}

// Close implements Stream.
func (s *SubDvd) Close() error { return s.bb.Close() }

// NumForced returns the running count of forced captions decoded so far.
func (s *SubDvd) NumForced() int { return s.reader.NumForced() }
