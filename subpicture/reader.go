/*
NAME
  reader.go - drives the packetizer and control sequence parser to
  reassemble one subpicture at a time.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subpicture

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vobsub/bytebuffer"
	"github.com/ausocean/vobsub/idx"
	"github.com/ausocean/vobsub/mpegps"
	"github.com/ausocean/vobsub/spu"
)

// defaultAlpha is the initial value of Reader's last-alpha state, matching
// the process-wide cell's original default (spec.md §4.5 edge cases).
var defaultAlpha = [4]uint8{0, 15, 15, 15}

// Reader decodes subpictures from a .sub file, one at a time, in file
// order. It carries state across calls: the running forced-caption count
// and the alpha indices of the most recently decoded subpicture, per the
// ordering guarantee in spec.md §5. A Reader is not safe for concurrent
// use; construct one per decode pass.
type Reader struct {
	bb           *bytebuffer.ByteBuffer
	hdr          *idx.Header
	streamID     uint8
	fixZeroAlpha bool
	log          logging.Logger

	lastAlpha [4]uint8
	numForced int
}

// NewReader returns a Reader bound to bb, using hdr for screen geometry
// and origin, and reading only packets tagged with streamID.
func NewReader(bb *bytebuffer.ByteBuffer, hdr *idx.Header, streamID uint8, fixZeroAlpha bool, log logging.Logger) *Reader {
	return &Reader{
		bb:           bb,
		hdr:          hdr,
		streamID:     streamID,
		fixZeroAlpha: fixZeroAlpha,
		log:          log,
		lastAlpha:    defaultAlpha,
	}
}

// Decode reassembles and parses the subpicture starting at seed's file
// offset, bounded by endOffset (the next seed's offset, or the file size
// for the last one).
func (r *Reader) Decode(seed idx.Seed, endOffset int64) (*SubPicture, error) {
	res, err := mpegps.Read(r.bb, int64(seed.FileOffset), endOffset, r.streamID, r.log)
	if err != nil {
		return nil, err
	}

	cs, err := spu.Parse(res.CtrlBytes, spu.ParseOptions{
		CtrlOffsetRelative: res.CtrlOffsetRelative,
		FixZeroAlpha:       r.fixZeroAlpha,
		PrevAlpha:          r.lastAlpha,
	}, r.log)
	if err != nil {
		return nil, err
	}

	sp := &SubPicture{
		FileOffset:     seed.FileOffset,
		StartPTS:       seed.PTS,
		EndPTS:         seed.PTS + cs.Delay,
		ScreenWidth:    r.hdr.ScreenWidth,
		ScreenHeight:   r.hdr.ScreenHeight,
		ImageX:         cs.Rect.X + r.hdr.GlobalXOfs,
		ImageY:         cs.Rect.Y + r.hdr.GlobalYOfs,
		ImageWidth:     cs.Rect.Width,
		ImageHeight:    cs.Rect.Height,
		PaletteIndices: cs.PaletteIndices,
		AlphaIndices:   cs.AlphaIndices,
		Forced:         cs.Forced,
		EvenOffset:     cs.EvenOffset,
		OddOffset:      cs.OddOffset,
		RleFragments:   res.RleFragments,
		RleSize:        res.RleSize,
	}
	sp.snapshotOriginal()

	// Updates are applied only after parsing completes, so a sequential
	// decode(i) then decode(j) with i < j leaves lastAlpha reflecting j.
	r.lastAlpha = cs.AlphaIndices
	if cs.Forced {
		r.numForced++
	}

	return sp, nil
}

// NumForced returns the running count of forced captions seen across every
// Decode call made so far on this Reader.
func (r *Reader) NumForced() int { return r.numForced }

// ReadRle reads and concatenates every RLE fragment of sp from the
// underlying file, in order.
func (r *Reader) ReadRle(sp *SubPicture) ([]byte, error) {
	buf := make([]byte, 0, sp.RleSize)
	for _, f := range sp.RleFragments {
		b, err := r.bb.ReadBytes(f.AbsOffset, f.Length)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return buf, nil
}
