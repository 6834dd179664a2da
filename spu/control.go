/*
NAME
  control.go - in-memory representation, parser and serializer for the
  subpicture display control sequence (SP_DCSQ) that rides at the tail of
  every SPU payload.

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

// Package spu provides the in-memory representation of, and the
// parser/serializer for, the DVD subpicture display control sequence
// (SP_DCSQ) found at the end of every SPU payload.
package spu

import (
	"fmt"

	"github.com/ausocean/utils/logging"
)

// Command tags understood within a control sequence record (§4.5).
const (
	cmdForced       = 0x00
	cmdStartDisplay = 0x01
	cmdStopDisplay  = 0x02
	cmdPalette      = 0x03
	cmdAlpha        = 0x04
	cmdArea         = 0x05
	cmdOffsets      = 0x06
	cmdColorUpdate  = 0x07
	cmdEnd          = 0xFF
)

// firstRecordFixedLen is the byte length of the first control-sequence
// record as emitted by this package's writer: a 2-byte header slot plus
// start-display(1) + palette(3) + alpha(3) + area(7) + offsets(5) +
// end(1) = 22 bytes. A forced caption adds one leading byte for the
// cmdForced marker.
const firstRecordFixedLen = 22

// Rect is the display rectangle of a subpicture bitmap, in screen pixels.
type Rect struct {
	X, Y, Width, Height uint16
}

// ControlSequence is the parsed or to-be-serialized form of an SP_DCSQ.
type ControlSequence struct {
	PaletteIndices [4]uint8
	AlphaIndices   [4]uint8
	Rect           Rect
	EvenOffset     uint16 // Relative to start of RLE buffer.
	OddOffset      uint16
	Forced         bool

	// Delay is the additional display duration in 90 kHz ticks contributed
	// by a chained end-sequence record; end_pts = start_pts + Delay. Zero
	// if no chained sequence was found.
	Delay int64

	// NumSequences is the number of control-sequence records found,
	// including the first. Used only for diagnostics/warnings.
	NumSequences int
}

// ParseOptions carries the parser inputs that aren't encoded in the control
// buffer itself.
type ParseOptions struct {
	// CtrlOffsetRelative is the SPU-level "control header offset relative
	// to SPU start" field (equals rle_size + 2, per spec.md §3).
	CtrlOffsetRelative int

	// FixZeroAlpha enables the invisible-caption fallback (§4.5 edge
	// cases): when every parsed alpha index is zero, reuse PrevAlpha
	// instead of leaving the subpicture fully transparent.
	FixZeroAlpha bool
	PrevAlpha    [4]uint8
}

// Parse decodes a control header buffer into a ControlSequence. buf is
// exactly the reassembled control-header bytes (ctrl_size long); warnings
// are non-fatal and reported through log (§7 FormatWarning).
func Parse(buf []byte, opts ParseOptions, log logging.Logger) (*ControlSequence, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("control buffer too short: %d bytes", len(buf))
	}
	ctrlSize := len(buf)

	raw0 := int(buf[0])<<8 | int(buf[1])
	endSeqOfs := raw0 - opts.CtrlOffsetRelative - 2
	if endSeqOfs < 0 || endSeqOfs > ctrlSize {
		log.Warning("invalid end-sequence offset, clamping to control size", "got", endSeqOfs, "ctrlSize", ctrlSize)
		endSeqOfs = ctrlSize
	}

	cs := &ControlSequence{NumSequences: 1}
	pos, err := runCommands(buf, 2, cs, log)
	if err != nil {
		return nil, err
	}

	if cs.AlphaIndices == [4]uint8{} {
		if opts.FixZeroAlpha {
			cs.AlphaIndices = opts.PrevAlpha
			log.Warning("zero alpha caption fixed up using previous subpicture's alpha")
		} else {
			log.Warning("subpicture has zero alpha (invisible) and fix_zero_alpha is disabled")
		}
	}

	// Follow the chain of subsequent records, if the header claims there's
	// more data beyond the first sequence. The chain starts at endSeqOfs and
	// each record's next-offset field points at the next record to read; a
	// record whose next-offset points at itself is the chain's terminator,
	// so its commands still run but no further record is expected after it.
	// Only forward pointers are followed, so a malformed chain cannot loop.
	if endSeqOfs != ctrlSize {
		for pos = endSeqOfs; pos+4 <= ctrlSize; {
			delayRaw := int(buf[pos])<<8 | int(buf[pos+1])
			nextRaw := int(buf[pos+2])<<8 | int(buf[pos+3])
			nextIdx := nextRaw - opts.CtrlOffsetRelative - 2

			cs.Delay = int64(delayRaw) * 1024
			cs.NumSequences++

			if _, err := runCommands(buf, pos+4, cs, log); err != nil {
				return nil, err
			}
			if nextIdx <= pos {
				break
			}
			pos = nextIdx
		}
	}

	if cs.NumSequences > 2 {
		log.Warning("more than two chained control sequences, result may be erratic", "count", cs.NumSequences)
	}

	return cs, nil
}

// runCommands executes commands starting at pos until a terminating or
// unknown command is hit, returning the position immediately after that
// terminator.
func runCommands(buf []byte, pos int, cs *ControlSequence, log logging.Logger) (int, error) {
	for pos < len(buf) {
		tag := buf[pos]
		switch tag {
		case cmdForced:
			cs.Forced = true
			pos++
		case cmdStartDisplay, cmdStopDisplay:
			pos++
		case cmdPalette:
			if pos+3 > len(buf) {
				return pos, fmt.Errorf("truncated palette command at %d", pos)
			}
			cs.PaletteIndices[3] = buf[pos+1] >> 4
			cs.PaletteIndices[2] = buf[pos+1] & 0x0F
			cs.PaletteIndices[1] = buf[pos+2] >> 4
			cs.PaletteIndices[0] = buf[pos+2] & 0x0F
			pos += 3
		case cmdAlpha:
			if pos+3 > len(buf) {
				return pos, fmt.Errorf("truncated alpha command at %d", pos)
			}
			cs.AlphaIndices[3] = buf[pos+1] >> 4
			cs.AlphaIndices[2] = buf[pos+1] & 0x0F
			cs.AlphaIndices[1] = buf[pos+2] >> 4
			cs.AlphaIndices[0] = buf[pos+2] & 0x0F
			pos += 3
		case cmdArea:
			if pos+7 > len(buf) {
				return pos, fmt.Errorf("truncated display area command at %d", pos)
			}
			b := buf[pos+1 : pos+7]
			x1 := uint16(b[0])<<4 | uint16(b[1])>>4
			x2 := uint16(b[1]&0x0F)<<8 | uint16(b[2])
			y1 := uint16(b[3])<<4 | uint16(b[4])>>4
			y2 := uint16(b[4]&0x0F)<<8 | uint16(b[5])
			cs.Rect = Rect{X: x1, Y: y1, Width: x2 - x1 + 1, Height: y2 - y1 + 1}
			pos += 7
		case cmdOffsets:
			if pos+5 > len(buf) {
				return pos, fmt.Errorf("truncated RLE offsets command at %d", pos)
			}
			even := uint16(buf[pos+1])<<8 | uint16(buf[pos+2])
			odd := uint16(buf[pos+3])<<8 | uint16(buf[pos+4])
			cs.EvenOffset = even - 4
			cs.OddOffset = odd - 4
			pos += 5
		case cmdColorUpdate:
			if pos+13 > len(buf) {
				return pos, fmt.Errorf("truncated color update command at %d", pos)
			}
			payload := buf[pos+1 : pos+13]
			newAlpha := [4]uint8{
				payload[11] & 0x0F,
				payload[11] >> 4,
				payload[10] & 0x0F,
				payload[10] >> 4,
			}
			var newSum, curSum int
			for i := 0; i < 4; i++ {
				newSum += int(newAlpha[i])
				curSum += int(cs.AlphaIndices[i])
			}
			if newSum > curSum {
				cs.AlphaIndices = newAlpha
				cs.PaletteIndices = [4]uint8{
					payload[9] & 0x0F,
					payload[9] >> 4,
					payload[8] & 0x0F,
					payload[8] >> 4,
				}
				log.Warning("palette/alpha update command applied, result may be erratic")
			}
			return pos + 13, nil
		case cmdEnd:
			return pos + 1, nil
		default:
			log.Warning("unknown control command, stopping record", "command", tag, "offset", pos)
			return pos + 1, nil
		}
	}
	return pos, nil
}

// Bytes serializes cs into a control header of the shape this package's
// writer always emits: one command record carrying palette, alpha, area,
// RLE offsets and the forced/start-display marker, followed by a
// self-terminating end-sequence record carrying the display duration.
// ctrlOffsetRelative is the SPU-level ctrl-header-offset field (rle_size+2).
func (cs *ControlSequence) Bytes(ctrlOffsetRelative int) []byte {
	recLen := firstRecordFixedLen
	if cs.Forced {
		recLen++
	}
	rawEndSeq := ctrlOffsetRelative + 2 + recLen

	buf := make([]byte, 0, recLen+6)
	buf = append(buf, byte(rawEndSeq>>8), byte(rawEndSeq))

	if cs.Forced {
		buf = append(buf, cmdForced)
	}
	buf = append(buf, cmdStartDisplay)

	buf = append(buf, cmdPalette,
		cs.PaletteIndices[3]<<4|cs.PaletteIndices[2],
		cs.PaletteIndices[1]<<4|cs.PaletteIndices[0])

	buf = append(buf, cmdAlpha,
		cs.AlphaIndices[3]<<4|cs.AlphaIndices[2],
		cs.AlphaIndices[1]<<4|cs.AlphaIndices[0])

	x1, y1 := cs.Rect.X, cs.Rect.Y
	x2 := x1 + cs.Rect.Width - 1
	y2 := y1 + cs.Rect.Height - 1
	buf = append(buf, cmdArea,
		byte(x1>>4), byte(x1&0xF)<<4|byte(x2>>8), byte(x2),
		byte(y1>>4), byte(y1&0xF)<<4|byte(y2>>8), byte(y2))

	buf = append(buf, cmdOffsets,
		byte((cs.EvenOffset+4)>>8), byte(cs.EvenOffset+4),
		byte((cs.OddOffset+4)>>8), byte(cs.OddOffset+4))

	buf = append(buf, cmdEnd)

	delayTicks := uint16(cs.Delay / 1024)
	buf = append(buf,
		byte(delayTicks>>8), byte(delayTicks),
		byte(rawEndSeq>>8), byte(rawEndSeq),
		cmdStopDisplay,
		cmdEnd)

	return buf
}

// Size returns the byte length Bytes would produce for cs, without
// allocating.
func (cs *ControlSequence) Size() int {
	n := firstRecordFixedLen + 6
	if cs.Forced {
		n++
	}
	return n
}
