/*
NAME
  packetizer.go - bidirectional translation between an SPU payload
  (rle_bytes || control_header_bytes) and a sequence of 2048-byte MPEG-2
  Program-Stream packs.

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

// Package mpegps implements the MPEG-2 Program Stream pack/PES framing a
// VobSub .sub file uses to carry its DVD subpicture units.
package mpegps

import (
	"github.com/Comcast/gots/v2"
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vobsub/bytebuffer"
)

// PackSize is the fixed MPEG-PS pack size a .sub file is built from.
const PackSize = 2048

const (
	packStartCode = 0x000001BA
	pesStartCode  = 0x000001BD
	paddingCode   = 0x000001BE

	// packHeaderLen is the full length, including its 4-byte start code,
	// of the fixed PACK section preceding every PES packet: 13 bytes of
	// SCR/mux-rate followed by 1 stuffing-info byte.
	packHeaderLen = 4 + 13 + 1

	ptsFieldLen = 5

	// spuPrefixLen is the 4-byte (total_size, ctrl_offset_relative) header
	// written immediately after the first pack's PES header (§4.4 step 4).
	spuPrefixLen = 4
)

// RleFragment locates a run of RLE bytes within the source .sub file.
type RleFragment struct {
	AbsOffset int64
	Length    int
}

// ReadResult is the reassembled payload of one subpicture's MPEG-PS packs.
type ReadResult struct {
	RleFragments       []RleFragment
	RleSize            int
	CtrlBytes          []byte
	CtrlOffsetRelative int
	StartPTS           int64
}

// Read walks the packs belonging to activeStreamID starting at fileOffset
// and bounded by endOffset, reassembling the RLE fragment list and the
// control header bytes of the subpicture found there (spec.md §4.4 read
// protocol).
func Read(bb *bytebuffer.ByteBuffer, fileOffset, endOffset int64, activeStreamID uint8, log logging.Logger) (*ReadResult, error) {
	res := &ReadResult{}
	cursor := fileOffset
	first := true
	ctrlFilled := 0
	rleFilled := 0
	// ctrlOffsetAccum tracks the "control offset" accumulator spec.md §4.4
	// step 7 describes for inactive-stream packs: each skipped pack still
	// occupies one 2048-byte slot that a control-offset computed relative
	// to the subpicture's start must account for. This reader locates the
	// control header by total/ctrl-offset fields read directly from the
	// first active pack rather than by counting skipped packs, so the
	// accumulator has no bookkeeping left to feed into; it is kept for
	// diagnostics only.
	var ctrlOffsetAccum int64

	for cursor < endOffset {
		packStart := cursor

		code, err := bb.ReadU32BE(cursor)
		if err != nil {
			return nil, err
		}
		if code != packStartCode {
			return nil, &FormatError{packStart, "missing pack start code 00 00 01 BA"}
		}
		cursor += 4 + 13 // Start code, then SCR + mux rate (unused).

		stuffByte, err := bb.ReadU8(cursor)
		if err != nil {
			return nil, err
		}
		stuffingCount := int(stuffByte & 0x07)
		cursor += int64(1 + stuffingCount)

		pesCode, err := bb.ReadU32BE(cursor)
		if err != nil {
			return nil, err
		}
		if pesCode != pesStartCode {
			return nil, &FormatError{cursor, "missing private-stream PES start code 00 00 01 BD"}
		}
		cursor += 4

		packetLength, err := bb.ReadU16BE(cursor)
		if err != nil {
			return nil, err
		}
		cursor += 2
		nextPackOffset := cursor + int64(packetLength)

		cursor += 2 // Two flag bytes; only the second is inspected below.
		flags2, err := bb.ReadU8(cursor - 1)
		if err != nil {
			return nil, err
		}
		firstPackInSPU := flags2&0x80 != 0

		ptsLen, err := bb.ReadU8(cursor)
		if err != nil {
			return nil, err
		}
		cursor += int64(1 + ptsLen)

		streamIDByte, err := bb.ReadU8(cursor)
		if err != nil {
			return nil, err
		}
		cursor++
		streamID := streamIDByte - 0x20

		if streamID != activeStreamID {
			log.Debug("skipping pack for inactive stream", "want", activeStreamID, "got", streamID)
			cursor = advance(bb, nextPackOffset, packStart, log)
			ctrlOffsetAccum += PackSize
			continue
		}

		if first && !firstPackInSPU {
			log.Warning("first pack for active stream is not marked first_pack_in_spu")
		}

		if firstPackInSPU {
			totalSize, err := bb.ReadU16BE(cursor)
			if err != nil {
				return nil, err
			}
			ctrlRel, err := bb.ReadU16BE(cursor + 2)
			if err != nil {
				return nil, err
			}
			cursor += spuPrefixLen

			res.RleSize = int(ctrlRel) - 2
			ctrlSize := int(totalSize) - int(ctrlRel) - 2
			if ctrlSize < 0 {
				return nil, &FormatError{packStart, "negative control header size"}
			}
			res.CtrlOffsetRelative = int(ctrlRel)
			res.CtrlBytes = make([]byte, 0, ctrlSize)
			res.RleFragments = res.RleFragments[:0]
			rleFilled = 0
			res.StartPTS = readPTS(bb, cursor-spuPrefixLen-1-ptsFieldLen)
		}

		ctrlCap := cap(res.CtrlBytes)
		payloadStart := cursor
		payloadEnd := nextPackOffset
		if payloadEnd > endOffset {
			payloadEnd = endOffset
		}
		payloadLen := int(payloadEnd - payloadStart)

		// The control header sits at the tail of rle||control, so every
		// pack's bytes belong to the RLE region until that region is
		// exhausted; only then does the remainder belong to the control
		// buffer (spec.md §4.4 step 9).
		remainingRle := res.RleSize - rleFilled
		rleHere := remainingRle
		if rleHere > payloadLen {
			rleHere = payloadLen
		}
		if rleHere < 0 {
			rleHere = 0
		}
		ctrlHere := payloadLen - rleHere
		if ctrlHere > ctrlCap-ctrlFilled {
			ctrlHere = ctrlCap - ctrlFilled
		}
		if ctrlHere < 0 {
			ctrlHere = 0
		}
		rleFilled += rleHere

		if rleHere > 0 {
			res.RleFragments = append(res.RleFragments, RleFragment{AbsOffset: payloadStart, Length: rleHere})
		}
		if ctrlHere > 0 {
			b, err := bb.ReadBytes(payloadStart+int64(rleHere), ctrlHere)
			if err != nil {
				return nil, err
			}
			res.CtrlBytes = append(res.CtrlBytes, b...)
			ctrlFilled += ctrlHere
		}

		first = false
		if ctrlFilled >= ctrlCap && ctrlCap > 0 {
			break
		}
		cursor = advance(bb, nextPackOffset, packStart, log)
	}

	if ctrlFilled < cap(res.CtrlBytes) {
		log.Warning("control header truncated at end of window, padding with 0xFF", "have", ctrlFilled, "want", cap(res.CtrlBytes))
		for ctrlFilled < cap(res.CtrlBytes) {
			res.CtrlBytes = append(res.CtrlBytes, 0xFF)
			ctrlFilled++
		}
	}
	log.Debug("bytes skipped for inactive-stream packs", "bytes", ctrlOffsetAccum)

	return res, nil
}

// advance skips any padding packet sitting at next (written by Write to
// fill out a pack's final 2048 bytes) and rounds up to the next 2048-byte
// boundary relative to packStart, warning if that rounding was needed for
// any other reason (spec.md §4.4 step 10).
func advance(bb *bytebuffer.ByteBuffer, next, packStart int64, log logging.Logger) int64 {
	if code, err := bb.ReadU32BE(next); err == nil && code == paddingCode {
		if fillLen, err := bb.ReadU16BE(next + 4); err == nil {
			next += 6 + int64(fillLen)
		}
	}
	rel := next - packStart
	if rem := rel % PackSize; rem != 0 {
		log.Warning("misaligned pack, rounding up to next pack boundary", "offset", next)
		next = packStart + rel + (PackSize - rem)
	}
	return next
}

// readPTS extracts a 33-bit, 90kHz PTS from its 5-byte MPEG-2 packed
// encoding at ofs. Unlike the write side (which reuses gots.InsertPTS),
// there's no equivalent decode helper in that library, so this unpacks
// the marker-bit-interleaved format by hand.
func readPTS(bb *bytebuffer.ByteBuffer, ofs int64) int64 {
	b, err := bb.ReadBytes(ofs, ptsFieldLen)
	if err != nil {
		return 0
	}
	return int64(b[0]&0x0E)<<29 |
		int64(b[1])<<22 |
		int64(b[2]&0xFE)<<14 |
		int64(b[3])<<7 |
		int64(b[4])>>1
}

// Write packs rleBytes and ctrlBytes into a sequence of 2048-byte MPEG-PS
// packs for streamID, starting the PES presentation timestamp at startPTS
// (spec.md §4.4 write protocol).
func Write(rleBytes, ctrlBytes []byte, startPTS int64, streamID uint8) []byte {
	payload := make([]byte, 0, len(rleBytes)+len(ctrlBytes))
	payload = append(payload, rleBytes...)
	payload = append(payload, ctrlBytes...)

	ctrlOffsetRelative := len(rleBytes) + 2
	totalSize := spuPrefixLen + len(payload)

	var out []byte
	pos := 0
	first := true
	for pos < len(payload) || first {
		firstPackInSPU := first
		// packHeaderLen(pack section) + PES start+length(6) + 2 flag bytes +
		// pts_length byte(1) + stream ID byte(1), plus the PTS field and
		// SPU size prefix on the first pack only.
		fixedLen := packHeaderLen + 6 + 2 + 1 + 1
		if firstPackInSPU {
			fixedLen += ptsFieldLen + spuPrefixLen
		}
		avail := PackSize - fixedLen
		chunk := len(payload) - pos
		if chunk > avail {
			chunk = avail
		}
		if chunk < 0 {
			chunk = 0
		}

		body := make([]byte, 0, avail+spuPrefixLen+ptsFieldLen+2)
		body = append(body, 0x81, boolToFlags(firstPackInSPU))
		if firstPackInSPU {
			body = append(body, ptsFieldLen)
			ptsIdx := len(body)
			body = body[:ptsIdx+ptsFieldLen]
			gots.InsertPTS(body[ptsIdx:], uint64(startPTS))
		} else {
			body = append(body, 0)
		}
		body = append(body, streamID+0x20)
		if firstPackInSPU {
			body = append(body, byte(totalSize>>8), byte(totalSize), byte(ctrlOffsetRelative>>8), byte(ctrlOffsetRelative))
		}
		body = append(body, payload[pos:pos+chunk]...)
		pos += chunk

		pack := make([]byte, 0, PackSize)
		pack = appendPackHeader(pack)
		pack = append(pack, byte(pesStartCode>>24), byte(pesStartCode>>16), byte(pesStartCode>>8), byte(pesStartCode))
		pack = append(pack, byte(len(body)>>8), byte(len(body)))
		pack = append(pack, body...)

		gap := PackSize - len(pack)
		switch {
		case gap == 0:
		case gap > 0 && gap < 6:
			pack = append(pack, make([]byte, gap)...)
		default:
			pack = appendPaddingPacket(pack, gap)
		}

		out = append(out, pack...)
		first = false
		if pos >= len(payload) {
			break
		}
	}
	return out
}

func boolToFlags(firstPackInSPU bool) byte {
	if firstPackInSPU {
		return 0x80
	}
	return 0x00
}

func appendPackHeader(buf []byte) []byte {
	buf = append(buf, byte(packStartCode>>24), byte(packStartCode>>16), byte(packStartCode>>8), byte(packStartCode))
	buf = append(buf, make([]byte, 13)...) // SCR + mux rate, unused on read.
	buf = append(buf, 0x00)                // Stuffing byte: stuffing_count = 0.
	return buf
}

// appendPaddingPacket appends a 0x000001BE padding packet that, together
// with its own 6-byte header, fills exactly gap bytes.
func appendPaddingPacket(buf []byte, gap int) []byte {
	fillLen := gap - 6
	buf = append(buf, byte(paddingCode>>24), byte(paddingCode>>16), byte(paddingCode>>8), byte(paddingCode))
	buf = append(buf, byte(fillLen>>8), byte(fillLen))
	for i := 0; i < fillLen; i++ {
		buf = append(buf, 0xFF)
	}
	return buf
}
