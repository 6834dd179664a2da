/*
NAME
  header.go - the in-memory representation of a parsed .idx file.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package idx

// Header holds the screen geometry, origin, palette and active-language
// selection parsed from a .idx file's preamble (§3 IdxHeader).
type Header struct {
	ScreenWidth, ScreenHeight uint16
	GlobalXOfs, GlobalYOfs    uint16
	GlobalDelayPTS            int64    // milliseconds x 90.
	Palette                   [16]uint32 // 16 x u24 RGB.
	ActiveLanguageIndex       uint8

	// Streams records every "id:" stream definition seen, in file order.
	Streams []StreamDef
}

// StreamDef is one "id: xx, index: N" definition.
type StreamDef struct {
	Code  string // Two-letter ISO-639-1 code.
	Index uint8
}

// Seed is a (pts, file_offset) pair describing where one subpicture begins,
// parsed from a "timestamp:" line belonging to the active language stream.
type Seed struct {
	PTS        int64
	FileOffset uint64
}
