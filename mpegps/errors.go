/*
NAME
  errors.go - typed errors for malformed MPEG Program Stream framing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mpegps

import "fmt"

// FormatError reports a violation of the MPEG-PS pack/PES framing contract:
// a missing start code, a negative control size, or similar structural
// defects that make the stream unreadable (spec.md §7).
type FormatError struct {
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("mpegps: at offset %d: %s", e.Offset, e.Msg)
}
