/*
NAME
  errors.go - error types surfaced by the .idx parser.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package idx

import "fmt"

// Error is a fatal error encountered while parsing a .idx file. The parser
// aborts on the first Error; there is no attempt at resync (§7).
type Error struct {
	Line int    // 1-based line number at which the error was detected.
	Msg  string // Human readable description.
}

func (e *Error) Error() string {
	return fmt.Sprintf("idx: line %d: %s", e.Line, e.Msg)
}
