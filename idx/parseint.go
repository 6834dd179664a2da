/*
NAME
  parseint.go - the permissive integer literal grammar used within .idx
  values and config-style strings.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package idx

import "strconv"

// ParseInt parses s using the permissive integer literal grammar shared by
// .idx numeric fields and config values:
//
//	""      -> -1
//	"0"     -> 0
//	"0x..." -> base 16
//	"0b..." -> base 2
//	"0..."  -> base 8
//	else    -> base 10, or 0 if unparseable
//
// ParseInt never returns an error; a malformed literal silently yields 0,
// matching the source format's historical leniency.
func ParseInt(s string) int64 {
	if s == "" {
		return -1
	}
	if s == "0" {
		return 0
	}

	neg := false
	if len(s) > 1 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var (
		base = 10
		body = s
	)
	switch {
	case len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X"):
		base = 16
		body = s[2:]
	case len(s) > 2 && (s[:2] == "0b" || s[:2] == "0B"):
		base = 2
		body = s[2:]
	case s[0] == '0':
		base = 8
		body = s[1:]
	}

	v, err := strconv.ParseInt(body, base, 64)
	if err != nil {
		return 0
	}
	if neg {
		v = -v
	}
	return v
}
