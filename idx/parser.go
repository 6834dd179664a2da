/*
NAME
  parser.go - parses the textual .idx sidecar into a Header and a
  time-ordered sequence of (pts, file_offset) seeds for the active language.

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

// Package idx parses and emits the textual .idx sidecar that accompanies a
// VobSub .sub file.
package idx

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"
)

// ptsFreq is the PTS clock frequency in Hz (90 kHz, §6.4).
const ptsFreq = 90

// Keys that are recognized but intentionally not acted on (§4.2, §9: scale
// and alpha are an open question inherited as-is).
var ignoredKeys = map[string]bool{
	"scale":         true,
	"alpha":         true,
	"smooth":        true,
	"fadein/out":    true,
	"align":         true,
	"forced subs":   true, // Its own key: the original parser's duplicated "align"
	// check that shadows this is a known bug (§9) and is not replicated here.
	"custom colors": true,
	"alt":           true,
}

// Parse reads the .idx file at path and returns its Header and the seeds
// belonging to the active language stream, in ascending PTS order.
func Parse(path string, log logging.Logger) (*Header, []Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not open idx file")
	}
	defer f.Close()

	var (
		hdr     Header
		seeds   []Seed
		line    int
		palN    int
		langIdx int64 = -1
		curIdx  int64 = -1
		record  bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		i := strings.Index(trimmed, ":")
		if i < 0 {
			log.Warning("idx line missing ':', skipping", "line", line, "text", trimmed)
			continue
		}
		key := strings.ToLower(strings.TrimSpace(trimmed[:i]))
		val := strings.TrimSpace(trimmed[i+1:])

		switch {
		case key == "size":
			w, h, err := parseSize(val)
			if err != nil {
				return nil, nil, &Error{line, err.Error()}
			}
			hdr.ScreenWidth, hdr.ScreenHeight = w, h

		case key == "org":
			x, y, err := parseOrg(val)
			if err != nil {
				return nil, nil, &Error{line, err.Error()}
			}
			hdr.GlobalXOfs, hdr.GlobalYOfs = x, y

		case key == "time offset":
			ms, err := parseTimeOffsetMs(val)
			if err != nil {
				return nil, nil, &Error{line, err.Error()}
			}
			hdr.GlobalDelayPTS = ms * ptsFreq

		case key == "palette":
			colors, err := parsePalette(val)
			if err != nil {
				return nil, nil, &Error{line, err.Error()}
			}
			for _, c := range colors {
				if palN >= len(hdr.Palette) {
					break
				}
				hdr.Palette[palN] = c
				palN++
			}

		case key == "langidx":
			langIdx = ParseInt(val)
			if langIdx >= 0 && langIdx <= 255 {
				hdr.ActiveLanguageIndex = uint8(langIdx)
			}

		case key == "id":
			code, idxVal, err := parseID(val)
			if err != nil {
				return nil, nil, &Error{line, err.Error()}
			}
			hdr.Streams = append(hdr.Streams, StreamDef{Code: code, Index: idxVal})
			curIdx = int64(idxVal)
			record = curIdx == langIdx
			if _, ok := LookupCode(code); !ok {
				log.Warning("unrecognized language code in idx id:", "line", line, "code", code)
			}

		case key == "timestamp":
			if !record {
				continue
			}
			ms, filepos, err := parseTimestamp(val)
			if err != nil {
				return nil, nil, &Error{line, err.Error()}
			}
			seeds = append(seeds, Seed{
				PTS:        ms*ptsFreq + hdr.GlobalDelayPTS,
				FileOffset: filepos,
			})

		case ignoredKeys[key]:
			// Recognized, intentionally ignored.

		default:
			log.Debug("unrecognized idx key, ignoring", "line", line, "key", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "error scanning idx file")
	}

	sort.SliceStable(seeds, func(i, j int) bool { return seeds[i].PTS < seeds[j].PTS })

	return &hdr, seeds, nil
}

func parseSize(val string) (w, h uint16, err error) {
	parts := strings.SplitN(strings.ToLower(val), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unparseable size %q", val)
	}
	wi, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || wi < 2 || hi < 2 {
		return 0, 0, fmt.Errorf("unparseable size %q", val)
	}
	return uint16(wi), uint16(hi), nil
}

func parseOrg(val string) (x, y uint16, err error) {
	parts := strings.SplitN(val, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unparseable org %q", val)
	}
	xi, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	yi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("unparseable org %q", val)
	}
	return uint16(xi), uint16(yi), nil
}

func parseTimeOffsetMs(val string) (int64, error) {
	if strings.Contains(val, ":") {
		return parseHHMMSSms(val)
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time offset %q", val)
	}
	return ms, nil
}

func parseHHMMSSms(val string) (int64, error) {
	parts := strings.Split(val, ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid hh:mm:ss:ms value %q", val)
	}
	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("invalid hh:mm:ss:ms value %q", val)
		}
		nums[i] = n
	}
	h, m, s, ms := nums[0], nums[1], nums[2], nums[3]
	return int64(((h*60+m)*60+s)*1000 + ms), nil
}

func parsePalette(val string) ([]uint32, error) {
	entries := strings.Split(val, ",")
	if len(entries) < 1 || len(entries) > 16 {
		return nil, fmt.Errorf("palette must have 1 to 16 entries, got %d", len(entries))
	}
	colors := make([]uint32, len(entries))
	for i, e := range entries {
		e = strings.TrimSpace(e)
		v, err := strconv.ParseUint(e, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q is not a hex integer", e)
		}
		colors[i] = uint32(v)
	}
	return colors, nil
}

func parseID(val string) (code string, index uint8, err error) {
	parts := strings.SplitN(val, ",", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid id line %q", val)
	}
	code = strings.TrimSpace(parts[0])
	rest := strings.TrimSpace(parts[1])
	const prefix = "index:"
	li := strings.ToLower(rest)
	if !strings.HasPrefix(li, prefix) {
		return "", 0, fmt.Errorf("id line missing index: %q", val)
	}
	n := ParseInt(strings.TrimSpace(rest[len(prefix):]))
	if n < 0 || n > 255 {
		return "", 0, fmt.Errorf("invalid stream index in id line %q", val)
	}
	return code, uint8(n), nil
}

func parseTimestamp(val string) (ms int64, filepos uint64, err error) {
	parts := strings.SplitN(val, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("timestamp line missing filepos: %q", val)
	}
	ms, err = parseHHMMSSms(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	rest := strings.TrimSpace(parts[1])
	const prefix = "filepos:"
	li := strings.ToLower(rest)
	if !strings.HasPrefix(li, prefix) {
		return 0, 0, fmt.Errorf("timestamp line missing filepos: %q", val)
	}
	hexStr := strings.TrimSpace(rest[len(prefix):])
	fp, err := strconv.ParseUint(hexStr, 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("illegal filepos %q", hexStr)
	}
	return ms, fp, nil
}
