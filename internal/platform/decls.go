package platform

import (
	"fmt"
	"strconv"
	"strings"

	"atalan/internal/alloc"
)

// parseDeclLines scans text for "NAME = value" lines (one per line,
// blank lines and lines starting with ';' ignored as comments — the
// original source's own convention for module-level declarations) and
// stores each into out.
func parseDeclLines(text string, out map[string]string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(line[:eq])
		value := strings.Trim(strings.TrimSpace(line[eq+1:]), `"`)
		if name != "" {
			out[name] = value
		}
	}
}

// parseVarHeap parses a "start,size" VAR_HEAP declaration (both values
// accepting Go integer syntax or the "$hex" form, so a platform module
// may write them as "$4000,$C00") into the global fallback region package alloc
// allocates from once a procedure's own local heap is exhausted (spec
// §4.9, rule 4). An empty declaration yields a zero-sized region, which
// alloc.VarHeap.alloc correctly reports as immediately full rather than
// silently accepting everything.
func parseVarHeap(decl string) (alloc.Range, error) {
	if decl == "" {
		return alloc.Range{}, nil
	}
	parts := strings.Split(decl, ",")
	if len(parts) != 2 {
		return alloc.Range{}, fmt.Errorf("malformed VAR_HEAP %q: want \"start,size\"", decl)
	}
	start, err := parseDeclInt(parts[0])
	if err != nil {
		return alloc.Range{}, fmt.Errorf("malformed VAR_HEAP %q: %w", decl, err)
	}
	size, err := parseDeclInt(parts[1])
	if err != nil {
		return alloc.Range{}, fmt.Errorf("malformed VAR_HEAP %q: %w", decl, err)
	}
	return alloc.Range{Start: start, Size: size}, nil
}

// parseDeclInt accepts plain decimal and the source language's "$hex"
// literal form, the latter being how Atalan platform modules conventionally
// write 6502 addresses.
func parseDeclInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		return strconv.ParseInt(s[1:], 16, 64)
	}
	return strconv.ParseInt(s, 0, 64)
}
