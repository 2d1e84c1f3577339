// Package jsonpath extracts values from decoded JSON documents using the
// dotted path expressions configured as response paths, e.g.
// "choices[0].message.content".
package jsonpath

import (
	"strconv"
	"strings"
)

// Extract walks doc along a dot-separated path and reports whether a value
// was found. A segment may combine a field name with a bracketed array
// index ("choices[0]"). The empty path returns doc itself. A nil
// intermediate value, a missing field, or an index applied to a non-array
// yields (nil, false); Extract never panics.
func Extract(doc any, path string) (any, bool) {
	if path == "" {
		return doc, true
	}

	cur := doc
	for _, seg := range strings.Split(path, ".") {
		if cur == nil {
			return nil, false
		}

		field, idx, hasIdx, ok := splitSegment(seg)
		if !ok {
			return nil, false
		}

		if field != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			cur, ok = m[field]
			if !ok {
				return nil, false
			}
		}

		if hasIdx {
			arr, ok := cur.([]any)
			if !ok || idx >= len(arr) {
				return nil, false
			}
			cur = arr[idx]
		}
	}

	if cur == nil {
		return nil, false
	}
	return cur, true
}

// splitSegment parses "field", "field[3]" or "[3]" forms. Negative or
// malformed indices reject the segment.
func splitSegment(seg string) (field string, idx int, hasIdx bool, ok bool) {
	if !strings.HasSuffix(seg, "]") {
		return seg, 0, false, true
	}

	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return "", 0, false, false
	}

	n, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || n < 0 {
		return "", 0, false, false
	}
	return seg[:open], n, true, true
}
