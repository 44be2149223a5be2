package docstore

import (
	"cmp"
	"strconv"
	"strings"
)

// Matches evaluates filter against doc.
func Matches(doc Document, filter Filter) bool {
	switch filter.Op {
	case OpAnd:
		for _, sub := range filter.Subs {
			if !Matches(doc, sub) {
				return false
			}
		}
		return true
	case OpOr:
		if len(filter.Subs) == 0 {
			return false
		}
		for _, sub := range filter.Subs {
			if Matches(doc, sub) {
				return true
			}
		}
		return false
	case OpEq:
		v, ok := GetPath(doc, filter.Field)
		if !ok {
			return false
		}
		if filter.Fold {
			vs, vOK := v.(string)
			fs, fOK := filter.Value.(string)
			if vOK && fOK {
				return strings.EqualFold(vs, fs)
			}
		}
		return equalValues(v, filter.Value)
	case OpGte:
		v, ok := GetPath(doc, filter.Field)
		if !ok {
			return false
		}
		c, ok := compareValues(v, filter.Value)
		return ok && c >= 0
	case OpLte:
		v, ok := GetPath(doc, filter.Field)
		if !ok {
			return false
		}
		c, ok := compareValues(v, filter.Value)
		return ok && c <= 0
	default:
		return false
	}
}

func equalValues(a, b any) bool {
	c, ok := compareValues(a, b)
	return ok && c == 0
}

// compareValues compares two values as float64 when both are numeric, or as
// strings otherwise. ok is false when the pair is not comparable.
func compareValues(a, b any) (int, bool) {
	af, aIsNum := asFloat(a)
	bf, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		return cmp.Compare(af, bf), true
	}
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return cmp.Compare(as, bs), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// GetPath resolves a dotted, bracket-indexable path like
// "indices[0].start" against a nested map/slice structure (the shape
// produced by decoding a Document through encoding/json).
func GetPath(doc any, path string) (any, bool) {
	cur := any(doc)
	for _, seg := range splitPath(path) {
		if seg.index >= 0 {
			arr, ok := cur.([]any)
			if !ok || seg.index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.index]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			if dm, isDoc := cur.(Document); isDoc {
				m = map[string]any(dm)
			} else {
				return nil, false
			}
		}
		v, ok := m[seg.name]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

type pathSeg struct {
	name  string
	index int // >= 0 if this segment is an array index
}

func splitPath(path string) []pathSeg {
	var segs []pathSeg
	for _, part := range strings.Split(path, ".") {
		name := part
		for {
			open := strings.IndexByte(name, '[')
			if open < 0 {
				break
			}
			close := strings.IndexByte(name[open:], ']')
			if close < 0 {
				break
			}
			close += open
			if open > 0 {
				segs = append(segs, pathSeg{name: name[:open], index: -1})
			}
			idx, _ := strconv.Atoi(name[open+1 : close])
			segs = append(segs, pathSeg{index: idx})
			name = name[close+1:]
		}
		if name != "" {
			segs = append(segs, pathSeg{name: name, index: -1})
		}
	}
	return segs
}
