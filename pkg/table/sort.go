package table

import (
	"encoding/json"
	"sort"
	"strings"
)

// SortBy stably orders rows by the given columns. Nil sorts last, numbers
// compare numerically and before strings.
func (t *Table) SortBy(columns ...string) *Table {
	out := New(t.columns...)
	out.rows = make([]Row, len(t.rows))
	copy(out.rows, t.rows)
	sort.SliceStable(out.rows, func(i, j int) bool {
		for _, c := range columns {
			if d := Compare(out.rows[i][c], out.rows[j][c]); d != 0 {
				return d < 0
			}
		}
		return false
	})
	return out
}

// Compare orders two cell values, returning -1, 0 or 1.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		default:
			return -1
		}
	}

	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	switch {
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}

	return strings.Compare(FormatValue(a), FormatValue(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
