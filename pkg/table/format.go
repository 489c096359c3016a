package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind is the inferred storage type of a column.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// ColumnKind infers the narrowest kind that holds every non-nil value of
// column c. Integral floats (JSON numbers) count as ints. Lists, records and
// mixed columns fall back to KindString.
func (t *Table) ColumnKind(c string) Kind {
	kind := KindNull
	for _, r := range t.rows {
		k := valueKind(r[c])
		switch {
		case k == KindNull:
		case kind == KindNull:
			kind = k
		case kind == k:
		case (kind == KindInt && k == KindFloat) || (kind == KindFloat && k == KindInt):
			kind = KindFloat
		default:
			return KindString
		}
	}
	return kind
}

func valueKind(v any) Kind {
	switch n := v.(type) {
	case nil:
		return KindNull
	case int, int32, int64:
		return KindInt
	case float32:
		return floatKind(float64(n))
	case float64:
		return floatKind(n)
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return KindInt
		}
		return KindFloat
	case bool:
		return KindBool
	}
	return KindString
}

func floatKind(f float64) Kind {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return KindInt
	}
	return KindFloat
}

// FormatValue renders a cell as text. Nil is empty, integral floats print
// without a fraction, lists and records are JSON encoded.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case []any, map[string]any, Row:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// Int64Value converts a numeric cell to int64.
func Int64Value(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// Float64Value converts a numeric cell to float64.
func Float64Value(v any) (float64, bool) {
	return toFloat(v)
}
