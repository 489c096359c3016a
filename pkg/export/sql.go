package export

import (
	"fmt"
	"strings"

	"github.com/openearth/openclimate/pkg/table"
)

// sqlDialect maps column kinds onto one database's type names.
type sqlDialect struct {
	intType, floatType, boolType, textType string
}

var (
	duckDialect     = sqlDialect{"BIGINT", "DOUBLE", "BOOLEAN", "VARCHAR"}
	postgresDialect = sqlDialect{"BIGINT", "DOUBLE PRECISION", "BOOLEAN", "TEXT"}
)

func (d sqlDialect) typeOf(k table.Kind) string {
	switch k {
	case table.KindInt:
		return d.intType
	case table.KindFloat:
		return d.floatType
	case table.KindBool:
		return d.boolType
	default:
		return d.textType
	}
}

// createTableSQL builds the CREATE TABLE statement for t under ident.
func (d sqlDialect) createTableSQL(ident string, t *table.Table) string {
	cols := t.Columns()
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(c), d.typeOf(t.ColumnKind(c)))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
}

// sqlRows converts t into driver values matching createTableSQL's types.
func sqlRows(t *table.Table) [][]any {
	cols := t.Columns()
	kinds := make([]table.Kind, len(cols))
	for i, c := range cols {
		kinds[i] = t.ColumnKind(c)
	}

	out := make([][]any, t.Len())
	for i, r := range t.Rows() {
		vals := make([]any, len(cols))
		for j, c := range cols {
			vals[j] = sqlValue(kinds[j], r[c])
		}
		out[i] = vals
	}
	return out
}

func sqlValue(k table.Kind, v any) any {
	if v == nil {
		return nil
	}
	switch k {
	case table.KindInt:
		if n, ok := table.Int64Value(v); ok {
			return n
		}
	case table.KindFloat:
		if f, ok := table.Float64Value(v); ok {
			return f
		}
	case table.KindBool:
		if b, ok := v.(bool); ok {
			return b
		}
	default:
		return table.FormatValue(v)
	}
	return nil
}
