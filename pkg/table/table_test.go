package table

import (
	"reflect"
	"testing"

	"github.com/openearth/openclimate/pkg/errors"
)

func populationTable() *Table {
	t := New("year", "population", "datasource")
	t.Append(Row{"year": 2020, "population": 331.0, "datasource": map[string]any{"id": "x", "name": "y"}})
	t.Append(Row{"year": 2019, "population": 328.2, "datasource": map[string]any{"id": "z", "published": "2021-01-01"}})
	t.Append(Row{"year": 2018, "population": 327.1, "datasource": nil})
	return t
}

func TestFlatten_ExpandsNestedColumn(t *testing.T) {
	got := populationTable().Flatten()

	wantCols := []string{"year", "population", "datasource_id", "datasource_name", "datasource_published"}
	if !reflect.DeepEqual(got.Columns(), wantCols) {
		t.Fatalf("Columns() = %v, want %v", got.Columns(), wantCols)
	}
	if got.HasColumn("datasource") {
		t.Error("nested column should be removed after flattening")
	}
	if v := got.Value(0, "datasource_id"); v != "x" {
		t.Errorf("datasource_id = %v, want x", v)
	}
	if v := got.Value(0, "datasource_name"); v != "y" {
		t.Errorf("datasource_name = %v, want y", v)
	}
	if v := got.Value(0, "datasource_published"); v != nil {
		t.Errorf("missing key should read nil, got %v", v)
	}
	if v := got.Value(2, "datasource_id"); v != nil {
		t.Errorf("nil record should read nil, got %v", v)
	}
}

func TestFlatten_Idempotent(t *testing.T) {
	tables := map[string]*Table{
		"nested": populationTable(),
		"flat":   New("a", "b"),
		"deep": func() *Table {
			t := New("target", "initiative")
			t.Append(Row{"target": 1, "initiative": map[string]any{
				"name":  "Race to Zero",
				"owner": map[string]any{"id": "UN", "name": "UNFCCC"},
			}})
			t.Append(Row{"target": 2})
			return t
		}(),
	}

	for name, tbl := range tables {
		once := tbl.Flatten()
		twice := once.Flatten()
		if !reflect.DeepEqual(once.Columns(), twice.Columns()) {
			t.Errorf("%s: columns changed on second flatten: %v vs %v", name, once.Columns(), twice.Columns())
		}
		if !reflect.DeepEqual(once.Rows(), twice.Rows()) {
			t.Errorf("%s: rows changed on second flatten", name)
		}
	}
}

func TestFlatten_DeepRecordsExpandRecursively(t *testing.T) {
	tbl := New("initiative")
	tbl.Append(Row{"initiative": map[string]any{"owner": map[string]any{"id": "UN"}}})

	got := tbl.Flatten()
	if !reflect.DeepEqual(got.Columns(), []string{"initiative_owner_id"}) {
		t.Fatalf("Columns() = %v", got.Columns())
	}
	if v := got.Value(0, "initiative_owner_id"); v != "UN" {
		t.Errorf("initiative_owner_id = %v, want UN", v)
	}
}

func TestFlatten_DoesNotMutateInput(t *testing.T) {
	in := populationTable()
	_ = in.Flatten()
	if !in.HasColumn("datasource") {
		t.Fatal("input lost its nested column")
	}
	if _, ok := in.Value(0, "datasource").(map[string]any); !ok {
		t.Error("input row was modified")
	}
}

func TestSelect_OmitsMissingColumns(t *testing.T) {
	got := populationTable().Flatten().Select("actor_id", "year", "population", "datasource_URL")

	if !reflect.DeepEqual(got.Columns(), []string{"year", "population"}) {
		t.Errorf("Columns() = %v", got.Columns())
	}
	if got.Len() != 3 {
		t.Errorf("Len() = %d, want 3", got.Len())
	}
}

func TestSortBy_NumericAndNilLast(t *testing.T) {
	tbl := New("target_year")
	for _, y := range []any{2050, nil, 2030.0, 2040} {
		tbl.Append(Row{"target_year": y})
	}

	got := tbl.SortBy("target_year").Column("target_year")
	want := []any{2030.0, 2040, 2050, nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestSortBy_Stable(t *testing.T) {
	tbl := New("type", "actor_id")
	tbl.Append(Row{"type": "city", "actor_id": "B"})
	tbl.Append(Row{"type": "adm1", "actor_id": "Z"})
	tbl.Append(Row{"type": "city", "actor_id": "A"})

	got := tbl.SortBy("type", "actor_id").Column("actor_id")
	if !reflect.DeepEqual(got, []any{"Z", "A", "B"}) {
		t.Errorf("sorted actor_id = %v", got)
	}
}

func TestRename(t *testing.T) {
	tbl := New("initiative_initiative_id", "initiative_name")
	tbl.Append(Row{"initiative_initiative_id": "i1", "initiative_name": "n"})

	got := tbl.Rename(map[string]string{"initiative_initiative_id": "initiative_id"})
	if !reflect.DeepEqual(got.Columns(), []string{"initiative_id", "initiative_name"}) {
		t.Errorf("Columns() = %v", got.Columns())
	}
	if got.Value(0, "initiative_id") != "i1" {
		t.Errorf("renamed value = %v", got.Value(0, "initiative_id"))
	}
}

func TestConcat(t *testing.T) {
	a := New("actor_id", "year")
	a.Append(Row{"actor_id": "US", "year": 2020})
	b := New("actor_id", "gdp")
	b.Append(Row{"actor_id": "CA", "gdp": 1.9})

	got, err := Concat(a, b)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if !reflect.DeepEqual(got.Columns(), []string{"actor_id", "year", "gdp"}) {
		t.Errorf("Columns() = %v", got.Columns())
	}
	if !reflect.DeepEqual(got.Column("actor_id"), []any{"US", "CA"}) {
		t.Errorf("actor order = %v", got.Column("actor_id"))
	}
}

func TestConcat_ZeroTablesIsEmptyResult(t *testing.T) {
	_, err := Concat()
	if !errors.IsCode(err, errors.CodeEmptyResult) {
		t.Fatalf("Concat() error = %v, want EmptyResult", err)
	}
}

func TestFromMaps_ColumnOrder(t *testing.T) {
	got := FromMaps([]map[string]any{
		{"type": "city", "actor_id": "US-NYC"},
		{"actor_id": "US-CA", "name": "California", "type": "adm1"},
	})
	if !reflect.DeepEqual(got.Columns(), []string{"actor_id", "type", "name"}) {
		t.Errorf("Columns() = %v", got.Columns())
	}
}

func TestColumnKindAndFormat(t *testing.T) {
	tbl := New("year", "value", "name", "ids", "empty")
	tbl.Append(Row{"year": 2020.0, "value": 1, "name": "a", "ids": []any{"x"}})
	tbl.Append(Row{"year": 2021, "value": 1.5, "name": "b"})

	tests := []struct {
		col  string
		want Kind
	}{
		{"year", KindInt},
		{"value", KindFloat},
		{"name", KindString},
		{"ids", KindString},
		{"empty", KindNull},
	}
	for _, tt := range tests {
		if got := tbl.ColumnKind(tt.col); got != tt.want {
			t.Errorf("ColumnKind(%s) = %v, want %v", tt.col, got, tt.want)
		}
	}

	formats := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{2019.0, "2019"},
		{1.25, "1.25"},
		{[]any{"a", 1.0}, `["a",1]`},
		{true, "true"},
	}
	for _, f := range formats {
		if got := FormatValue(f.in); got != f.want {
			t.Errorf("FormatValue(%v) = %q, want %q", f.in, got, f.want)
		}
	}
}
