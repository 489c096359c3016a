package redis

import (
	"context"
	"os"
	"reflect"
	"testing"

	"github.com/openearth/openclimate/pkg/table"
)

func sampleTable() *table.Table {
	t := table.New("actor_id", "year", "gdp")
	t.Append(table.Row{"actor_id": "US", "year": 2019, "gdp": 2.1e13})
	t.Append(table.Row{"actor_id": "CA", "year": 2019, "gdp": nil})
	return t
}

func TestEncodeDecodeTable(t *testing.T) {
	columns, rows, err := encodeTable(sampleTable())
	if err != nil {
		t.Fatalf("encodeTable: %v", err)
	}
	if columns != `["actor_id","year","gdp"]` {
		t.Errorf("columns = %s", columns)
	}

	raw := make([]string, len(rows))
	for i, r := range rows {
		raw[i] = r.(string)
	}
	got, err := decodeTable(columns, raw)
	if err != nil {
		t.Fatalf("decodeTable: %v", err)
	}
	if !reflect.DeepEqual(got.Columns(), []string{"actor_id", "year", "gdp"}) {
		t.Errorf("columns = %v", got.Columns())
	}
	if got.Value(0, "year") != 2019.0 {
		t.Errorf("year = %v (%T)", got.Value(0, "year"), got.Value(0, "year"))
	}
	if got.Value(1, "gdp") != nil {
		t.Errorf("gdp = %v, want nil", got.Value(1, "gdp"))
	}
}

func TestKeys(t *testing.T) {
	s := &Store{cfg: DefaultConfig("localhost:6379")}
	if got := s.rowsKey("population/us ca"); got != "openclimate:table:population_us_ca:rows" {
		t.Errorf("rowsKey = %q", got)
	}
	if got := s.metaKey("gdp"); got != "openclimate:table:gdp:meta" {
		t.Errorf("metaKey = %q", got)
	}
}

// Requires a running server, e.g. OPENCLIMATE_TEST_REDIS=localhost:6379.
func TestStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("OPENCLIMATE_TEST_REDIS")
	if addr == "" {
		t.Skip("OPENCLIMATE_TEST_REDIS not set")
	}

	cfg := DefaultConfig(addr)
	cfg.Prefix = "openclimate-test:"
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.SaveTable(ctx, "gdp", sampleTable()); err != nil {
		t.Fatalf("SaveTable: %v", err)
	}
	got, err := s.LoadTable(ctx, "gdp")
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("Len = %d, want 2", got.Len())
	}
	if _, err := s.LoadTable(ctx, "missing"); !os.IsNotExist(err) {
		t.Errorf("LoadTable(missing) err = %v, want not exist", err)
	}
}
