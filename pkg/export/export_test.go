package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/openearth/openclimate/pkg/errors"
	"github.com/openearth/openclimate/pkg/storage/object"
	"github.com/openearth/openclimate/pkg/table"
)

func populationTable() *table.Table {
	t := table.New("actor_id", "year", "population", "datasource_name")
	t.Append(table.Row{"actor_id": "US", "year": 2019, "population": 328329953.0, "datasource_name": "WDI"})
	t.Append(table.Row{"actor_id": "US", "year": 2020, "population": 331501080.5})
	t.Append(table.Row{"actor_id": "CA", "year": 2019, "population": nil, "datasource_name": "WDI, revised"})
	return t
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" Parquet ")
	require.NoError(t, err)
	assert.Equal(t, FormatParquet, f)
	assert.Equal(t, ".parquet", f.Extension())
	assert.Equal(t, ".arrow", FormatArrow.Extension())

	_, err = ParseFormat("yaml")
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestCSVEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVEncoder{}.Encode(&buf, populationTable()))

	want := "actor_id,year,population,datasource_name\n" +
		"US,2019,328329953,WDI\n" +
		"US,2020,331501080.5,\n" +
		"CA,2019,,\"WDI, revised\"\n"
	assert.Equal(t, want, buf.String())
}

func TestJSONEncoder_ColumnOrderAndNulls(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONEncoder{}.Encode(&buf, populationTable()))

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, `[{"actor_id":"US","year":2019,"population":328329953,"datasource_name":"WDI"}`), line)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	v, ok := decoded[1]["datasource_name"]
	assert.True(t, ok, "missing cells are written as null")
	assert.Nil(t, v)
}

func TestSchema_InfersKinds(t *testing.T) {
	s := Schema(populationTable())
	assert.Equal(t, arrow.BinaryTypes.String, s.Field(0).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, s.Field(1).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, s.Field(2).Type)
	assert.Equal(t, arrow.BinaryTypes.String, s.Field(3).Type)
}

func TestParquetEncoder_RoundTrip(t *testing.T) {
	for _, c := range []CompressionType{CompressionNone, CompressionSnappy, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, ParquetEncoder{Compression: c}.Encode(&buf, populationTable()))

			mem := memory.NewGoAllocator()
			tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(buf.Bytes()),
				parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
			require.NoError(t, err)
			defer tbl.Release()

			assert.Equal(t, int64(3), tbl.NumRows())
			assert.Equal(t, int64(4), tbl.NumCols())
			assert.Equal(t, "year", tbl.Schema().Field(1).Name)
		})
	}
}

func TestArrowEncoder_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ArrowEncoder{Compression: CompressionLZ4}.Encode(&buf, populationTable()))

	mem := memory.NewGoAllocator()
	r, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()), ipc.WithAllocator(mem))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.NumRecords())
	rec, err := r.Record(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.NumRows())

	years := rec.Column(1).(*array.Int64)
	assert.Equal(t, int64(2020), years.Value(1))
	pop := rec.Column(2).(*array.Float64)
	assert.True(t, pop.IsNull(2))
}

func TestXLSXEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSXEncoder{}.Encode(&buf, populationTable()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("data")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"actor_id", "year", "population", "datasource_name"}, rows[0])
	assert.Equal(t, "CA", rows[3][0])
}

type memStore struct {
	mu     sync.Mutex
	saved  map[string]int
	fail   bool
	closed bool
}

func (m *memStore) SaveTable(ctx context.Context, name string, t *table.Table) error {
	if m.fail {
		return fmt.Errorf("store unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string]int{}
	}
	m.saved[name] = t.Len()
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

func TestExporter_FansOut(t *testing.T) {
	dir := t.TempDir()
	local, err := object.NewLocalStorage(dir)
	require.NoError(t, err)

	good := &memStore{}
	ex := NewExporter(CSVEncoder{}, []Destination{local}, []TableStore{good})

	res, err := ex.Export(context.Background(), "population", populationTable())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, []string{filepath.Join(local.Root(), "population.csv")}, res.Locations)
	assert.Equal(t, 3, good.saved["population"])

	data, err := local.Get(context.Background(), "population.csv")
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, len(data))

	require.NoError(t, ex.Close())
	assert.True(t, good.closed)
}

func TestExporter_CollectsFailures(t *testing.T) {
	local, err := object.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ex := NewExporter(JSONEncoder{}, []Destination{local}, []TableStore{&memStore{fail: true}})
	res, err := ex.Export(context.Background(), "gdp", populationTable())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeStoreFailed), "got %v", err)
	assert.Len(t, res.Locations, 1, "destinations still written")
}

func TestExporter_DestinationsNeedEncoder(t *testing.T) {
	local, err := object.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = NewExporter(nil, []Destination{local}, nil).Export(context.Background(), "x", populationTable())
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestTableName(t *testing.T) {
	tests := map[string]string{
		"population":        "population",
		"Emissions US-CA":   "emissions_us_ca",
		"2024 targets":      "t_2024_targets",
		"":                  "t_",
		`gdp"; drop table x`: "gdp___drop_table_x",
	}
	for in, want := range tests {
		assert.Equal(t, want, TableName(in), "TableName(%q)", in)
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := postgresDialect.createTableSQL(`"public"."population"`, populationTable())
	want := `CREATE TABLE "public"."population" ("actor_id" TEXT, "year" BIGINT, "population" DOUBLE PRECISION, "datasource_name" TEXT)`
	assert.Equal(t, want, got)
}

func TestSQLRows(t *testing.T) {
	rows := sqlRows(populationTable())
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"US", int64(2019), 328329953.0, "WDI"}, rows[0])
	assert.Equal(t, []any{"CA", int64(2019), nil, "WDI, revised"}, rows[2])
}
