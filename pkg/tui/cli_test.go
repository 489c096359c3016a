package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openearth/openclimate/pkg/diag"
	"github.com/openearth/openclimate/pkg/export"
	"github.com/openearth/openclimate/pkg/table"
)

func sampleTable(n int) *table.Table {
	t := table.New("actor_id", "year", "population")
	for i := 0; i < n; i++ {
		t.Append(table.Row{"actor_id": "US", "year": 2000 + i, "population": 1.5})
	}
	return t
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleTable(2), 0)
	for _, want := range []string{"actor_id", "year", "population", "2001", "1.5"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "more rows")
}

func TestRenderTable_Truncates(t *testing.T) {
	out := RenderTable(sampleTable(5), 2)
	assert.Contains(t, out, "2001")
	assert.NotContains(t, out, "2002")
	assert.Contains(t, out, "3 more rows")
}

func TestPrintDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	PrintDiagnostics(&buf, nil)
	assert.Empty(t, buf.String())

	PrintDiagnostics(&buf, []diag.Diagnostic{
		diag.NotFound("b", "ZZ"),
		diag.IncompleteData("CA", "gdp"),
	})
	out := buf.String()
	assert.Contains(t, out, "2 WARNING(S)")
	assert.Contains(t, out, "ActorIDError: ZZ was not found")
	assert.Contains(t, out, "E102")
}

func TestPrintExportResult(t *testing.T) {
	var buf bytes.Buffer
	PrintExportResult(&buf, &export.Result{
		Rows:      1500,
		Bytes:     2048,
		Locations: []string{"s3://bucket/population.parquet"},
		Duration:  1500 * time.Millisecond,
	})
	out := buf.String()
	assert.Contains(t, out, "1.5K")
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "s3://bucket/population.parquet")
	assert.Contains(t, out, "1.5s")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "fetching")
	assert.Equal(t, 0, p.Done())
	p.Update(1, 3)
	p.Update(2, 3)
	assert.Equal(t, 2, p.Done())
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "2m5s", formatDuration(125*time.Second))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
	assert.Equal(t, "2.5M", formatNumber(2500000))
	assert.Equal(t, "US\nCA\n", PlainList([]string{"US", "CA"}))
	assert.True(t, strings.HasSuffix(PlainList([]string{"x"}), "\n"))
}
