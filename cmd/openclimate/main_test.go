package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openearth/openclimate/pkg/config"
	"github.com/openearth/openclimate/pkg/table"
)

func TestResolveIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actors.txt")
	require.NoError(t, os.WriteFile(path, []byte("CA # north\nDE\n"), 0644))

	ids, err := resolveIDs([]string{"US"}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"US", "CA", "DE"}, ids)

	_, err = resolveIDs(nil, "")
	assert.Error(t, err)
}

func TestResolveIDs_KeepsRepeats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actors.txt")
	require.NoError(t, os.WriteFile(path, []byte("US, CA\nUS\n"), 0644))

	ids, err := resolveIDs([]string{"CA"}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CA", "US", "CA", "US"}, ids)
}

func TestApplyFlags_OnlyChanged(t *testing.T) {
	cmd := emissionsCmd
	require.NoError(t, cmd.ParseFlags([]string{"--base-url", "http://localhost:8000", "--concurrency", "4", "--otlp", "collector:4317"}))
	defer func() {
		for _, name := range []string{"base-url", "concurrency", "otlp"} {
			cmd.Flags().Lookup(name).Changed = false
		}
		baseURL, concurrency, otlpEndpoint = "", 0, ""
	}()

	cfg := config.Default()
	applyFlags(cmd, cfg)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 4, cfg.API.MaxConcurrency)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "/api/v1", cfg.API.Version, "unset flags keep config values")
	assert.Equal(t, "table", cfg.Output.Format)
}

func TestExportName(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "population_20240301T113005Z", exportName("population", now))
}

func TestToStdout(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Format = "csv"
	assert.True(t, toStdout(cfg))

	cfg.Output.Dir = "out"
	assert.False(t, toStdout(cfg))

	cfg.Output.Format = "parquet"
	cfg.Output.Dir = ""
	assert.False(t, toStdout(cfg))
}

func TestNewExporter(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	ex, err := newExporter(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, ex, "table output with no stores needs no exporter")

	dir := t.TempDir()
	cfg.Output.Format = "json"
	cfg.Output.Dir = dir
	cfg.Storage.DuckDB.Path = filepath.Join(dir, "climate.duckdb")
	ex, err = newExporter(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, ex)
	defer ex.Close()

	tbl := table.New("actor_id", "year")
	tbl.Append(table.Row{"actor_id": "US", "year": 2019})
	res, err := ex.Export(ctx, "population", tbl)
	require.NoError(t, err)
	require.Len(t, res.Locations, 1)
	assert.Equal(t, filepath.Join(dir, "population.json"), res.Locations[0])
}
