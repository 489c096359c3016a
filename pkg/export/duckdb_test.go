package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckDBStore_SaveReplaceAndCopy(t *testing.T) {
	store, err := NewDuckDBStore("")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveTable(ctx, "Population", populationTable()))
	require.NoError(t, store.SaveTable(ctx, "Population", populationTable()), "saving twice replaces")

	n, err := store.Count(ctx, "Population")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var year int64
	require.NoError(t, store.DB().QueryRowContext(ctx,
		`SELECT "year" FROM "population" WHERE "actor_id" = 'CA'`).Scan(&year))
	assert.Equal(t, int64(2019), year)

	out := filepath.Join(t.TempDir(), "population.parquet")
	require.NoError(t, store.CopyToParquet(ctx, "Population", out, CompressionZstd))
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
