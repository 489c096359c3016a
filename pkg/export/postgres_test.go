package export

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set OPENCLIMATE_TEST_POSTGRES to a DSN to run against a live server.
func TestPostgresStore_SaveTable(t *testing.T) {
	dsn := os.Getenv("OPENCLIMATE_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("OPENCLIMATE_TEST_POSTGRES not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, dsn, "")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveTable(ctx, "openclimate_test_population", populationTable()))
	require.NoError(t, store.SaveTable(ctx, "openclimate_test_population", populationTable()))

	var n int64
	require.NoError(t, store.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM "public"."openclimate_test_population"`).Scan(&n))
	assert.Equal(t, int64(3), n)

	_, err = store.pool.Exec(ctx, `DROP TABLE "public"."openclimate_test_population"`)
	require.NoError(t, err)
}
