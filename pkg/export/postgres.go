package export

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openearth/openclimate/pkg/table"
)

// PostgresStore saves tables into a Postgres schema with COPY.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgresStore connects to dsn. An empty schema means "public".
func NewPostgresStore(ctx context.Context, dsn, schema string) (*PostgresStore, error) {
	if schema == "" {
		schema = "public"
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

// SaveTable replaces schema.name with the contents of t.
func (s *PostgresStore) SaveTable(ctx context.Context, name string, t *table.Table) error {
	cols := t.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("table %s has no columns", name)
	}

	ident := pgx.Identifier{s.schema, TableName(name)}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, postgresDialect.createTableSQL(ident.Sanitize(), t)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	n, err := tx.CopyFrom(ctx, ident, cols, pgx.CopyFromRows(sqlRows(t)))
	if err != nil {
		return fmt.Errorf("failed to copy rows: %w", err)
	}
	if int(n) != t.Len() {
		return fmt.Errorf("copied %d of %d rows", n, t.Len())
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ TableStore = (*PostgresStore)(nil)
