package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/openearth/openclimate/pkg/table"
)

// DuckDBStore saves tables into a DuckDB database file.
type DuckDBStore struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

// NewDuckDBStore opens (or creates) the database at path. An empty path
// opens an in-memory database.
func NewDuckDBStore(path string) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return &DuckDBStore{path: path, db: db}, nil
}

// SaveTable replaces table name with the contents of t.
func (s *DuckDBStore) SaveTable(ctx context.Context, name string, t *table.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident := quoteIdent(TableName(name))
	cols := t.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("table %s has no columns", name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, duckDialect.createTableSQL(ident, t)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", ident, strings.Join(quoted, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, vals := range sqlRows(t) {
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CopyToParquet writes a stored table to a Parquet file using DuckDB's
// COPY.
func (s *DuckDBStore) CopyToParquet(ctx context.Context, name, outputPath string, compression CompressionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	codec := "snappy"
	switch compression {
	case CompressionGzip:
		codec = "gzip"
	case CompressionZstd:
		codec = "zstd"
	case CompressionNone:
		codec = "uncompressed"
	}

	query := fmt.Sprintf("COPY %s TO '%s' (FORMAT PARQUET, COMPRESSION '%s')",
		quoteIdent(TableName(name)), strings.ReplaceAll(outputPath, "'", "''"), codec)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to export parquet: %w", err)
	}
	return nil
}

// Count returns the number of rows stored under name.
func (s *DuckDBStore) Count(ctx context.Context, name string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(TableName(name))).Scan(&n)
	return n, err
}

// DB exposes the database handle for ad-hoc queries.
func (s *DuckDBStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

var _ TableStore = (*DuckDBStore)(nil)
