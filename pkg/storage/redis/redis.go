// Package redis stores exported tables in Redis: one list of JSON rows and
// one metadata hash per table, both expiring after the configured TTL.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openearth/openclimate/pkg/table"
)

// Config configures the Redis table store.
type Config struct {
	// Address is the Redis server address (e.g., "localhost:6379")
	Address string

	// Password for Redis authentication (optional)
	Password string

	// Database number to use (default: 0)
	Database int

	// Prefix is prepended to all keys (e.g., "openclimate:")
	Prefix string

	// TTL is the time-to-live for table keys (0 = no expiration)
	TTL time.Duration

	// Timeout for Redis operations
	Timeout time.Duration

	PoolSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(address string) Config {
	return Config{
		Address:  address,
		Prefix:   "openclimate:",
		TTL:      24 * time.Hour,
		Timeout:  5 * time.Second,
		PoolSize: 10,
	}
}

// Store persists tables in Redis.
type Store struct {
	cfg    Config
	client *redis.Client
}

// NewStore connects and pings the server.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{cfg: cfg, client: client}, nil
}

func (s *Store) rowsKey(name string) string {
	return s.cfg.Prefix + "table:" + sanitizeKey(name) + ":rows"
}

func (s *Store) metaKey(name string) string {
	return s.cfg.Prefix + "table:" + sanitizeKey(name) + ":meta"
}

func (s *Store) indexKey() string {
	return s.cfg.Prefix + "tables"
}

// sanitizeKey removes characters that may cause issues in Redis keys.
func sanitizeKey(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// SaveTable replaces the stored copy of t under name in one transaction.
func (s *Store) SaveTable(ctx context.Context, name string, t *table.Table) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	columns, rows, err := encodeTable(t)
	if err != nil {
		return err
	}

	rowsKey, metaKey := s.rowsKey(name), s.metaKey(name)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, rowsKey)
	if len(rows) > 0 {
		pipe.RPush(ctx, rowsKey, rows...)
	}
	pipe.HSet(ctx, metaKey,
		"columns", columns,
		"rows", strconv.Itoa(t.Len()),
		"saved_at", time.Now().UTC().Format(time.RFC3339),
	)
	if s.cfg.TTL > 0 {
		pipe.Expire(ctx, rowsKey, s.cfg.TTL)
		pipe.Expire(ctx, metaKey, s.cfg.TTL)
	}
	pipe.SAdd(ctx, s.indexKey(), name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save table to Redis: %w", err)
	}
	return nil
}

// LoadTable reads a table back. Numbers come back as float64.
func (s *Store) LoadTable(ctx context.Context, name string) (*table.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	columns, err := s.client.HGet(ctx, s.metaKey(name), "columns").Result()
	if err != nil {
		if err == redis.Nil {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to load table metadata: %w", err)
	}

	rows, err := s.client.LRange(ctx, s.rowsKey(name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load table rows: %w", err)
	}
	return decodeTable(columns, rows)
}

// ListTables returns the names of stored tables.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.client.SMembers(ctx, s.indexKey()).Result()
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func encodeTable(t *table.Table) (string, []interface{}, error) {
	columns, err := json.Marshal(t.Columns())
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal columns: %w", err)
	}

	rows := make([]interface{}, 0, t.Len())
	for _, r := range t.Rows() {
		b, err := json.Marshal(r)
		if err != nil {
			return "", nil, fmt.Errorf("failed to marshal row: %w", err)
		}
		rows = append(rows, string(b))
	}
	return string(columns), rows, nil
}

func decodeTable(columns string, rows []string) (*table.Table, error) {
	var cols []string
	if err := json.Unmarshal([]byte(columns), &cols); err != nil {
		return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
	}

	t := table.New(cols...)
	for _, raw := range rows {
		var r table.Row
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row: %w", err)
		}
		t.Append(r)
	}
	return t, nil
}
