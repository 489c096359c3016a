package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openearth/openclimate/pkg/config"
	"github.com/openearth/openclimate/pkg/export"
	"github.com/openearth/openclimate/pkg/storage/object"
	"github.com/openearth/openclimate/pkg/storage/redis"
	"github.com/openearth/openclimate/pkg/storage/s3"
	"github.com/openearth/openclimate/pkg/table"
	"github.com/openearth/openclimate/pkg/tui"
)

// emit prints or exports t according to the output and storage config.
func emit(ctx context.Context, cfg *config.Config, name string, t *table.Table) error {
	ex, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}
	if ex != nil {
		defer ex.Close()
	}

	if cfg.Output.Format == "table" {
		tui.PrintTable(os.Stdout, t, maxRows)
	} else if toStdout(cfg) {
		f, _ := export.ParseFormat(cfg.Output.Format)
		enc, err := export.NewEncoder(f, export.ParseCompression(cfg.Output.Compression))
		if err != nil {
			return err
		}
		if err := enc.Encode(os.Stdout, t); err != nil {
			return err
		}
	}

	if ex == nil {
		return nil
	}
	res, err := ex.Export(ctx, name, t)
	if res != nil && !quiet {
		tui.PrintExportResult(os.Stderr, res)
	}
	return err
}

// toStdout reports whether a text format goes to the terminal because no
// file destination is configured.
func toStdout(cfg *config.Config) bool {
	switch cfg.Output.Format {
	case "csv", "json":
		return cfg.Output.Dir == "" && cfg.Storage.S3.Bucket == ""
	}
	return false
}

// newExporter builds the exporter for the configured destinations and
// stores. It returns nil when there is nothing to export to.
func newExporter(ctx context.Context, cfg *config.Config) (*export.Exporter, error) {
	var (
		enc    export.Encoder
		dests  []export.Destination
		stores []export.TableStore
	)

	if cfg.Output.Format != "table" && !toStdout(cfg) {
		f, err := export.ParseFormat(cfg.Output.Format)
		if err != nil {
			return nil, err
		}
		enc, err = export.NewEncoder(f, export.ParseCompression(cfg.Output.Compression))
		if err != nil {
			return nil, err
		}

		dir := cfg.Output.Dir
		if dir == "" && cfg.Storage.S3.Bucket == "" {
			dir = "."
		}
		if dir != "" {
			local, err := object.NewLocalStorage(dir)
			if err != nil {
				return nil, err
			}
			dests = append(dests, local)
		}
		if cfg.Storage.S3.Bucket != "" {
			c, err := s3.NewClient(ctx, s3Config(cfg.Storage.S3))
			if err != nil {
				return nil, err
			}
			dests = append(dests, c)
		}
	}

	closeAll := func() {
		for _, s := range stores {
			s.Close()
		}
	}

	if rc := cfg.Storage.Redis; rc.Address != "" {
		st, err := redis.NewStore(redisConfig(rc))
		if err != nil {
			return nil, err
		}
		stores = append(stores, st)
	}
	if path := cfg.Storage.DuckDB.Path; path != "" {
		st, err := export.NewDuckDBStore(path)
		if err != nil {
			closeAll()
			return nil, err
		}
		stores = append(stores, st)
	}
	if pc := cfg.Storage.Postgres; pc.DSN != "" {
		st, err := export.NewPostgresStore(ctx, pc.DSN, pc.Schema)
		if err != nil {
			closeAll()
			return nil, err
		}
		stores = append(stores, st)
	}

	if len(dests) == 0 && len(stores) == 0 {
		return nil, nil
	}
	return export.NewExporter(enc, dests, stores), nil
}

func s3Config(c config.S3Config) s3.Config {
	out := s3.DefaultConfig(c.Bucket, c.Region)
	out.Prefix = c.Prefix
	out.Endpoint = c.Endpoint
	out.UsePathStyle = c.UsePathStyle
	out.AccessKeyID = c.AccessKeyID
	out.SecretAccessKey = c.SecretAccessKey
	return out
}

func redisConfig(c config.RedisConfig) redis.Config {
	out := redis.DefaultConfig(c.Address)
	out.Password = c.Password
	out.Database = c.DB
	if c.Prefix != "" {
		out.Prefix = c.Prefix
	}
	if c.TTL > 0 {
		out.TTL = c.TTL
	}
	if c.Timeout > 0 {
		out.Timeout = c.Timeout
	}
	return out
}

// exportName labels an export with the command and a UTC timestamp.
func exportName(command string, now time.Time) string {
	return fmt.Sprintf("%s_%s", command, now.UTC().Format("20060102T150405Z"))
}
