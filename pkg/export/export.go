// Package export encodes tables into file formats and hands them to
// destinations (local directory, object store) and table stores (DuckDB,
// Postgres, Redis).
package export

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openearth/openclimate/pkg/errors"
	"github.com/openearth/openclimate/pkg/table"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
	FormatArrow   Format = "arrow"
	FormatXLSX    Format = "xlsx"
)

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatArrow {
		return ".arrow"
	}
	return "." + string(f)
}

// ContentType returns the MIME type used when uploading.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatArrow:
		return "application/vnd.apache.arrow.file"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatJSON, FormatParquet, FormatArrow, FormatXLSX:
		return f, nil
	}
	return "", errors.InvalidArgument("unknown export format %q", s)
}

// CompressionType represents Parquet and Arrow IPC compression options.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// String returns the compression type name.
func (c CompressionType) String() string {
	switch c {
	case CompressionSnappy:
		return "snappy"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// ParseCompression parses a compression type string.
func ParseCompression(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "gzip":
		return CompressionGzip
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Encoder writes a table in one format.
type Encoder interface {
	Encode(w io.Writer, t *table.Table) error
	Format() Format
}

// NewEncoder returns the encoder for f.
func NewEncoder(f Format, compression CompressionType) (Encoder, error) {
	switch f {
	case FormatCSV:
		return CSVEncoder{}, nil
	case FormatJSON:
		return JSONEncoder{Indent: "  "}, nil
	case FormatParquet:
		return ParquetEncoder{Compression: compression}, nil
	case FormatArrow:
		return ArrowEncoder{Compression: compression}, nil
	case FormatXLSX:
		return XLSXEncoder{}, nil
	}
	return nil, errors.InvalidArgument("unknown export format %q", f)
}

// Destination stores an encoded object under a name and returns where it
// ended up.
type Destination interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// TableStore persists a table under a name, replacing any previous version.
type TableStore interface {
	SaveTable(ctx context.Context, name string, t *table.Table) error
	Close() error
}

// Exporter encodes a table once and fans it out to every destination and
// store.
type Exporter struct {
	encoder      Encoder
	destinations []Destination
	stores       []TableStore
}

// NewExporter creates an Exporter. enc may be nil when only stores are used.
func NewExporter(enc Encoder, destinations []Destination, stores []TableStore) *Exporter {
	return &Exporter{encoder: enc, destinations: destinations, stores: stores}
}

// Result describes one export run.
type Result struct {
	Name      string
	Rows      int
	Bytes     int
	Locations []string
	Duration  time.Duration
}

// Export writes t as name (without extension) to all targets. Targets run
// concurrently; every failure is collected.
func (e *Exporter) Export(ctx context.Context, name string, t *table.Table) (*Result, error) {
	start := time.Now()
	res := &Result{Name: name, Rows: t.Len()}

	if e.encoder == nil && len(e.destinations) > 0 {
		return nil, errors.InvalidArgument("destinations require an encoder")
	}

	var data []byte
	if len(e.destinations) > 0 {
		var buf bytes.Buffer
		if err := e.encoder.Encode(&buf, t); err != nil {
			return nil, errors.Wrapf(err, errors.CodeExportFailed, "encode %s", e.encoder.Format())
		}
		data = buf.Bytes()
		res.Bytes = len(data)
	}

	locations := make([]string, len(e.destinations))
	errs := make([]error, len(e.destinations)+len(e.stores))

	var g errgroup.Group
	for i, d := range e.destinations {
		g.Go(func() error {
			object := name + e.encoder.Format().Extension()
			loc, err := d.Put(ctx, object, e.encoder.Format().ContentType(), data)
			if err != nil {
				errs[i] = errors.Wrapf(err, errors.CodeExportFailed, "write %s", object)
				return nil
			}
			locations[i] = loc
			return nil
		})
	}
	for i, s := range e.stores {
		g.Go(func() error {
			if err := s.SaveTable(ctx, name, t); err != nil {
				errs[len(e.destinations)+i] = errors.Wrapf(err, errors.CodeStoreFailed, "store %s", name)
			}
			return nil
		})
	}
	g.Wait()

	var multi errors.MultiError
	for _, err := range errs {
		multi.Add(err)
	}
	for _, loc := range locations {
		if loc != "" {
			res.Locations = append(res.Locations, loc)
		}
	}
	res.Duration = time.Since(start)
	return res, multi.Combined()
}

// Close closes every store.
func (e *Exporter) Close() error {
	var multi errors.MultiError
	for _, s := range e.stores {
		multi.Add(s.Close())
	}
	return multi.Combined()
}

// TableName turns an arbitrary label into a safe SQL identifier.
func TableName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "t_" + out
	}
	return out
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
