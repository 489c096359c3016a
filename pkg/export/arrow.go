package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/openearth/openclimate/pkg/table"
)

// Schema derives an Arrow schema from the inferred column kinds. Every
// field is nullable; all-null columns are typed as strings.
func Schema(t *table.Table) *arrow.Schema {
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c, Type: arrowType(t.ColumnKind(c)), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k table.Kind) arrow.DataType {
	switch k {
	case table.KindInt:
		return arrow.PrimitiveTypes.Int64
	case table.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case table.KindBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// Record converts t into a single Arrow record. The caller releases it.
func Record(mem memory.Allocator, t *table.Table) arrow.Record {
	schema := Schema(t)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	rows := t.Rows()
	for i, f := range schema.Fields() {
		fb := b.Field(i)
		fb.Reserve(len(rows))
		for _, r := range rows {
			appendValue(fb, r[f.Name])
		}
	}
	return b.NewRecord()
}

func appendValue(b array.Builder, v any) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch fb := b.(type) {
	case *array.Int64Builder:
		if n, ok := table.Int64Value(v); ok {
			fb.Append(n)
			return
		}
	case *array.Float64Builder:
		if f, ok := table.Float64Value(v); ok {
			fb.Append(f)
			return
		}
	case *array.BooleanBuilder:
		if x, ok := v.(bool); ok {
			fb.Append(x)
			return
		}
	case *array.StringBuilder:
		fb.Append(table.FormatValue(v))
		return
	}
	b.AppendNull()
}

// ParquetEncoder writes a Parquet file with the Arrow schema embedded.
type ParquetEncoder struct {
	Compression CompressionType
}

// Format implements Encoder.
func (ParquetEncoder) Format() Format { return FormatParquet }

// Encode implements Encoder.
func (e ParquetEncoder) Encode(w io.Writer, t *table.Table) error {
	mem := memory.NewGoAllocator()
	rec := Record(mem, t)
	defer rec.Release()

	var codec compress.Compression
	switch e.Compression {
	case CompressionSnappy:
		codec = compress.Codecs.Snappy
	case CompressionGzip:
		codec = compress.Codecs.Gzip
	case CompressionZstd:
		codec = compress.Codecs.Zstd
	case CompressionLZ4:
		codec = compress.Codecs.Lz4
	default:
		codec = compress.Codecs.Uncompressed
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithDictionaryDefault(true),
		parquet.WithAllocator(mem),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	fw, err := pqarrow.NewFileWriter(rec.Schema(), w, writerProps, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ArrowEncoder writes the Arrow IPC file format.
type ArrowEncoder struct {
	Compression CompressionType
}

// Format implements Encoder.
func (ArrowEncoder) Format() Format { return FormatArrow }

// Encode implements Encoder. Only zstd and lz4 apply to IPC; other
// compression settings write uncompressed buffers.
func (e ArrowEncoder) Encode(w io.Writer, t *table.Table) error {
	mem := memory.NewGoAllocator()
	rec := Record(mem, t)
	defer rec.Release()

	opts := []ipc.Option{ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem)}
	switch e.Compression {
	case CompressionZstd:
		opts = append(opts, ipc.WithZstd())
	case CompressionLZ4:
		opts = append(opts, ipc.WithLZ4())
	}

	fw, err := ipc.NewFileWriter(w, opts...)
	if err != nil {
		return fmt.Errorf("failed to create ipc writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("failed to write batch: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}
