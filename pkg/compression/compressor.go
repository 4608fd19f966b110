// Package compression wraps table exports and imports in compressed streams.
//
// # Algorithm Selection
//
//   - Snappy/S2: best for speed, moderate compression
//   - LZ4: extremely fast, decent compression
//   - Zstd: best compression ratio, good speed
//   - Gzip: wide compatibility, good compression
//
// # Basic Usage
//
//	w, err := compression.NewWriter(file, compression.Zstd, compression.Default)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	err = formats.Write(w, table, formats.CSV, nil)
//
// Readers detect nothing on their own; pass the algorithm the data was
// written with, or use DetectAlgorithm on the file name.
package compression

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Algorithms lists every supported algorithm.
var Algorithms = []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2}

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

var levelNames = map[string]Level{
	"fastest": Fastest,
	"default": Default,
	"better":  Better,
	"best":    Best,
}

func (l Level) String() string {
	for name, level := range levelNames {
		if level == l {
			return name
		}
	}
	return "default"
}

// ParseAlgorithm converts a configuration string into an Algorithm. The
// empty string means None.
func ParseAlgorithm(s string) (Algorithm, error) {
	if s == "" {
		return None, nil
	}
	a := Algorithm(strings.ToLower(s))
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return "", commonerrors.Newf(commonerrors.ErrorTypeConfig, "unsupported compression algorithm: %s", s)
}

// ParseLevel converts fastest, default, better or best into a Level. The
// empty string means Default.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return Default, nil
	}
	if level, ok := levelNames[strings.ToLower(s)]; ok {
		return level, nil
	}
	return 0, commonerrors.Newf(commonerrors.ErrorTypeConfig, "unsupported compression level: %s", s)
}

var extensions = map[Algorithm]string{
	None:   "",
	Gzip:   ".gz",
	Snappy: ".sz",
	LZ4:    ".lz4",
	Zstd:   ".zst",
	S2:     ".s2",
}

// Extension returns the file suffix conventionally used for a.
func Extension(a Algorithm) string {
	return extensions[a]
}

// DetectAlgorithm guesses the algorithm from a file name suffix.
func DetectAlgorithm(path string) Algorithm {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return None
	}
	for a, e := range extensions {
		if e == ext {
			return a
		}
	}
	return None
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter returns a writer compressing into w. Closing it flushes the
// compressed stream but does not close w.
func NewWriter(w io.Writer, a Algorithm, level Level) (io.WriteCloser, error) {
	switch a {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		zw, err := gzip.NewWriterLevel(w, mapGzipLevel(level))
		if err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "failed to create gzip writer")
		}
		return zw, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "failed to configure lz4 writer")
		}
		return zw, nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "failed to create zstd writer")
		}
		return enc, nil
	case S2:
		return s2.NewWriter(w, mapS2Level(level)...), nil
	default:
		return nil, commonerrors.Newf(commonerrors.ErrorTypeConfig, "unsupported compression algorithm: %s", a)
	}
}

// NewReader returns a reader decompressing r. Closing it releases decoder
// resources but does not close r.
func NewReader(r io.Reader, a Algorithm) (io.ReadCloser, error) {
	switch a {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to open gzip stream")
		}
		return zr, nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to open zstd stream")
		}
		return dec.IOReadCloser(), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	default:
		return nil, commonerrors.Newf(commonerrors.ErrorTypeConfig, "unsupported compression algorithm: %s", a)
	}
}

// Compress compresses data in memory.
func Compress(data []byte, a Algorithm, level Level) ([]byte, error) {
	builder := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(builder, stringpool.Medium)

	w, err := NewWriter(builder, a, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeData, "%s compression failed", a)
	}
	if err := w.Close(); err != nil {
		return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeData, "%s compression failed", a)
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

// Decompress decompresses data in memory.
func Decompress(data []byte, a Algorithm) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(data), a)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	builder := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(builder, stringpool.Medium)

	if _, err := io.Copy(builder, r); err != nil { //nolint:gosec // G110: inputs are local table files
		return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeData, "%s decompression failed", a)
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

// Helper functions to map compression levels

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapS2Level(level Level) []s2.WriterOption {
	switch level {
	case Better:
		return []s2.WriterOption{s2.WriterBetterCompression()}
	case Best:
		return []s2.WriterOption{s2.WriterBestCompression()}
	default:
		return nil
	}
}
