package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/compression"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/config"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/formats"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/logger"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/metrics"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/observability"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/registry"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/schema"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	configPath string
	logLevel   string
	provider   string
	out        io.Writer
	errOut     io.Writer

	cfg       *config.Config
	log       *zap.Logger
	registry  *registry.Registry
	gatherer  *prometheus.Registry
	collector *metrics.Collector
	tracing   *observability.Provider
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.provider != "" {
		cfg.Factory.Provider = a.provider
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.log = log.With(zap.String("component", "rectable-cli"))
	logger.Set(a.log)

	a.registry = registry.NewRegistry(a.log)
	if !a.registry.Has(cfg.Factory.Provider) {
		return commonerrors.Newf(commonerrors.ErrorTypeConfig, "provider %s not found", cfg.Factory.Provider).
			WithDetail("available", a.registry.Names())
	}

	if cfg.Metrics.Enabled {
		a.gatherer = prometheus.NewRegistry()
		a.collector = metrics.NewCollector(cfg.Metrics.Namespace, a.gatherer)
	}

	tc := observability.DefaultTracingConfig()
	tc.Enabled = cfg.Tracing.Enabled
	tc.ServiceName = cfg.Tracing.ServiceName
	tc.ServiceVersion = version
	tc.SampleRate = cfg.Tracing.SampleRate
	tc.Output = a.errOut
	if a.tracing, err = observability.NewProvider(tc); err != nil {
		return err
	}
	a.tracing.Install()

	a.log.Debug("configuration loaded",
		zap.String("config", a.configPath),
		zap.String("provider", cfg.Factory.Provider),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled))
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.tracing != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.tracing.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("failed to shut down tracing", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

// factory resolves the configured provider for tables named name.
func (a *app) factory(name string) (record.Factory, error) {
	opts := registry.Options{Name: name, Logger: a.log}
	if a.collector != nil {
		opts.Observer = a.collector
	}
	return a.registry.Resolve(a.cfg.Factory.Provider, opts)
}

// source describes one input file.
type source struct {
	path        string
	format      formats.Format
	compression compression.Algorithm
}

// inputSource derives the format and compression of path from its
// suffixes, as in people.csv.zst.
func inputSource(path string) (source, error) {
	s := source{path: path, compression: compression.DetectAlgorithm(path)}
	base := strings.TrimSuffix(path, compression.Extension(s.compression))
	switch strings.ToLower(filepath.Ext(base)) {
	case ".csv":
		s.format = formats.CSV
	case ".json":
		s.format = formats.JSON
	case ".jsonl", ".ndjson":
		s.format = formats.JSONL
	default:
		return s, commonerrors.Newf(commonerrors.ErrorTypeArgument, "cannot read %s: expected a .csv, .json or .jsonl file", path)
	}
	return s, nil
}

func (s source) open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "open input").WithDetail("file", s.path)
	}
	r, err := compression.NewReader(f, s.compression)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readCloser{Reader: r, closers: []io.Closer{r, f}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// tableName is the file name of path without any suffix.
func tableName(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// loadTable reads input into a new table. Without a schema the columns are
// inferred from a CSV input.
func (a *app) loadTable(ctx context.Context, schemaPath, input string, sampleSize int) (record.Table, *schema.Definition, error) {
	src, err := inputSource(input)
	if err != nil {
		return nil, nil, err
	}
	r, err := src.open()
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	ctx = logger.WithOperation(logger.WithTable(logger.NewContext(ctx, a.log), tableName(input)), "load")
	log := logger.FromContext(ctx)
	tracer := observability.NewTableTracer(a.tracing.TracerProvider(), tableName(input))
	ctx, span := tracer.StartSpan(ctx, "load")
	defer span.End()
	span.SetAttribute("input.path", input)
	span.SetAttribute("input.format", string(src.format))

	table, def, n, err := a.read(src, r, schemaPath, sampleSize)
	span.SetAttribute("table.rows", n)
	span.Finish(err)
	if err != nil {
		return nil, nil, err
	}
	if a.collector != nil {
		// A reload under the same name replaces the gauge instead of adding to it.
		a.collector.SetRows(table.Name(), table.RowCount())
	}

	log.Info("table loaded",
		append(observability.TraceFields(ctx),
			zap.String("input", input),
			zap.Int("rows", n),
			zap.Int("columns", table.ColumnCount()),
			zap.Duration("duration", span.Duration()))...)
	return table, def, nil
}

func (a *app) read(src source, r io.Reader, schemaPath string, sampleSize int) (record.Table, *schema.Definition, int, error) {
	if schemaPath == "" {
		if src.format != formats.CSV {
			return nil, nil, 0, commonerrors.Newf(commonerrors.ErrorTypeArgument,
				"a schema is required to read %s input", src.format)
		}
		return a.inferCSV(tableName(src.path), r, sampleSize)
	}

	def, err := schema.LoadFile(schemaPath)
	if err != nil {
		return nil, nil, 0, err
	}
	columns, err := def.BuildColumns()
	if err != nil {
		return nil, nil, 0, err
	}
	f, err := a.factory(def.Name)
	if err != nil {
		return nil, nil, 0, err
	}
	table, err := f.NewTable(columns...)
	if err != nil {
		return nil, nil, 0, err
	}

	var n int
	if src.format == formats.CSV {
		n, err = formats.ReadCSV(r, table, nil)
	} else {
		n, err = formats.ReadJSON(r, table)
	}
	if err != nil {
		return nil, nil, n, err
	}
	return table, def, n, nil
}

// inferCSV reads the whole CSV input, infers its columns from a sample and
// then loads every row.
func (a *app) inferCSV(name string, r io.Reader, sampleSize int) (record.Table, *schema.Definition, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cells, err := cr.ReadAll()
	if err != nil {
		return nil, nil, 0, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "read csv input")
	}
	if len(cells) == 0 {
		return nil, nil, 0, commonerrors.New(commonerrors.ErrorTypeData, "csv input is empty")
	}

	def, err := schema.NewInferenceEngine(a.log, sampleSize).Infer(name, cells[0], cells[1:])
	if err != nil {
		return nil, nil, 0, err
	}
	columns, err := def.BuildColumns()
	if err != nil {
		return nil, nil, 0, err
	}
	f, err := a.factory(name)
	if err != nil {
		return nil, nil, 0, err
	}
	table, err := f.NewTable(columns...)
	if err != nil {
		return nil, nil, 0, err
	}

	for i, row := range cells[1:] {
		values, err := schema.ParseRow(columns, row)
		if err == nil {
			err = table.AppendValues(values...)
		}
		if err != nil {
			return nil, nil, i, commonerrors.Wrap(err, commonerrors.TypeOf(err), "load inferred row").
				WithDetail("row", i+1)
		}
	}
	return table, def, len(cells) - 1, nil
}

// outputPath joins dir, name and the suffixes of format and algorithm.
func outputPath(dir, name string, format formats.Format, a compression.Algorithm) string {
	return filepath.Join(dir, name+format.Extension()+compression.Extension(a))
}
