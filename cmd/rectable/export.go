package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/compression"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/formats"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/observability"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// exportJob writes one table in one format.
type exportJob struct {
	path        string
	format      formats.Format
	compression compression.Algorithm
	level       compression.Level
	options     formats.Options
}

func newExportCommand(a *app) *cobra.Command {
	var schemaPath, input, outDir, name, algorithm, level string
	var formatNames, columns []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an input file to one or more formats",
		Long: `Export loads an input file and writes it in every requested format at once,
optionally compressed. Output files are named after the table with the
format and compression suffixes, as in people.jsonl.zst.

Defaults for format, compression and level come from the configuration.

Example:
  rectable export --schema people.yaml --input people.csv --format jsonl,avro --compression zstd --out exports/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(formatNames) == 0 {
				formatNames = []string{a.cfg.Export.Format}
			}
			if !cmd.Flags().Changed("compression") {
				algorithm = a.cfg.Export.Compression
			}
			if !cmd.Flags().Changed("level") {
				level = a.cfg.Export.Level
			}
			alg, err := compression.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			lvl, err := compression.ParseLevel(level)
			if err != nil {
				return err
			}

			table, _, err := a.loadTable(cmd.Context(), schemaPath, input, 0)
			if err != nil {
				return err
			}
			if name == "" {
				name = table.Name()
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "create output directory").
					WithDetail("dir", outDir)
			}

			var jobs []exportJob
			for _, fn := range formatNames {
				f, err := formats.ParseFormat(fn)
				if err != nil {
					return err
				}
				jobs = append(jobs, exportJob{
					path:        outputPath(outDir, name, f, alg),
					format:      f,
					compression: alg,
					level:       lvl,
					options:     formats.Options{Columns: columns},
				})
			}

			if err := a.export(cmd.Context(), table, jobs); err != nil {
				return err
			}
			for _, job := range jobs {
				fmt.Fprintln(a.out, job.path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to the schema file, inferred from CSV input when empty")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the input file (required)")
	cmd.Flags().StringSliceVarP(&formatNames, "format", "f", nil, "Output formats (csv, json, jsonl, avro, text)")
	cmd.Flags().StringVar(&algorithm, "compression", "", "Compression (none, gzip, zstd, snappy, s2, lz4)")
	cmd.Flags().StringVar(&level, "level", "", "Compression level (fastest, default, better, best)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&name, "name", "", "Output file name without suffix, the table name by default")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to export, in order")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// export runs the jobs concurrently. The table is only read, so every job
// shares it.
func (a *app) export(ctx context.Context, table record.Table, jobs []exportJob) error {
	tracer := observability.NewTableTracer(a.tracing.TracerProvider(), table.Name())
	rows := table.RowCount()

	g, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			return tracer.Trace(ctx, "export."+string(job.format), rows, func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				if err := writeFile(table, job); err != nil {
					return err
				}
				if a.collector != nil {
					a.collector.ObserveExport(string(job.format), time.Since(start))
				}
				a.log.Info("table exported",
					append(observability.TraceFields(ctx),
						zap.String("table", table.Name()),
						zap.String("path", job.path),
						zap.String("format", string(job.format)),
						zap.String("compression", string(job.compression)),
						zap.Duration("duration", time.Since(start)))...)
				return nil
			})
		})
	}
	return g.Wait()
}

func writeFile(table record.Table, job exportJob) (err error) {
	f, err := os.Create(job.path)
	if err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "create output file").WithDetail("file", job.path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = commonerrors.Wrap(cerr, commonerrors.ErrorTypeFile, "close output file").WithDetail("file", job.path)
		}
	}()

	bw := bufio.NewWriter(f)
	cw, err := compression.NewWriter(bw, job.compression, job.level)
	if err != nil {
		return err
	}
	if err := formats.Write(cw, table, job.format, &job.options); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "finish compressed stream").WithDetail("file", job.path)
	}
	if err := bw.Flush(); err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "flush output file").WithDetail("file", job.path)
	}
	return nil
}
