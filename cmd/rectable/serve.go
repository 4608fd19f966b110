package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/compression"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/formats"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/metrics"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/schema"
)

var contentTypes = map[formats.Format]string{
	formats.CSV:   "text/csv; charset=utf-8",
	formats.JSON:  "application/json",
	formats.JSONL: "application/x-ndjson",
	formats.Avro:  "application/avro",
	formats.Text:  "text/plain; charset=utf-8",
}

func newServeCommand(a *app) *cobra.Command {
	var schemaPath, input, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an input file over HTTP",
		Long: `Serve loads an input file once and serves it until interrupted:

  GET /table         rows, with optional format, compression and columns parameters
  GET /table/schema  the table schema as YAML
  GET /metrics       Prometheus metrics, when metrics are enabled
  GET /healthz       liveness

Example:
  rectable serve --schema people.yaml --input people.csv --addr :8080
  curl 'localhost:8080/table?format=jsonl&compression=gzip&columns=id,name'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, def, err := a.loadTable(cmd.Context(), schemaPath, input, 0)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Metrics.Addr
			}
			if addr == "" {
				addr = ":8080"
			}
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "listen").WithDetail("addr", addr)
			}
			fmt.Fprintf(a.out, "serving %s on %s\n", table.Name(), lis.Addr())
			return a.serve(cmd.Context(), lis, a.handler(table, def))
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to the schema file, inferred from CSV input when empty")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the input file (required)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, the metrics address or :8080 by default")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// serve runs the HTTP server until ctx is done, then shuts it down.
func (a *app) serve(ctx context.Context, lis net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return commonerrors.Wrap(err, commonerrors.ErrorTypeInternal, "http server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *app) handler(table record.Table, def *schema.Definition) http.Handler {
	if def == nil {
		def = schema.FromColumns(table.Name(), table.Columns())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /table/schema", func(w http.ResponseWriter, r *http.Request) {
		data, err := schema.Marshal(def, schema.FormatYAML)
		if err != nil {
			a.httpError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(data)
	})
	mux.HandleFunc("GET /table", func(w http.ResponseWriter, r *http.Request) {
		a.serveTable(w, r, table)
	})
	if a.gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(a.gatherer))
	}
	return mux
}

func (a *app) serveTable(w http.ResponseWriter, r *http.Request, table record.Table) {
	q := r.URL.Query()
	format := formats.JSON
	if v := q.Get("format"); v != "" {
		f, err := formats.ParseFormat(v)
		if err != nil {
			a.httpError(w, err)
			return
		}
		format = f
	}
	alg, err := compression.ParseAlgorithm(q.Get("compression"))
	if err != nil {
		a.httpError(w, err)
		return
	}
	opts := &formats.Options{Pretty: q.Has("pretty"), DisplayNames: format == formats.Text}
	if v := q.Get("columns"); v != "" {
		opts.Columns = strings.Split(v, ",")
		for _, name := range opts.Columns {
			if table.ColumnIndexNamed(name) < 0 {
				a.httpError(w, commonerrors.Wrapf(record.ErrNoSuchColumn, commonerrors.ErrorTypeNotFound, "column %q", name))
				return
			}
		}
	}

	w.Header().Set("Content-Type", contentTypes[format])
	if alg != compression.None {
		w.Header().Set("Content-Encoding", string(alg))
	}

	start := time.Now()
	cw, err := compression.NewWriter(w, alg, compression.Default)
	if err != nil {
		a.httpError(w, err)
		return
	}
	err = formats.Write(cw, table, format, opts)
	if cerr := cw.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Headers are gone once rows were written.
		a.log.Error("failed to serve table", zap.String("table", table.Name()), zap.Error(err))
		return
	}
	if a.collector != nil {
		a.collector.ObserveExport(string(format), time.Since(start))
	}
}

func (a *app) httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch commonerrors.TypeOf(err) {
	case commonerrors.ErrorTypeArgument, commonerrors.ErrorTypeConfig, commonerrors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case commonerrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	}
	a.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	http.Error(w, err.Error(), status)
}
