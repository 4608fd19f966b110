// Package observability provides tracing for table operations.
//
// A Provider wraps an OpenTelemetry tracer provider exporting to stdout.
// TableTracer starts spans carrying the table name and records the outcome
// of each traced operation:
//
//	provider, err := observability.NewProvider(observability.TracingConfig{Enabled: true, SampleRate: 1})
//	tracer := observability.NewTableTracer(provider.TracerProvider(), "people")
//	err = tracer.Trace(ctx, "export", table.RowCount(), func(ctx context.Context) error { ... })
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InstrumentationName names the tracer used by this module.
const InstrumentationName = "github.com/codeprimate-software-archive/cp-common-sub005"

// Span is a tracing span that batches its attributes until End.
type Span struct {
	span       trace.Span
	startTime  time.Time
	attributes []attribute.KeyValue
}

// StartSpan starts a span on tracer.
func StartSpan(ctx context.Context, tracer trace.Tracer, operationName string) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, operationName)
	return ctx, &Span{span: span, startTime: time.Now()}
}

// SetAttribute adds an attribute to the span
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// AddEvent adds an event to the span
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Finish records err as the span status. A nil err marks the span ok.
func (s *Span) Finish(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// Duration returns the time since the span started.
func (s *Span) Duration() time.Duration {
	return time.Since(s.startTime)
}

// End flushes the batched attributes and ends the span.
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}

// TableTracer starts spans for operations on one table.
type TableTracer struct {
	table  string
	tracer trace.Tracer
}

// NewTableTracer creates a tracer for the named table.
func NewTableTracer(tp trace.TracerProvider, table string) *TableTracer {
	return &TableTracer{
		table:  table,
		tracer: tp.Tracer(InstrumentationName),
	}
}

// StartSpan starts a span named "table.<operation>".
func (tt *TableTracer) StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, span := StartSpan(ctx, tt.tracer, "table."+operation)
	span.SetAttribute("table.name", tt.table)
	span.SetAttribute("table.operation", operation)
	return ctx, span
}

// Trace runs fn inside a span, recording the row count and the outcome.
func (tt *TableTracer) Trace(ctx context.Context, operation string, rows int, fn func(ctx context.Context) error) error {
	ctx, span := tt.StartSpan(ctx, operation)
	defer span.End()

	span.SetAttribute("table.rows", rows)
	err := fn(ctx)
	span.Finish(err)
	return err
}

// TraceFields returns logger fields identifying the span in ctx, or nil when
// ctx carries no valid span.
func TraceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
