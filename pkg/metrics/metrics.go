// Package metrics exports Prometheus metrics for record tables.
//
// A Collector implements record.Observer, so attaching it to a table with
// record.WithObserver counts every row, column and cell change and every
// rejected write by constraint.
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector("cpcommon", reg)
//	table, err := record.NewTable(columns, record.WithName("people"), record.WithObserver(collector))
//
// Each collector registers its metrics with the Registerer it is given, so
// tests and embedded uses can keep them off the default registry.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/pool"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// Collector records table activity as Prometheus metrics.
type Collector struct {
	cellWrites     *prometheus.CounterVec   // Cells written, by table and column
	rowsAdded      *prometheus.CounterVec   // Rows added, by table
	rowsRemoved    *prometheus.CounterVec   // Rows removed, by table
	columnChanges  *prometheus.CounterVec   // Columns added or removed, by table
	violations     *prometheus.CounterVec   // Rejected writes, by table, column and constraint
	rows           *prometheus.GaugeVec     // Current row count, by table
	exportDuration *prometheus.HistogramVec // Export latency, by format
	valuesInUse    prometheus.GaugeFunc     // Pooled value slices checked out
	valuesHits     prometheus.CounterFunc   // Value slices reused from the pool
	startTime      time.Time
}

var _ record.Observer = (*Collector)(nil)

// NewCollector creates a collector registering its metrics with reg under
// namespace. A nil reg uses the default Prometheus registerer.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		cellWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "table",
				Name:      "cell_writes_total",
				Help:      "Total number of cells written",
			},
			[]string{"table", "column"},
		),
		rowsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "table",
				Name:      "rows_added_total",
				Help:      "Total number of rows added",
			},
			[]string{"table"},
		),
		rowsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "table",
				Name:      "rows_removed_total",
				Help:      "Total number of rows removed",
			},
			[]string{"table"},
		),
		columnChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "table",
				Name:      "column_changes_total",
				Help:      "Total number of columns added or removed",
			},
			[]string{"table", "change"},
		),
		violations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "table",
				Name:      "constraint_violations_total",
				Help:      "Total number of writes rejected by column constraints",
			},
			[]string{"table", "column", "constraint"},
		),
		rows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "table",
				Name:      "rows",
				Help:      "Current number of rows",
			},
			[]string{"table"},
		),
		exportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "duration_seconds",
				Help:      "Table export latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to ~16s
			},
			[]string{"format"},
		),
		valuesInUse: factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "values_pool",
				Name:      "in_use",
				Help:      "Value slices currently checked out of the pool",
			},
			func() float64 {
				_, inUse, _ := pool.ValuesStats()
				return float64(inUse)
			},
		),
		valuesHits: factory.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "values_pool",
				Name:      "hits_total",
				Help:      "Value slices reused from the pool instead of allocated",
			},
			func() float64 {
				_, _, hits := pool.ValuesStats()
				return float64(hits)
			},
		),
		startTime: time.Now(),
	}
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

func (c *Collector) CellWritten(table string, column *record.Column) {
	c.cellWrites.WithLabelValues(table, column.Name()).Inc()
}

func (c *Collector) RowAdded(table string, _ int) {
	c.rowsAdded.WithLabelValues(table).Inc()
	c.rows.WithLabelValues(table).Inc()
}

func (c *Collector) RowRemoved(table string, _ int) {
	c.rowsRemoved.WithLabelValues(table).Inc()
	c.rows.WithLabelValues(table).Dec()
}

func (c *Collector) ColumnAdded(table string, _ *record.Column) {
	c.columnChanges.WithLabelValues(table, "added").Inc()
}

func (c *Collector) ColumnRemoved(table string, _ *record.Column) {
	c.columnChanges.WithLabelValues(table, "removed").Inc()
}

func (c *Collector) ConstraintViolated(table string, column *record.Column, err error) {
	name := ""
	if column != nil {
		name = column.Name()
	}
	c.violations.WithLabelValues(table, name, Constraint(err)).Inc()
}

// SetRows sets the row gauge of a table, for tables populated before the
// collector was attached.
func (c *Collector) SetRows(table string, rows int) {
	c.rows.WithLabelValues(table).Set(float64(rows))
}

// ObserveExport records the duration of one export.
func (c *Collector) ObserveExport(format string, d time.Duration) {
	c.exportDuration.WithLabelValues(format).Observe(d.Seconds())
}

// Constraint names the constraint a write error violated: type, size,
// unique, null, or other.
func Constraint(err error) string {
	switch {
	case errors.Is(err, record.ErrInvalidColumnValueType):
		return "type"
	case errors.Is(err, record.ErrInvalidColumnValueSize):
		return "size"
	case errors.Is(err, record.ErrNonUniqueColumnValue):
		return "unique"
	case errors.Is(err, record.ErrNullColumnValue):
		return "null"
	}
	return "other"
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
