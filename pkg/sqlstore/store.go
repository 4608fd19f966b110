// Package sqlstore saves record tables to SQL databases and loads them back.
//
// A Store pairs a *sql.DB with a Dialect. Tables map to SQL tables column
// by column: nullability becomes NOT NULL, uniqueness becomes UNIQUE and
// size bounds become VARCHAR lengths where the database supports them.
//
//	store, err := sqlstore.Open("sqlite", "file:people.db", sqlstore.WithLogger(logger))
//	defer store.Close()
//	err = store.Save(ctx, "people", table)
//	loaded, err := store.Load(ctx, "people", table.Columns())
//
// Loaded rows pass through the table write pipeline, so a database holding
// data the columns reject fails the load.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/observability"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/pool"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 100

// Store saves and loads tables through database/sql.
type Store struct {
	db        *sql.DB
	dialect   Dialect
	logger    *zap.Logger
	tracer    trace.Tracer
	factory   record.Factory
	batchSize int
	owned     bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracerProvider traces every statement group with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		if tp != nil {
			s.tracer = tp.Tracer(observability.InstrumentationName)
		}
	}
}

// WithFactory sets the factory loaded tables are created with.
func WithFactory(f record.Factory) Option {
	return func(s *Store) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithBatchSize sets the rows per INSERT statement.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates a store over an open database.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{
		db:        db,
		dialect:   dialect,
		logger:    zap.NewNop(),
		tracer:    noop.NewTracerProvider().Tracer(observability.InstrumentationName),
		factory:   record.NewDefaultFactory(),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("dialect", dialect.Name()))
	return s
}

// Open opens a database for the named dialect. Closing the store closes it.
func Open(dialectName, dsn string, opts ...Option) (*Store, error) {
	dialect, err := DialectFor(dialectName)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "failed to open database").
			WithDetail("dialect", dialectName)
	}
	if dialect.Name() == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	s := New(db, dialect, opts...)
	s.owned = true
	return s, nil
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect returns the store dialect.
func (s *Store) Dialect() Dialect { return s.dialect }

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *Store) builder(n int) *stringpool.SQLBuilder {
	return stringpool.NewSQLBuilder(n, s.dialect.Quote())
}

// queryError wraps a database failure.
func queryError(err error, op, table string) error {
	return commonerrors.Wrapf(err, commonerrors.ErrorTypeQuery, "%s %s failed", op, table).
		WithDetail("table", table)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Exists reports whether a table named name exists.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, s.db, name)
}

func (s *Store) exists(ctx context.Context, q execer, name string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, s.dialect.TableExistsQuery(), name).Scan(&n); err != nil {
		return false, queryError(err, "exists", name)
	}
	return n > 0, nil
}

func (s *Store) createStatement(name string, columns []*record.Column) string {
	sb := s.builder(64 + 32*len(columns))
	defer sb.Close()

	sb.WriteQuery("CREATE TABLE IF NOT EXISTS ").WriteIdentifier(name).WriteQuery(" (")
	for i, c := range columns {
		if i > 0 {
			sb.WriteQuery(", ")
		}
		sb.WriteIdentifier(c.Name()).WriteQuery(" ").WriteQuery(s.dialect.ColumnType(c))
		if !c.Nullable() {
			sb.WriteQuery(" NOT NULL")
		}
		if c.Unique() {
			sb.WriteQuery(" UNIQUE")
		}
	}
	sb.WriteQuery(")")
	return sb.String()
}

// CreateTable creates a SQL table for columns unless one already exists.
func (s *Store) CreateTable(ctx context.Context, name string, columns []*record.Column) error {
	return s.createTable(ctx, s.db, name, columns)
}

func (s *Store) createTable(ctx context.Context, q execer, name string, columns []*record.Column) error {
	if len(columns) == 0 {
		return commonerrors.Wrapf(record.ErrInvalidArgument, commonerrors.ErrorTypeArgument,
			"table %s needs at least one column", name)
	}
	stmt := s.createStatement(name, columns)
	s.logger.Debug("creating table", zap.String("table", name), zap.String("sql", stmt))
	if _, err := q.ExecContext(ctx, stmt); err != nil {
		return queryError(err, "create", name)
	}
	return nil
}

// Drop removes the SQL table if it exists.
func (s *Store) Drop(ctx context.Context, name string) error {
	sb := s.builder(32 + len(name))
	defer sb.Close()
	stmt := sb.WriteQuery("DROP TABLE IF EXISTS ").WriteIdentifier(name).String()

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return queryError(err, "drop", name)
	}
	s.logger.Info("table dropped", zap.String("table", name))
	return nil
}

// Save replaces the rows of the SQL table name with the rows of t, creating
// the SQL table first when it does not exist. Everything happens in one
// transaction.
func (s *Store) Save(ctx context.Context, name string, t record.Table) (err error) {
	ctx, span := observability.StartSpan(ctx, s.tracer, "sqlstore.save")
	span.SetAttribute("table.name", name)
	span.SetAttribute("table.rows", t.RowCount())
	span.SetAttribute("db.system", s.dialect.Name())
	defer func() {
		span.Finish(err)
		span.End()
	}()

	columns := t.Columns()
	rows, err := t.ToTabular(nil, nil)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return queryError(err, "begin", name)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback failed", zap.String("table", name), zap.Error(rbErr))
			}
		}
	}()

	if err = s.createTable(ctx, tx, name, columns); err != nil {
		return err
	}
	if err = s.clear(ctx, tx, name); err != nil {
		return err
	}
	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err = s.insert(ctx, tx, name, columns, rows[start:end]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return queryError(err, "commit", name)
	}
	s.logger.Info("table saved",
		zap.String("table", name),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", span.Duration()))
	return nil
}

func (s *Store) clear(ctx context.Context, q execer, name string) error {
	sb := s.builder(16 + len(name))
	defer sb.Close()
	if _, err := q.ExecContext(ctx, sb.WriteQuery("DELETE FROM ").WriteIdentifier(name).String()); err != nil {
		return queryError(err, "clear", name)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, q execer, name string, columns []*record.Column, rows [][]interface{}) error {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}

	sb := s.builder(64 + len(rows)*len(columns)*4)
	defer sb.Close()
	sb.WriteQuery("INSERT INTO ").WriteIdentifier(name).
		WriteQuery(" (").WriteIdentifiers(names).WriteQuery(") VALUES ")

	args := pool.GetValues()
	defer pool.PutValues(args)
	for r, row := range rows {
		if r > 0 {
			sb.WriteQuery(", ")
		}
		sb.WriteQuery("(")
		for i, v := range row {
			if i > 0 {
				sb.WriteQuery(", ")
			}
			args.V = append(args.V, toSQL(columns[i], v))
			sb.WriteQuery(s.dialect.Placeholder(len(args.V)))
		}
		sb.WriteQuery(")")
	}

	if _, err := q.ExecContext(ctx, sb.String(), args.V...); err != nil {
		return queryError(err, "insert into", name)
	}
	return nil
}

// Load reads the SQL table name into a new table with the given columns,
// selecting them by name. The table is created by the store factory.
func (s *Store) Load(ctx context.Context, name string, columns []*record.Column) (_ record.Table, err error) {
	ctx, span := observability.StartSpan(ctx, s.tracer, "sqlstore.load")
	span.SetAttribute("table.name", name)
	span.SetAttribute("db.system", s.dialect.Name())
	defer func() {
		span.Finish(err)
		span.End()
	}()

	t, err := s.factory.NewTable(columns...)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}
	sb := s.builder(32 + 16*len(columns))
	stmt := sb.WriteQuery("SELECT ").WriteIdentifiers(names).WriteQuery(" FROM ").WriteIdentifier(name).String()
	sb.Close()

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, queryError(err, "select from", name)
	}
	defer rows.Close()

	raw := make([]interface{}, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	n := 0
	for rows.Next() {
		if err = rows.Scan(dest...); err != nil {
			return nil, queryError(err, "scan", name)
		}
		n++
		values := make([]interface{}, len(columns))
		for i, c := range columns {
			if values[i], err = fromSQL(c, raw[i]); err != nil {
				return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeData, "row %d of %s", n, name).
					WithDetail("row", n)
			}
		}
		if err = t.AppendValues(values...); err != nil {
			return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeValidation, "row %d of %s", n, name).
				WithDetail("row", n)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, queryError(err, "select from", name)
	}

	span.SetAttribute("table.rows", n)
	s.logger.Info("table loaded", zap.String("table", name), zap.Int("rows", n))
	return t, nil
}
