package sqlstore

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

func openSQLite(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	s, err := Open("sqlite", "file:"+filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func eventsColumns() []*record.Column {
	return []*record.Column{
		record.MustColumn("id", record.TypeFor[int](), record.WithNullable(false), record.WithUnique()),
		record.MustColumn("name", record.TypeFor[string](), record.WithSize(20)),
		record.MustColumn("score", record.TypeFor[float64]()),
		record.MustColumn("active", record.TypeFor[bool]()),
		record.MustColumn("at", record.TypeFor[time.Time]()),
		record.MustColumn("payload", record.TypeFor[[]byte]()),
		record.MustColumn("note", record.AnyType),
	}
}

func eventsTable(t *testing.T, rows int) *record.MemoryTable {
	t.Helper()
	table, err := record.NewTable(eventsColumns(), record.WithName("events"))
	require.NoError(t, err)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		require.NoError(t, table.AppendValues(i, "event", float64(i)/2, i%2 == 0, at.Add(time.Duration(i)*time.Hour), []byte{byte(i)}, i))
	}
	require.NoError(t, table.AppendValues(rows, nil, nil, nil, nil, nil, nil))
	return table
}

func TestSaveAndLoad(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	s := openSQLite(t, WithBatchSize(2), WithTracerProvider(tp))
	ctx := context.Background()

	source := eventsTable(t, 5)
	require.NoError(t, s.Save(ctx, "events", source))

	exists, err := s.Exists(ctx, "events")
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := s.Load(ctx, "events", eventsColumns())
	require.NoError(t, err)
	require.Equal(t, source.RowCount(), loaded.RowCount())

	for r := 0; r < source.RowCount(); r++ {
		for c := 0; c < source.ColumnCount(); c++ {
			want, err := source.CellValue(r, c)
			require.NoError(t, err)
			got, err := loaded.CellValue(r, c)
			require.NoError(t, err)

			switch w := want.(type) {
			case time.Time:
				g, ok := got.(time.Time)
				require.True(t, ok, "row %d column %d", r, c)
				assert.True(t, w.Equal(g), "row %d column %d: %v != %v", r, c, w, g)
			case int:
				if c == 6 {
					assert.Equal(t, strconv.Itoa(w), got)
					continue
				}
				assert.Equal(t, w, got)
			default:
				assert.Equal(t, want, got, "row %d column %d", r, c)
			}
		}
	}

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "sqlstore.save", spans[0].Name())
	assert.Equal(t, "sqlstore.load", spans[1].Name())
}

func TestSaveReplacesRows(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "events", eventsTable(t, 5)))
	require.NoError(t, s.Save(ctx, "events", eventsTable(t, 1)))

	loaded, err := s.Load(ctx, "events", eventsColumns())
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.RowCount())
}

func TestLoadProjectsColumns(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "events", eventsTable(t, 3)))

	loaded, err := s.Load(ctx, "events", []*record.Column{
		record.MustColumn("name", record.TypeFor[string]()),
		record.MustColumn("id", record.TypeFor[int64]()),
	})
	require.NoError(t, err)
	v, err := loaded.CellValueNamed(2, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestLoadValidatesRows(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	_, err := s.DB().ExecContext(ctx, `CREATE TABLE dup (id INTEGER)`)
	require.NoError(t, err)
	_, err = s.DB().ExecContext(ctx, `INSERT INTO dup (id) VALUES (1), (1)`)
	require.NoError(t, err)

	_, err = s.Load(ctx, "dup", []*record.Column{
		record.MustColumn("id", record.TypeFor[int](), record.WithUnique()),
	})
	assert.ErrorIs(t, err, record.ErrNonUniqueColumnValue)
	var e *commonerrors.Error
	require.ErrorAs(t, err, &e)
	row, _ := e.Detail("row")
	assert.Equal(t, 2, row)
}

func TestLoadUsesFactory(t *testing.T) {
	s := openSQLite(t, WithFactory(record.NewSynchronizedFactory(record.NewDefaultFactory())))
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "events", eventsTable(t, 1)))

	loaded, err := s.Load(ctx, "events", eventsColumns())
	require.NoError(t, err)
	_, ok := loaded.(*record.SynchronizedTable)
	assert.True(t, ok)
}

func TestDropAndErrors(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTable(ctx, "events", eventsColumns()))
	require.NoError(t, s.Drop(ctx, "events"))
	exists, err := s.Exists(ctx, "events")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Load(ctx, "missing", eventsColumns())
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeQuery))

	err = s.CreateTable(ctx, "empty", nil)
	assert.ErrorIs(t, err, record.ErrInvalidArgument)

	_, err = Open("oracle", "")
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeConfig))
}

func TestCreateStatement(t *testing.T) {
	columns := []*record.Column{
		record.MustColumn("id", record.TypeFor[int](), record.WithNullable(false), record.WithUnique()),
		record.MustColumn(`we"ird`, record.TypeFor[string](), record.WithSize(12)),
		record.MustColumn("code", record.TypeFor[string](), record.WithUnique()),
	}

	tests := []struct {
		dialect string
		want    string
	}{
		{"sqlite", `CREATE TABLE IF NOT EXISTS "t" ("id" INTEGER NOT NULL UNIQUE, "we""ird" TEXT, "code" TEXT UNIQUE)`},
		{"postgres", `CREATE TABLE IF NOT EXISTS "t" ("id" BIGINT NOT NULL UNIQUE, "we""ird" VARCHAR(12), "code" TEXT UNIQUE)`},
		{"mysql", "CREATE TABLE IF NOT EXISTS `t` (`id` BIGINT NOT NULL UNIQUE, `we\"ird` VARCHAR(12), `code` VARCHAR(255) UNIQUE)"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			d, err := DialectFor(tt.dialect)
			require.NoError(t, err)
			s := New(nil, d)
			assert.Equal(t, tt.want, s.createStatement("t", columns))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	pg, _ := DialectFor("postgres")
	my, _ := DialectFor("mysql")
	assert.Equal(t, "$3", pg.Placeholder(3))
	assert.Equal(t, "?", my.Placeholder(3))
	assert.Equal(t, "pgx", pg.DriverName())
}
