package sqlstore

import (
	"reflect"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// Dialect supplies the SQL differences between databases.
type Dialect interface {
	// Name is the configuration name of the dialect.
	Name() string
	// DriverName is the database/sql driver the dialect talks to.
	DriverName() string
	// Quote is the identifier quote character.
	Quote() byte
	// Placeholder returns the bind parameter for the 1-based position n.
	Placeholder(n int) string
	// ColumnType returns the SQL type storing values of c.
	ColumnType(c *record.Column) string
	// TableExistsQuery returns a query counting tables named by its single
	// parameter.
	TableExistsQuery() string
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// sqlKind groups column types by how they are stored.
type sqlKind int

const (
	kindText sqlKind = iota
	kindInteger
	kindReal
	kindBool
	kindTime
	kindBytes
)

func kindOf(t reflect.Type) sqlKind {
	switch {
	case t == timeType:
		return kindTime
	case t == bytesType:
		return kindBytes
	}
	switch t.Kind() {
	case reflect.Bool:
		return kindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindInteger
	case reflect.Float32, reflect.Float64:
		return kindReal
	default:
		return kindText
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string             { return "sqlite" }
func (sqliteDialect) DriverName() string       { return "sqlite" }
func (sqliteDialect) Quote() byte              { return '"' }
func (sqliteDialect) Placeholder(int) string   { return "?" }
func (sqliteDialect) TableExistsQuery() string { return "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?" }

func (sqliteDialect) ColumnType(c *record.Column) string {
	switch kindOf(c.Type()) {
	case kindInteger:
		return "INTEGER"
	case kindReal:
		return "REAL"
	case kindBool:
		return "BOOLEAN"
	case kindTime:
		return "TIMESTAMP"
	case kindBytes:
		return "BLOB"
	default:
		return "TEXT"
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string             { return "postgres" }
func (postgresDialect) DriverName() string       { return "pgx" }
func (postgresDialect) Quote() byte              { return '"' }
func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
func (postgresDialect) TableExistsQuery() string {
	return "SELECT count(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
}

func (postgresDialect) ColumnType(c *record.Column) string {
	switch kindOf(c.Type()) {
	case kindInteger:
		return "BIGINT"
	case kindReal:
		return "DOUBLE PRECISION"
	case kindBool:
		return "BOOLEAN"
	case kindTime:
		return "TIMESTAMPTZ"
	case kindBytes:
		return "BYTEA"
	default:
		if c.Size() > 0 {
			return "VARCHAR(" + strconv.Itoa(c.Size()) + ")"
		}
		return "TEXT"
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string             { return "mysql" }
func (mysqlDialect) DriverName() string       { return "mysql" }
func (mysqlDialect) Quote() byte              { return '`' }
func (mysqlDialect) Placeholder(int) string   { return "?" }
func (mysqlDialect) TableExistsQuery() string {
	return "SELECT count(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
}

func (mysqlDialect) ColumnType(c *record.Column) string {
	switch kindOf(c.Type()) {
	case kindInteger:
		return "BIGINT"
	case kindReal:
		return "DOUBLE"
	case kindBool:
		return "BOOLEAN"
	case kindTime:
		return "DATETIME(6)"
	case kindBytes:
		return "LONGBLOB"
	default:
		switch {
		case c.Size() > 0:
			return "VARCHAR(" + strconv.Itoa(c.Size()) + ")"
		case c.Unique():
			// MySQL cannot index unbounded TEXT
			return "VARCHAR(255)"
		default:
			return "TEXT"
		}
	}
}

var dialects = map[string]Dialect{
	"sqlite":   sqliteDialect{},
	"postgres": postgresDialect{},
	"mysql":    mysqlDialect{},
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	if d, ok := dialects[name]; ok {
		return d, nil
	}
	return nil, commonerrors.Newf(commonerrors.ErrorTypeConfig, "unsupported sql dialect: %s", name)
}
