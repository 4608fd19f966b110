// Package testutil provides fixtures shared by the package and command tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// Joined is the join time of the first person in the people fixture. Each
// following person joined one day later.
var Joined = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout, cancelled
// when the test completes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// PeopleColumns returns the columns of the people fixture: a unique non-null
// id, a sized name, a nullable age, an email defaulting to "unknown" and a
// join time.
func PeopleColumns() []*record.Column {
	return []*record.Column{
		record.MustColumn("id", record.TypeFor[int](), record.WithNullable(false), record.WithUnique()),
		record.MustColumn("name", record.TypeFor[string](), record.WithSize(32), record.WithDisplayName("Name")),
		record.MustColumn("age", record.TypeFor[int]()),
		record.MustColumn("email", record.TypeFor[string](), record.WithDefault("unknown")),
		record.MustColumn("joined", record.TypeFor[time.Time]()),
	}
}

// PersonValues returns the cell values of person i in column order. Every
// third person has no age.
func PersonValues(i int) []interface{} {
	var age interface{}
	if i%3 != 2 {
		age = 20 + i
	}
	return []interface{}{
		i + 1,
		fmt.Sprintf("person-%d", i+1),
		age,
		fmt.Sprintf("person%d@example.com", i+1),
		Joined.AddDate(0, 0, i),
	}
}

// PeopleTable returns a people table holding n persons.
func PeopleTable(t *testing.T, n int, opts ...record.TableOption) *record.MemoryTable {
	t.Helper()
	opts = append([]record.TableOption{record.WithName("people"), record.WithLogger(TestLogger(t))}, opts...)
	table, err := record.NewTable(PeopleColumns(), opts...)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, table.AppendValues(PersonValues(i)...))
	}
	return table
}

// WriteFile writes content to name under dir and returns the path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}
