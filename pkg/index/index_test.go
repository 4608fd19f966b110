package index

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

func scoresTable(t *testing.T, opts ...record.ColumnOption) *record.MemoryTable {
	t.Helper()
	table, err := record.NewTable([]*record.Column{
		record.MustColumn("name", record.TypeFor[string](), opts...),
		record.MustColumn("score", record.TypeFor[int]()),
	}, record.WithName("scores"))
	require.NoError(t, err)

	rows := [][]interface{}{
		{"carol", 30},
		{"alice", 10},
		{nil, 20},
		{"bob", 10},
		{"alice", 40},
	}
	for _, row := range rows {
		require.NoError(t, table.AppendValues(row...))
	}
	return table
}

func TestBuild(t *testing.T) {
	idx, err := Build(scoresTable(t), "score", nil)
	require.NoError(t, err)

	assert.Equal(t, "score", idx.Column())
	assert.Equal(t, 5, idx.Len())
	assert.Empty(t, idx.Nulls())

	var order []int
	idx.Ascend(func(_ interface{}, row int) bool {
		order = append(order, row)
		return true
	})
	assert.Equal(t, []int{1, 3, 2, 0, 4}, order)

	v, row, ok := idx.Min()
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, row)

	v, row, ok = idx.Max()
	require.True(t, ok)
	assert.Equal(t, 40, v)
	assert.Equal(t, 4, row)
}

func TestLookup(t *testing.T) {
	idx, err := Build(scoresTable(t), "name", &Options{Degree: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, []int{2}, idx.Nulls())

	rows, err := idx.Lookup("alice")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, rows)

	rows, err = idx.Lookup("dave")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = idx.Lookup(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, rows)
}

func TestRange(t *testing.T) {
	idx, err := Build(scoresTable(t), "score", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		lo, hi interface{}
		want   []int
	}{
		{"closed", 10, 30, []int{1, 3, 2}},
		{"open low", nil, 20, []int{1, 3}},
		{"open high", 30, nil, []int{0, 4}},
		{"all", nil, nil, []int{1, 3, 2, 0, 4}},
		{"empty", 11, 20, nil},
		{"mixed width", int64(20), float64(40.5), []int{2, 0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := idx.Range(tt.lo, tt.hi)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestColumnComparator(t *testing.T) {
	reverse := func(a, b interface{}) int {
		return strings.Compare(b.(string), a.(string))
	}
	idx, err := Build(scoresTable(t, record.WithColumnComparator(reverse)), "name", nil)
	require.NoError(t, err)

	var names []interface{}
	idx.Ascend(func(v interface{}, _ int) bool {
		names = append(names, v)
		return true
	})
	assert.Equal(t, []interface{}{"carol", "bob", "alice", "alice"}, names)

	rows, err := idx.Lookup("bob")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, rows)
}

func TestRegisteredComparator(t *testing.T) {
	table := scoresTable(t)
	require.NoError(t, table.RegisterComparator(record.TypeFor[int](), func(a, b interface{}) int {
		return b.(int) - a.(int)
	}))

	idx, err := Build(table, "score", nil)
	require.NoError(t, err)

	rows, err := idx.Range(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0, 2, 1, 3}, rows)
}

func TestAscendStops(t *testing.T) {
	idx, err := Build(scoresTable(t), "score", nil)
	require.NoError(t, err)

	count := 0
	idx.Ascend(func(interface{}, int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestSnapshot(t *testing.T) {
	table := scoresTable(t)
	idx, err := Build(table, "score", nil)
	require.NoError(t, err)

	require.NoError(t, table.AppendValues("dave", 10))
	rows, err := idx.Lookup(10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, rows)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(scoresTable(t), "missing", nil)
	require.Error(t, err)
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeNotFound))

	mixed, err := record.NewTable([]*record.Column{record.MustColumn("v", record.AnyType)})
	require.NoError(t, err)
	require.NoError(t, mixed.AppendValues(1))
	require.NoError(t, mixed.AppendValues("one"))

	_, err = Build(mixed, "v", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, record.ErrNotComparable))
	var e *commonerrors.Error
	require.True(t, errors.As(err, &e))
	row, ok := e.Detail("row")
	require.True(t, ok)
	assert.Equal(t, 1, row)
}

func TestLookupNotComparable(t *testing.T) {
	idx, err := Build(scoresTable(t), "score", nil)
	require.NoError(t, err)

	_, err = idx.Lookup("ten")
	require.Error(t, err)
	assert.True(t, errors.Is(err, record.ErrNotComparable))
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeArgument))

	rows, err := idx.Lookup(10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, rows)
}
