package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordComparatorSelfIsZero(t *testing.T) {
	r := mustRecord(t, "id", 1, "name", "Jon", "tags", []string{"a"}, "none", nil)
	columns := []*Column{
		MustColumn("id", AnyType),
		MustColumn("name", AnyType),
		MustColumn("tags", AnyType),
		MustColumn("none", AnyType),
	}
	for i := 1; i <= len(columns); i++ {
		cmp, err := NewRecordComparator(columns[:i]...)
		require.NoError(t, err)
		n, err := cmp.Compare(r, r)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

func TestRecordComparatorOrder(t *testing.T) {
	last := MustColumn("last", TypeFor[string]())
	first := MustColumn("first", TypeFor[string]())
	cmp, err := NewRecordComparator(last, first)
	require.NoError(t, err)

	a := mustRecord(t, "first", "Ann", "last", "Smith")
	b := mustRecord(t, "first", "Bob", "last", "Smith")
	c := mustRecord(t, "first", "Cid", "last", "Jones")

	n, err := cmp.Compare(a, b)
	require.NoError(t, err)
	assert.Negative(t, n)

	n, err = cmp.Compare(a, c)
	require.NoError(t, err)
	assert.Positive(t, n)

	n, err = cmp.Reversed().Compare(a, c)
	require.NoError(t, err)
	assert.Negative(t, n)

	records := []Record[string]{a, b, c}
	require.NoError(t, cmp.Sort(records))
	assert.Equal(t, []Record[string]{c, a, b}, records)
}

func TestRecordComparatorPrecedence(t *testing.T) {
	caseless := func(a, b interface{}) int {
		return strings.Compare(strings.ToLower(a.(string)), strings.ToLower(b.(string)))
	}
	name := MustColumn("name", TypeFor[string]())
	cmp, err := NewRecordComparator(name)
	require.NoError(t, err)

	a := mustRecord(t, "name", "ABC")
	b := mustRecord(t, "name", "abc")

	n, _ := cmp.Compare(a, b)
	assert.NotZero(t, n)

	require.NoError(t, cmp.RegisterComparator(TypeFor[string](), caseless))
	n, _ = cmp.Compare(a, b)
	assert.Zero(t, n)

	require.NoError(t, name.SetComparator(constant(5)))
	n, _ = cmp.Compare(a, b)
	assert.Equal(t, 5, n)
}

func TestRecordComparatorMissingColumn(t *testing.T) {
	cmp, err := NewRecordComparator(MustColumn("age", TypeFor[int]()))
	require.NoError(t, err)

	_, err = cmp.Compare(mustRecord(t, "name", "a"), mustRecord(t, "name", "b"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrNoSuchField)

	_, err = cmp.Compare(nil, mustRecord(t))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewRecordComparator(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRecordComparatorNotComparable(t *testing.T) {
	cmp, err := NewRecordComparator(MustColumn("v", AnyType))
	require.NoError(t, err)

	_, err = cmp.Compare(mustRecord(t, "v", "1"), mustRecord(t, "v", 1))
	assert.ErrorIs(t, err, ErrNotComparable)

	var sortErr error
	records := []Record[string]{mustRecord(t, "v", "1"), mustRecord(t, "v", 1)}
	f := cmp.SortFunc(&sortErr)
	f(records[0], records[1])
	assert.ErrorIs(t, sortErr, ErrNotComparable)
}
