package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterSynthesizesColumns(t *testing.T) {
	r := mustRecord(t, "a", 1, "b", "x")
	a, err := NewAdapter(r)
	require.NoError(t, err)

	columns := a.Columns()
	require.Len(t, columns, 2)
	assert.Equal(t, "a", columns[0].Name())
	assert.Equal(t, "b", columns[1].Name())
	for _, c := range columns {
		assert.True(t, c.ReadOnly())
		assert.Equal(t, AnyType, c.Type())
		assert.ErrorIs(t, c.SetSize(3), ErrUnsupportedOperation)
	}

	v, err := a.Value(columns[1])
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	// Any column with the same name addresses the field.
	v, err = a.Value(MustColumn("a", TypeFor[int]()))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestAdapterWithColumns(t *testing.T) {
	r := mustRecord(t, "a", 1, "b", 2)
	ca := MustColumn("a", TypeFor[int]())
	cb := MustColumn("b", TypeFor[int]())

	a, err := NewAdapterWithColumns(r, cb, ca)
	require.NoError(t, err)
	// Order follows the record, not the argument list.
	assert.Equal(t, []*Column{ca, cb}, a.Fields())

	_, err = NewAdapterWithColumns(r, ca)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewAdapterWithColumns(r, ca, MustColumn("z", AnyType))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewAdapterWithColumns(r, ca, ca)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewAdapterWithColumns(r, ca, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAdapterMutationsPassThrough(t *testing.T) {
	r := mustRecord(t, "a", 1)
	a, err := NewAdapter(r)
	require.NoError(t, err)

	c := MustColumn("b", TypeFor[string]())
	changed, err := a.AddFieldValue(c, "x")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, r.HasField("b"))
	f, err := a.Field(1)
	require.NoError(t, err)
	assert.Same(t, c, f)
	assert.Equal(t, 1, a.FieldIndex(c))

	old, err := a.SetValue(c, "y")
	require.NoError(t, err)
	assert.Equal(t, "x", old)
	v, _ := r.Value("b")
	assert.Equal(t, "y", v)

	removed, err := a.RemoveField(c)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, r.HasField("b"))
	assert.Equal(t, 1, a.FieldCount())
	assert.Len(t, a.Fields(), 1)

	_, err = a.AddFieldValue(nil, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = a.Value(c)
	assert.ErrorIs(t, err, ErrNoSuchField)
}

func TestAdapterStaysInStepOnFailure(t *testing.T) {
	r := mustRecord(t, "a", 1, "b", 2)
	a, err := NewAdapter(r)
	require.NoError(t, err)
	require.NoError(t, r.SetMutable(false))

	columns := a.Fields()
	removed, err := a.RemoveField(columns[0])
	assert.ErrorIs(t, err, ErrImmutable)
	assert.False(t, removed)
	assert.Equal(t, columns, a.Fields())
	assert.Equal(t, r.FieldCount(), a.FieldCount())
}

func TestAdapterRejectsNil(t *testing.T) {
	_, err := NewAdapter(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// The empty string is a legal field name and must not be touched.
	r := mustRecord(t, "", 1, "a", 2)
	a, err := NewAdapter(r)
	require.NoError(t, err)

	removed, err := a.RemoveField(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, removed)
	assert.Equal(t, []string{"", "a"}, r.Fields())
	assert.Len(t, a.Fields(), 2)
}

func TestAdapterSeesDirectChanges(t *testing.T) {
	r := mustRecord(t, "a", 1)
	a, err := NewAdapter(r)
	require.NoError(t, err)

	_, err = r.AddFieldValue("late", 2)
	require.NoError(t, err)
	fields := a.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "late", fields[1].Name())
	assert.True(t, fields[1].ReadOnly())
}

func TestAdapterIteratorAndCompare(t *testing.T) {
	r := mustRecord(t, "a", 1, "b", 2)
	a, err := NewAdapter(r)
	require.NoError(t, err)

	it := a.Iterator()
	var names []string
	for it.Next() {
		names = append(names, it.Field().Name())
		if it.Field().Name() == "a" {
			require.NoError(t, it.Remove())
		}
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, []string{"b"}, r.Fields())

	other, err := NewAdapter(mustRecord(t, "b", 3))
	require.NoError(t, err)
	n, err := a.CompareTo(other)
	require.NoError(t, err)
	assert.Negative(t, n)

	m := a.ToMap()
	assert.Len(t, m, 1)

	clone := a.Clone()
	_, err = clone.SetValueAt(0, 9)
	require.NoError(t, err)
	v, _ := r.Value("b")
	assert.Equal(t, 2, v)
}
