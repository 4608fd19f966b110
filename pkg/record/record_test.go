package record

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAddFieldValue(t *testing.T) {
	r := NewRecord[string]()

	changed, err := r.AddFieldValue("a", 1)
	require.NoError(t, err)
	assert.True(t, changed)

	v, err := r.Value("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	changed, err = r.AddFieldValue("a", 2)
	require.NoError(t, err)
	assert.False(t, changed)
	v, _ = r.Value("a")
	assert.Equal(t, 1, v)

	changed, err = r.AddField("b")
	require.NoError(t, err)
	assert.True(t, changed)
	v, err = r.Value("b")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRecordImmutable(t *testing.T) {
	r, err := RecordOf("a", 1)
	require.NoError(t, err)
	require.NoError(t, r.SetMutable(false))

	_, err = r.AddFieldValue("b", 2)
	assert.ErrorIs(t, err, ErrImmutable)
	_, err = r.SetValue("a", 5)
	assert.ErrorIs(t, err, ErrImmutable)
	_, err = r.SetValueAt(0, 5)
	assert.ErrorIs(t, err, ErrImmutable)
	_, err = r.RemoveField("a")
	assert.ErrorIs(t, err, ErrImmutable)
	assert.ErrorIs(t, r.Clear(), ErrImmutable)

	assert.Equal(t, []string{"a"}, r.Fields())
	v, _ := r.Value("a")
	assert.Equal(t, 1, v)
}

func TestRecordLookupsUniformErrors(t *testing.T) {
	r, err := RecordOf("a", 1, "b", 2)
	require.NoError(t, err)

	_, err = r.Value("missing")
	assert.ErrorIs(t, err, ErrNoSuchField)

	_, err = r.ValueAt(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = r.ValueAt(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = r.Field(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = r.SetValue("missing", 1)
	assert.ErrorIs(t, err, ErrNoSuchField)
	assert.False(t, r.HasField("missing"))

	_, ok := r.Lookup("missing")
	assert.False(t, ok)
	v, ok := r.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestRecordOrderAndPositions(t *testing.T) {
	r, err := RecordOf("c", 3, "a", 1, "b", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, r.Fields())
	assert.Equal(t, 3, r.FieldCount())
	assert.Equal(t, 1, r.FieldIndex("a"))
	assert.Equal(t, -1, r.FieldIndex("z"))

	f, err := r.Field(2)
	require.NoError(t, err)
	assert.Equal(t, "b", f)

	old, err := r.SetValueAt(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, old)
	v, _ := r.ValueAt(1)
	assert.Equal(t, 10, v)

	removed, err := r.RemoveField("c")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"a", "b"}, r.Fields())

	removed, err = r.RemoveField("c")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, r.Clear())
	assert.Zero(t, r.FieldCount())
}

func TestNewRecordFrom(t *testing.T) {
	r, err := NewRecordFrom([]int{1, 2}, []interface{}{"x", "y"})
	require.NoError(t, err)
	v, _ := r.Value(2)
	assert.Equal(t, "y", v)

	_, err = NewRecordFrom([]int{1}, []interface{}{"x", "y"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewRecordFrom([]int{1, 1}, []interface{}{"x", "y"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RecordOf("a")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = RecordOf(1, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRecordIteratorConcurrentModification(t *testing.T) {
	r, err := RecordOf("a", 1, "b", 2)
	require.NoError(t, err)
	_, err = r.AddFieldValue("c", 3)
	require.NoError(t, err)

	it := r.Iterator()
	require.True(t, it.Next())
	assert.Equal(t, "a", it.Field())
	assert.Equal(t, 1, it.Value())

	_, err = r.RemoveField("a")
	require.NoError(t, err)

	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), ErrConcurrentModification)
	assert.ErrorIs(t, it.Remove(), ErrConcurrentModification)
}

func TestRecordIteratorValueChangeIsNotStructural(t *testing.T) {
	r, err := RecordOf("a", 1, "b", 2)
	require.NoError(t, err)

	it := r.Iterator()
	require.True(t, it.Next())
	_, err = r.SetValue("b", 20)
	require.NoError(t, err)

	require.True(t, it.Next())
	assert.Equal(t, 20, it.Value())
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

func TestRecordIteratorRemove(t *testing.T) {
	r, err := RecordOf("a", 1, "b", 2, "c", 3)
	require.NoError(t, err)

	it := r.Iterator()
	assert.ErrorIs(t, it.Remove(), ErrIllegalState)

	var seen []string
	for it.Next() {
		seen = append(seen, it.Field())
		if it.Field() == "b" {
			require.NoError(t, it.Remove())
			assert.ErrorIs(t, it.Remove(), ErrIllegalState)
		}
	}
	require.NoError(t, it.Err())

	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.Equal(t, []string{"a", "c"}, r.Fields())
}

func TestRecordIteratorRemoveImmutable(t *testing.T) {
	r, err := RecordOf("a", 1)
	require.NoError(t, err)
	require.NoError(t, r.SetMutable(false))

	it := r.Iterator()
	require.True(t, it.Next())
	assert.ErrorIs(t, it.Remove(), ErrImmutable)
	assert.Equal(t, 1, r.FieldCount())
}

func TestRecordRangeAndToMap(t *testing.T) {
	r, err := RecordOf("a", 1, "b", 2, "c", 3)
	require.NoError(t, err)

	var fields []string
	r.Range(func(f string, v interface{}) bool {
		fields = append(fields, f)
		// Range walks a snapshot, so removing fields is allowed.
		_, _ = r.RemoveField("c")
		return f != "b"
	})
	assert.Equal(t, []string{"a", "b"}, fields)

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, r.ToMap())
}

func TestRecordClone(t *testing.T) {
	r, err := RecordOf("a", 1)
	require.NoError(t, err)
	require.NoError(t, r.RegisterComparator(TypeFor[int](), constant(7)))

	c := r.Clone()
	_, err = c.SetValue("a", 2)
	require.NoError(t, err)
	_, err = c.AddFieldValue("b", 3)
	require.NoError(t, err)

	v, _ := r.Value("a")
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, r.FieldCount())

	cmp, ok := c.ComparatorFor(TypeFor[int]())
	require.True(t, ok)
	assert.Equal(t, 7, cmp(nil, nil))

	assert.True(t, c.UnregisterComparator(TypeFor[int]()))
	_, ok = r.ComparatorFor(TypeFor[int]())
	assert.True(t, ok)
}

func TestRecordCompareTo(t *testing.T) {
	a, _ := RecordOf("x", 1, "y", "b")
	b, _ := RecordOf("x", 1, "y", "a")

	n, err := a.CompareTo(b)
	require.NoError(t, err)
	assert.Equal(t, 1, sign(n))

	n, err = a.CompareTo(a)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Fields are compared in the receiver's order.
	c, _ := RecordOf("y", "a", "x", 2)
	n, err = a.CompareTo(c)
	require.NoError(t, err)
	assert.Equal(t, -1, sign(n))
}

func TestRecordCompareToRegisteredComparator(t *testing.T) {
	a, _ := RecordOf("name", "ALICE")
	b, _ := RecordOf("name", "alice")

	n, err := a.CompareTo(b)
	require.NoError(t, err)
	assert.NotZero(t, n)

	require.NoError(t, a.RegisterComparator(TypeFor[string](), func(x, y interface{}) int {
		return strings.Compare(strings.ToLower(x.(string)), strings.ToLower(y.(string)))
	}))
	n, err = a.CompareTo(b)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordCompareToIncompatible(t *testing.T) {
	a, _ := RecordOf("x", 1, "y", 2)
	b, _ := RecordOf("x", 1)
	c, _ := RecordOf("x", 1, "z", 2)

	_, err := a.CompareTo(b)
	assert.ErrorIs(t, err, ErrIncompatibleRecord)

	_, err = a.CompareTo(c)
	assert.ErrorIs(t, err, ErrIncompatibleRecord)
	assert.ErrorIs(t, err, ErrNoSuchField)

	_, err = a.CompareTo(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	d, _ := RecordOf("x", []int{1})
	e, _ := RecordOf("x", []int{2})
	_, err = d.CompareTo(e)
	assert.ErrorIs(t, err, ErrNotComparable)
}

func TestTypedAccessors(t *testing.T) {
	now := time.Now()
	r, err := RecordOf(
		"s", "text",
		"i", int32(7),
		"u", uint8(9),
		"f", float32(1.5),
		"b", true,
		"t", now,
		"raw", []byte("xy"),
		"null", nil,
	)
	require.NoError(t, err)

	s, err := String[string](r, "s")
	require.NoError(t, err)
	assert.Equal(t, "text", s)

	i, err := Int[string](r, "i")
	require.NoError(t, err)
	assert.Equal(t, int64(7), i)

	i, err = Int[string](r, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(9), i)

	f, err := Float[string](r, "i")
	require.NoError(t, err)
	assert.Equal(t, 7.0, f)
	f, err = Float[string](r, "f")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	b, err := Bool[string](r, "b")
	require.NoError(t, err)
	assert.True(t, b)

	tm, err := Time[string](r, "t")
	require.NoError(t, err)
	assert.True(t, now.Equal(tm))

	raw, err := Bytes[string](r, "raw")
	require.NoError(t, err)
	assert.Equal(t, []byte("xy"), raw)

	s, err = String[string](r, "null")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = Int[string](r, "s")
	assert.ErrorIs(t, err, ErrInvalidColumnValueType)
	_, err = String[string](r, "i")
	assert.ErrorIs(t, err, ErrInvalidColumnValueType)
	_, err = String[string](r, "missing")
	assert.ErrorIs(t, err, ErrNoSuchField)

	v, err := ValueAs[int32, string](r, "i")
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)
}

func TestRecordComparatorRegistryOnRecord(t *testing.T) {
	r := NewRecord[string]()
	require.NoError(t, r.RegisterComparatorFunc(func(t reflect.Type) bool {
		return t.Kind() == reflect.Map
	}, constant(0)))

	_, ok := r.ComparatorFor(TypeFor[map[string]int]())
	assert.True(t, ok)
	_, ok = r.ComparatorFor(TypeFor[int]())
	assert.False(t, ok)
}
