package record

import (
	"reflect"
)

// Adapter presents a string-keyed record as a column-keyed one without
// copying it. Every call translates columns to their names and delegates to
// the wrapped record.
//
// Field order is always read from the wrapped record. The adapter only keeps
// the column describing each name, so the two cannot drift apart when a
// mutation fails halfway.
type Adapter struct {
	record  Record[string]
	columns map[string]*Column
}

var _ Record[*Column] = (*Adapter)(nil)

// NewAdapter wraps r, synthesizing a read-only AnyType column per field.
func NewAdapter(r Record[string]) (*Adapter, error) {
	if r == nil {
		return nil, argumentError("record must not be nil")
	}
	a := &Adapter{
		record:  r,
		columns: make(map[string]*Column, r.FieldCount()),
	}
	for _, name := range r.Fields() {
		a.columns[name] = readOnlyColumn(name)
	}
	return a, nil
}

// NewAdapterWithColumns wraps r using the given columns. There must be one
// column per field and every column name must be a field of r.
func NewAdapterWithColumns(r Record[string], columns ...*Column) (*Adapter, error) {
	if r == nil {
		return nil, argumentError("record must not be nil")
	}
	if len(columns) != r.FieldCount() {
		return nil, argumentError("%d columns given for a record of %d fields", len(columns), r.FieldCount())
	}

	a := &Adapter{
		record:  r,
		columns: make(map[string]*Column, len(columns)),
	}
	for i, c := range columns {
		if c == nil {
			return nil, argumentError("column %d must not be nil", i)
		}
		if !r.HasField(c.Name()) {
			return nil, argumentError("column %q is not a field of the record", c.Name())
		}
		if _, dup := a.columns[c.Name()]; dup {
			return nil, argumentError("duplicate column %q", c.Name())
		}
		a.columns[c.Name()] = c
	}
	return a, nil
}

// Unwrap returns the wrapped record.
func (a *Adapter) Unwrap() Record[string] { return a.record }

// Columns returns the column of every field in field order.
func (a *Adapter) Columns() []*Column { return a.Fields() }

func (a *Adapter) column(name string) *Column {
	if c, ok := a.columns[name]; ok {
		return c
	}
	// The field was added to the wrapped record directly.
	c := readOnlyColumn(name)
	a.columns[name] = c
	return c
}

func (a *Adapter) AddField(field *Column) (bool, error) {
	return a.AddFieldValue(field, nil)
}

func (a *Adapter) AddFieldValue(field *Column, value interface{}) (bool, error) {
	if field == nil {
		return false, argumentError("column must not be nil")
	}
	changed, err := a.record.AddFieldValue(field.Name(), value)
	if changed {
		a.columns[field.Name()] = field
	}
	return changed, err
}

func (a *Adapter) RemoveField(field *Column) (bool, error) {
	if field == nil {
		return false, argumentError("column must not be nil")
	}
	removed, err := a.record.RemoveField(field.Name())
	if removed {
		delete(a.columns, field.Name())
	}
	return removed, err
}

func (a *Adapter) Clear() error {
	if err := a.record.Clear(); err != nil {
		return err
	}
	clear(a.columns)
	return nil
}

func (a *Adapter) HasField(field *Column) bool {
	return field != nil && a.record.HasField(field.Name())
}

func (a *Adapter) Field(index int) (*Column, error) {
	name, err := a.record.Field(index)
	if err != nil {
		return nil, err
	}
	return a.column(name), nil
}

func (a *Adapter) FieldIndex(field *Column) int {
	if field == nil {
		return -1
	}
	return a.record.FieldIndex(field.Name())
}

func (a *Adapter) Fields() []*Column {
	names := a.record.Fields()
	columns := make([]*Column, len(names))
	for i, name := range names {
		columns[i] = a.column(name)
	}
	return columns
}

func (a *Adapter) FieldCount() int { return a.record.FieldCount() }

func (a *Adapter) Value(field *Column) (interface{}, error) {
	if field == nil {
		return nil, noSuchFieldError(nil)
	}
	return a.record.Value(field.Name())
}

func (a *Adapter) ValueAt(index int) (interface{}, error) { return a.record.ValueAt(index) }

func (a *Adapter) Lookup(field *Column) (interface{}, bool) {
	if field == nil {
		return nil, false
	}
	return a.record.Lookup(field.Name())
}

func (a *Adapter) SetValue(field *Column, value interface{}) (interface{}, error) {
	if field == nil {
		return nil, noSuchFieldError(nil)
	}
	return a.record.SetValue(field.Name(), value)
}

func (a *Adapter) SetValueAt(index int, value interface{}) (interface{}, error) {
	return a.record.SetValueAt(index, value)
}

func (a *Adapter) Mutable() bool { return a.record.Mutable() }

func (a *Adapter) SetMutable(mutable bool) error { return a.record.SetMutable(mutable) }

func (a *Adapter) RegisterComparator(typ reflect.Type, c Comparator) error {
	return a.record.RegisterComparator(typ, c)
}

func (a *Adapter) RegisterComparatorFunc(match func(reflect.Type) bool, c Comparator) error {
	return a.record.RegisterComparatorFunc(match, c)
}

func (a *Adapter) UnregisterComparator(typ reflect.Type) bool {
	return a.record.UnregisterComparator(typ)
}

func (a *Adapter) ComparatorFor(typ reflect.Type) (Comparator, bool) {
	return a.record.ComparatorFor(typ)
}

func (a *Adapter) CompareTo(other Record[*Column]) (int, error) {
	return compareRecords[*Column](a, other, a.record.ComparatorFor)
}

func (a *Adapter) Iterator() Iterator[*Column] {
	return &adapterIterator{adapter: a, inner: a.record.Iterator()}
}

func (a *Adapter) Range(fn func(field *Column, value interface{}) bool) {
	a.record.Range(func(name string, value interface{}) bool {
		return fn(a.column(name), value)
	})
}

func (a *Adapter) ToMap() map[*Column]interface{} {
	m := make(map[*Column]interface{}, a.record.FieldCount())
	a.Range(func(c *Column, v interface{}) bool {
		m[c] = v
		return true
	})
	return m
}

func (a *Adapter) Clone() Record[*Column] {
	columns := make(map[string]*Column, len(a.columns))
	for k, v := range a.columns {
		columns[k] = v
	}
	return &Adapter{record: a.record.Clone(), columns: columns}
}

type adapterIterator struct {
	adapter *Adapter
	inner   Iterator[string]
}

func (it *adapterIterator) Next() bool { return it.inner.Next() }

func (it *adapterIterator) Field() *Column { return it.adapter.column(it.inner.Field()) }

func (it *adapterIterator) Value() interface{} { return it.inner.Value() }

func (it *adapterIterator) Remove() error {
	name := it.inner.Field()
	if err := it.inner.Remove(); err != nil {
		return err
	}
	delete(it.adapter.columns, name)
	return nil
}

func (it *adapterIterator) Err() error { return it.inner.Err() }
