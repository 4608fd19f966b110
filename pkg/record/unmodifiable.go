package record

import (
	"reflect"
)

// ReadOnlyRecord is a read-only view over a private copy of a record.
// Every mutator fails with ErrImmutable.
type ReadOnlyRecord[K comparable] struct {
	record Record[K]
}

var _ Record[string] = (*ReadOnlyRecord[string])(nil)

// Unmodifiable returns a read-only copy of r. Later changes to r are not visible.
func Unmodifiable[K comparable](r Record[K]) *ReadOnlyRecord[K] {
	c := r.Clone()
	_ = c.SetMutable(false)
	return &ReadOnlyRecord[K]{record: c}
}

func (u *ReadOnlyRecord[K]) AddField(K) (bool, error) {
	return false, immutableError("record")
}

func (u *ReadOnlyRecord[K]) AddFieldValue(K, interface{}) (bool, error) {
	return false, immutableError("record")
}

func (u *ReadOnlyRecord[K]) RemoveField(K) (bool, error) {
	return false, immutableError("record")
}

func (u *ReadOnlyRecord[K]) Clear() error { return immutableError("record") }

func (u *ReadOnlyRecord[K]) HasField(field K) bool { return u.record.HasField(field) }

func (u *ReadOnlyRecord[K]) Field(index int) (K, error) { return u.record.Field(index) }

func (u *ReadOnlyRecord[K]) FieldIndex(field K) int { return u.record.FieldIndex(field) }

func (u *ReadOnlyRecord[K]) Fields() []K { return u.record.Fields() }

func (u *ReadOnlyRecord[K]) FieldCount() int { return u.record.FieldCount() }

func (u *ReadOnlyRecord[K]) Value(field K) (interface{}, error) { return u.record.Value(field) }

func (u *ReadOnlyRecord[K]) ValueAt(index int) (interface{}, error) { return u.record.ValueAt(index) }

func (u *ReadOnlyRecord[K]) Lookup(field K) (interface{}, bool) { return u.record.Lookup(field) }

func (u *ReadOnlyRecord[K]) SetValue(K, interface{}) (interface{}, error) {
	return nil, immutableError("record")
}

func (u *ReadOnlyRecord[K]) SetValueAt(int, interface{}) (interface{}, error) {
	return nil, immutableError("record")
}

func (u *ReadOnlyRecord[K]) Mutable() bool { return false }

// SetMutable accepts false and rejects true.
func (u *ReadOnlyRecord[K]) SetMutable(mutable bool) error {
	if mutable {
		return immutableError("record")
	}
	return nil
}

func (u *ReadOnlyRecord[K]) RegisterComparator(reflect.Type, Comparator) error {
	return immutableError("record")
}

func (u *ReadOnlyRecord[K]) RegisterComparatorFunc(func(reflect.Type) bool, Comparator) error {
	return immutableError("record")
}

func (u *ReadOnlyRecord[K]) UnregisterComparator(reflect.Type) bool { return false }

func (u *ReadOnlyRecord[K]) ComparatorFor(typ reflect.Type) (Comparator, bool) {
	return u.record.ComparatorFor(typ)
}

func (u *ReadOnlyRecord[K]) CompareTo(other Record[K]) (int, error) {
	return u.record.CompareTo(other)
}

// Iterator returns a cursor whose Remove fails with ErrImmutable.
func (u *ReadOnlyRecord[K]) Iterator() Iterator[K] { return u.record.Iterator() }

func (u *ReadOnlyRecord[K]) Range(fn func(field K, value interface{}) bool) { u.record.Range(fn) }

func (u *ReadOnlyRecord[K]) ToMap() map[K]interface{} { return u.record.ToMap() }

// Clone returns another read-only view.
func (u *ReadOnlyRecord[K]) Clone() Record[K] { return Unmodifiable(u.record) }

// ReadOnlyTable is a read-only view over a private copy of a table.
// Every mutator fails with ErrImmutable.
type ReadOnlyTable struct {
	table Table
}

var _ Table = (*ReadOnlyTable)(nil)

// UnmodifiableTable returns a read-only copy of t. Columns are copied too,
// so later attribute changes to t's columns are not visible.
func UnmodifiableTable(t Table) *ReadOnlyTable {
	c := t.Clone()
	_ = c.SetMutable(false)
	return &ReadOnlyTable{table: c}
}

func (u *ReadOnlyTable) immutable() error { return immutableError("table " + u.table.Name()) }

func (u *ReadOnlyTable) Name() string { return u.table.Name() }

// Columns returns copies of the columns so attribute changes cannot reach the view.
func (u *ReadOnlyTable) Columns() []*Column {
	columns := u.table.Columns()
	for i, c := range columns {
		columns[i] = c.Clone()
	}
	return columns
}

func (u *ReadOnlyTable) Column(index int) (*Column, error) {
	c, err := u.table.Column(index)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (u *ReadOnlyTable) ColumnNamed(name string) (*Column, error) {
	c, err := u.table.ColumnNamed(name)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (u *ReadOnlyTable) ColumnIndex(column *Column) int { return u.table.ColumnIndex(column) }

func (u *ReadOnlyTable) ColumnIndexNamed(name string) int { return u.table.ColumnIndexNamed(name) }

func (u *ReadOnlyTable) ColumnCount() int { return u.table.ColumnCount() }

func (u *ReadOnlyTable) AddColumn(*Column) error { return u.immutable() }

func (u *ReadOnlyTable) InsertColumn(*Column, int) error { return u.immutable() }

func (u *ReadOnlyTable) RemoveColumn(int) (*Column, error) { return nil, u.immutable() }

func (u *ReadOnlyTable) RemoveColumnNamed(string) (*Column, error) { return nil, u.immutable() }

func (u *ReadOnlyTable) RowCount() int { return u.table.RowCount() }

func (u *ReadOnlyTable) Row(index int) (Record[string], error) { return u.table.Row(index) }

func (u *ReadOnlyTable) Rows() []Record[string] { return u.table.Rows() }

func (u *ReadOnlyTable) AddRow(Record[string]) error { return u.immutable() }

func (u *ReadOnlyTable) InsertRow(Record[string], int) error { return u.immutable() }

func (u *ReadOnlyTable) AppendValues(...interface{}) error { return u.immutable() }

func (u *ReadOnlyTable) InsertValues(int, ...interface{}) error { return u.immutable() }

func (u *ReadOnlyTable) RemoveRow(int) (Record[string], error) { return nil, u.immutable() }

func (u *ReadOnlyTable) RemoveRowRecord(Record[string]) (bool, error) { return false, u.immutable() }

func (u *ReadOnlyTable) IndexOfRow(row Record[string]) int { return u.table.IndexOfRow(row) }

func (u *ReadOnlyTable) FindRows(match func(row Record[string]) bool) []int {
	return u.table.FindRows(match)
}

func (u *ReadOnlyTable) CellValue(row, column int) (interface{}, error) {
	return u.table.CellValue(row, column)
}

func (u *ReadOnlyTable) CellValueNamed(row int, column string) (interface{}, error) {
	return u.table.CellValueNamed(row, column)
}

func (u *ReadOnlyTable) SetCellValue(int, int, interface{}) error { return u.immutable() }

func (u *ReadOnlyTable) SetCellValueNamed(int, string, interface{}) error { return u.immutable() }

func (u *ReadOnlyTable) ToTabular(rows, columns []int) ([][]interface{}, error) {
	return u.table.ToTabular(rows, columns)
}

func (u *ReadOnlyTable) SortRows(*RecordComparator) error { return u.immutable() }

func (u *ReadOnlyTable) RegisterComparator(reflect.Type, Comparator) error { return u.immutable() }

func (u *ReadOnlyTable) RegisterComparatorFunc(func(reflect.Type) bool, Comparator) error {
	return u.immutable()
}

func (u *ReadOnlyTable) UnregisterComparator(reflect.Type) bool { return false }

func (u *ReadOnlyTable) ComparatorFor(column *Column, value interface{}) Comparator {
	return u.table.ComparatorFor(column, value)
}

func (u *ReadOnlyTable) Mutable() bool { return false }

// SetMutable accepts false and rejects true.
func (u *ReadOnlyTable) SetMutable(mutable bool) error {
	if mutable {
		return u.immutable()
	}
	return nil
}

// Clone returns another read-only view.
func (u *ReadOnlyTable) Clone() Table { return UnmodifiableTable(u.table) }
