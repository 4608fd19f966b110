package record

import (
	"reflect"
	"sync"
)

// SynchronizedRecord serializes every call to the wrapped record under one
// lock. The wrapped record must only be reached through the wrapper.
//
// Iterators are not guarded; iterate inside Do.
type SynchronizedRecord[K comparable] struct {
	mu     sync.Locker
	record Record[K]
}

var _ Record[string] = (*SynchronizedRecord[string])(nil)

// Synchronized wraps r with its own mutex.
func Synchronized[K comparable](r Record[K]) *SynchronizedRecord[K] {
	return SynchronizedWith(r, &sync.Mutex{})
}

// SynchronizedWith wraps r guarded by mu, so several wrappers can share a lock.
func SynchronizedWith[K comparable](r Record[K], mu sync.Locker) *SynchronizedRecord[K] {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &SynchronizedRecord[K]{mu: mu, record: r}
}

// Do runs fn with exclusive access to the wrapped record.
func (s *SynchronizedRecord[K]) Do(fn func(r Record[K]) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.record)
}

func (s *SynchronizedRecord[K]) AddField(field K) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.AddField(field)
}

func (s *SynchronizedRecord[K]) AddFieldValue(field K, value interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.AddFieldValue(field, value)
}

func (s *SynchronizedRecord[K]) RemoveField(field K) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.RemoveField(field)
}

func (s *SynchronizedRecord[K]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clear()
}

func (s *SynchronizedRecord[K]) HasField(field K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.HasField(field)
}

func (s *SynchronizedRecord[K]) Field(index int) (K, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Field(index)
}

func (s *SynchronizedRecord[K]) FieldIndex(field K) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.FieldIndex(field)
}

func (s *SynchronizedRecord[K]) Fields() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Fields()
}

func (s *SynchronizedRecord[K]) FieldCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.FieldCount()
}

func (s *SynchronizedRecord[K]) Value(field K) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Value(field)
}

func (s *SynchronizedRecord[K]) ValueAt(index int) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.ValueAt(index)
}

func (s *SynchronizedRecord[K]) Lookup(field K) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Lookup(field)
}

func (s *SynchronizedRecord[K]) SetValue(field K, value interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.SetValue(field, value)
}

func (s *SynchronizedRecord[K]) SetValueAt(index int, value interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.SetValueAt(index, value)
}

func (s *SynchronizedRecord[K]) Mutable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Mutable()
}

func (s *SynchronizedRecord[K]) SetMutable(mutable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.SetMutable(mutable)
}

func (s *SynchronizedRecord[K]) RegisterComparator(typ reflect.Type, c Comparator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.RegisterComparator(typ, c)
}

func (s *SynchronizedRecord[K]) RegisterComparatorFunc(match func(reflect.Type) bool, c Comparator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.RegisterComparatorFunc(match, c)
}

func (s *SynchronizedRecord[K]) UnregisterComparator(typ reflect.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.UnregisterComparator(typ)
}

func (s *SynchronizedRecord[K]) ComparatorFor(typ reflect.Type) (Comparator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.ComparatorFor(typ)
}

// CompareTo compares under the lock. A wrapper sharing this lock is
// unwrapped first. A wrapper with its own lock is snapshotted before this
// lock is taken, so the two locks are never held together.
func (s *SynchronizedRecord[K]) CompareTo(other Record[K]) (int, error) {
	if o, ok := other.(*SynchronizedRecord[K]); ok {
		if o.mu == s.mu {
			other = o.record
		} else {
			_ = o.Do(func(r Record[K]) error {
				other = r.Clone()
				return nil
			})
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.CompareTo(other)
}

func (s *SynchronizedRecord[K]) Iterator() Iterator[K] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Iterator()
}

func (s *SynchronizedRecord[K]) Range(fn func(field K, value interface{}) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Range(fn)
}

func (s *SynchronizedRecord[K]) ToMap() map[K]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.ToMap()
}

// Clone returns a synchronized copy with its own lock.
func (s *SynchronizedRecord[K]) Clone() Record[K] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Synchronized(s.record.Clone())
}

// SynchronizedTable serializes every call to the wrapped table under one lock.
type SynchronizedTable struct {
	mu    sync.Locker
	table Table
}

var _ Table = (*SynchronizedTable)(nil)

// NewSynchronizedTable wraps t with its own mutex.
func NewSynchronizedTable(t Table) *SynchronizedTable {
	return NewSynchronizedTableWith(t, &sync.Mutex{})
}

// NewSynchronizedTableWith wraps t guarded by mu.
func NewSynchronizedTableWith(t Table, mu sync.Locker) *SynchronizedTable {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &SynchronizedTable{mu: mu, table: t}
}

// Do runs fn with exclusive access to the wrapped table.
func (s *SynchronizedTable) Do(fn func(t Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.table)
}

func (s *SynchronizedTable) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Name()
}

func (s *SynchronizedTable) Columns() []*Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Columns()
}

func (s *SynchronizedTable) Column(index int) (*Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Column(index)
}

func (s *SynchronizedTable) ColumnNamed(name string) (*Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ColumnNamed(name)
}

func (s *SynchronizedTable) ColumnIndex(column *Column) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ColumnIndex(column)
}

func (s *SynchronizedTable) ColumnIndexNamed(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ColumnIndexNamed(name)
}

func (s *SynchronizedTable) ColumnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ColumnCount()
}

func (s *SynchronizedTable) AddColumn(column *Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.AddColumn(column)
}

func (s *SynchronizedTable) InsertColumn(column *Column, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.InsertColumn(column, index)
}

func (s *SynchronizedTable) RemoveColumn(index int) (*Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.RemoveColumn(index)
}

func (s *SynchronizedTable) RemoveColumnNamed(name string) (*Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.RemoveColumnNamed(name)
}

func (s *SynchronizedTable) RowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.RowCount()
}

func (s *SynchronizedTable) Row(index int) (Record[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Row(index)
}

func (s *SynchronizedTable) Rows() []Record[string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Rows()
}

func (s *SynchronizedTable) AddRow(row Record[string]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.AddRow(row)
}

func (s *SynchronizedTable) InsertRow(row Record[string], index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.InsertRow(row, index)
}

func (s *SynchronizedTable) AppendValues(values ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.AppendValues(values...)
}

func (s *SynchronizedTable) InsertValues(index int, values ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.InsertValues(index, values...)
}

func (s *SynchronizedTable) RemoveRow(index int) (Record[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.RemoveRow(index)
}

func (s *SynchronizedTable) RemoveRowRecord(row Record[string]) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.RemoveRowRecord(row)
}

func (s *SynchronizedTable) IndexOfRow(row Record[string]) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.IndexOfRow(row)
}

func (s *SynchronizedTable) FindRows(match func(row Record[string]) bool) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.FindRows(match)
}

func (s *SynchronizedTable) CellValue(row, column int) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.CellValue(row, column)
}

func (s *SynchronizedTable) CellValueNamed(row int, column string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.CellValueNamed(row, column)
}

func (s *SynchronizedTable) SetCellValue(row, column int, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.SetCellValue(row, column, value)
}

func (s *SynchronizedTable) SetCellValueNamed(row int, column string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.SetCellValueNamed(row, column, value)
}

func (s *SynchronizedTable) ToTabular(rows, columns []int) ([][]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ToTabular(rows, columns)
}

func (s *SynchronizedTable) SortRows(cmp *RecordComparator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.SortRows(cmp)
}

func (s *SynchronizedTable) RegisterComparator(typ reflect.Type, c Comparator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.RegisterComparator(typ, c)
}

func (s *SynchronizedTable) RegisterComparatorFunc(match func(reflect.Type) bool, c Comparator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.RegisterComparatorFunc(match, c)
}

func (s *SynchronizedTable) UnregisterComparator(typ reflect.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.UnregisterComparator(typ)
}

func (s *SynchronizedTable) ComparatorFor(column *Column, value interface{}) Comparator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ComparatorFor(column, value)
}

func (s *SynchronizedTable) Mutable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Mutable()
}

func (s *SynchronizedTable) SetMutable(mutable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.SetMutable(mutable)
}

// Clone returns a synchronized copy with its own lock.
func (s *SynchronizedTable) Clone() Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewSynchronizedTable(s.table.Clone())
}
