package record

import (
	"errors"
	"reflect"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// Record is an ordered mapping from fields to values.
//
// Field order is insertion order and is stable across reads. Every lookup,
// named or positional, reports failure through its error: ErrNoSuchField for
// absent fields and ErrIndexOutOfRange for bad positions. Mutators fail with
// ErrImmutable while the record is not mutable.
type Record[K comparable] interface {
	// AddField appends field with a null value. It reports false if the
	// field already exists.
	AddField(field K) (bool, error)
	// AddFieldValue appends field with value. It reports false, leaving the
	// existing value untouched, if the field already exists.
	AddFieldValue(field K, value interface{}) (bool, error)
	// RemoveField deletes field and reports whether it was present.
	RemoveField(field K) (bool, error)
	// Clear deletes every field.
	Clear() error

	HasField(field K) bool
	Field(index int) (K, error)
	// FieldIndex returns the position of field, or -1.
	FieldIndex(field K) int
	Fields() []K
	FieldCount() int

	Value(field K) (interface{}, error)
	ValueAt(index int) (interface{}, error)
	// Lookup returns the value of field and whether the field exists.
	Lookup(field K) (interface{}, bool)
	// SetValue replaces the value of an existing field and returns the old one.
	SetValue(field K, value interface{}) (interface{}, error)
	SetValueAt(index int, value interface{}) (interface{}, error)

	Mutable() bool
	SetMutable(mutable bool) error

	RegisterComparator(typ reflect.Type, c Comparator) error
	RegisterComparatorFunc(match func(reflect.Type) bool, c Comparator) error
	UnregisterComparator(typ reflect.Type) bool
	ComparatorFor(typ reflect.Type) (Comparator, bool)
	// CompareTo orders this record against other field by field in this
	// record's order. Both records must have the same fields.
	CompareTo(other Record[K]) (int, error)

	// Iterator returns a fail-fast cursor over the live record.
	Iterator() Iterator[K]
	// Range calls fn for each field of a snapshot until fn returns false.
	Range(fn func(field K, value interface{}) bool)
	ToMap() map[K]interface{}
	Clone() Record[K]
}

// OrderedRecord is the in-memory Record implementation.
type OrderedRecord[K comparable] struct {
	fields      *fields[K]
	mutable     bool
	comparators *ComparatorRegistry
}

var _ Record[string] = (*OrderedRecord[string])(nil)

// NewRecord returns an empty mutable record.
func NewRecord[K comparable]() *OrderedRecord[K] {
	return &OrderedRecord[K]{
		fields:      newFields[K](8),
		mutable:     true,
		comparators: NewComparatorRegistry(),
	}
}

// NewRecordFrom returns a mutable record holding fields with the matching
// values in order.
func NewRecordFrom[K comparable](fields []K, values []interface{}) (*OrderedRecord[K], error) {
	if len(fields) != len(values) {
		return nil, argumentError("%d fields but %d values", len(fields), len(values))
	}
	r := NewRecord[K]()
	for i, f := range fields {
		if !r.fields.add(f, values[i]) {
			return nil, argumentError("duplicate field %v", f)
		}
	}
	return r, nil
}

// RecordOf builds a string-keyed record from alternating field names and values.
//
//	r, err := record.RecordOf("a", 1, "b", 2)
func RecordOf(pairs ...interface{}) (*OrderedRecord[string], error) {
	if len(pairs)%2 != 0 {
		return nil, argumentError("odd number of field/value arguments: %d", len(pairs))
	}
	r := NewRecord[string]()
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return nil, argumentError("field at argument %d is %T, not string", i, pairs[i])
		}
		if !r.fields.add(name, pairs[i+1]) {
			return nil, argumentError("duplicate field %q", name)
		}
	}
	return r, nil
}

// readOnlyRecord returns an immutable record over the given fields and values.
func readOnlyRecord[K comparable](fields []K, values []interface{}, comparators *ComparatorRegistry) *OrderedRecord[K] {
	if comparators == nil {
		comparators = NewComparatorRegistry()
	}
	r := &OrderedRecord[K]{
		fields:      newFields[K](len(fields)),
		comparators: comparators,
	}
	for i, f := range fields {
		r.fields.add(f, values[i])
	}
	return r
}

func (r *OrderedRecord[K]) checkMutable() error {
	if !r.mutable {
		return immutableError("record")
	}
	return nil
}

func (r *OrderedRecord[K]) AddField(field K) (bool, error) {
	return r.AddFieldValue(field, nil)
}

func (r *OrderedRecord[K]) AddFieldValue(field K, value interface{}) (bool, error) {
	if err := r.checkMutable(); err != nil {
		return false, err
	}
	return r.fields.add(field, value), nil
}

func (r *OrderedRecord[K]) RemoveField(field K) (bool, error) {
	if err := r.checkMutable(); err != nil {
		return false, err
	}
	return r.fields.remove(field), nil
}

func (r *OrderedRecord[K]) Clear() error {
	if err := r.checkMutable(); err != nil {
		return err
	}
	r.fields.clear()
	return nil
}

func (r *OrderedRecord[K]) HasField(field K) bool { return r.fields.has(field) }

func (r *OrderedRecord[K]) Field(index int) (K, error) {
	if index < 0 || index >= r.fields.len() {
		var zero K
		return zero, indexError("field", index, r.fields.len())
	}
	return r.fields.keys[index], nil
}

func (r *OrderedRecord[K]) FieldIndex(field K) int { return r.fields.index(field) }

func (r *OrderedRecord[K]) Fields() []K {
	return append([]K(nil), r.fields.keys...)
}

func (r *OrderedRecord[K]) FieldCount() int { return r.fields.len() }

func (r *OrderedRecord[K]) Value(field K) (interface{}, error) {
	v, ok := r.fields.get(field)
	if !ok {
		return nil, noSuchFieldError(field)
	}
	return v, nil
}

func (r *OrderedRecord[K]) ValueAt(index int) (interface{}, error) {
	field, err := r.Field(index)
	if err != nil {
		return nil, err
	}
	return r.fields.values[field], nil
}

func (r *OrderedRecord[K]) Lookup(field K) (interface{}, bool) {
	return r.fields.get(field)
}

func (r *OrderedRecord[K]) SetValue(field K, value interface{}) (interface{}, error) {
	if err := r.checkMutable(); err != nil {
		return nil, err
	}
	if !r.fields.has(field) {
		return nil, noSuchFieldError(field)
	}
	return r.fields.set(field, value), nil
}

func (r *OrderedRecord[K]) SetValueAt(index int, value interface{}) (interface{}, error) {
	if err := r.checkMutable(); err != nil {
		return nil, err
	}
	field, err := r.Field(index)
	if err != nil {
		return nil, err
	}
	return r.fields.set(field, value), nil
}

func (r *OrderedRecord[K]) Mutable() bool { return r.mutable }

func (r *OrderedRecord[K]) SetMutable(mutable bool) error {
	r.mutable = mutable
	return nil
}

func (r *OrderedRecord[K]) RegisterComparator(typ reflect.Type, c Comparator) error {
	return r.comparators.Register(typ, c)
}

func (r *OrderedRecord[K]) RegisterComparatorFunc(match func(reflect.Type) bool, c Comparator) error {
	return r.comparators.RegisterFunc(match, c)
}

func (r *OrderedRecord[K]) UnregisterComparator(typ reflect.Type) bool {
	return r.comparators.Unregister(typ)
}

func (r *OrderedRecord[K]) ComparatorFor(typ reflect.Type) (Comparator, bool) {
	return r.comparators.Lookup(typ)
}

func (r *OrderedRecord[K]) CompareTo(other Record[K]) (int, error) {
	return compareRecords[K](r, other, r.comparators.Lookup)
}

func (r *OrderedRecord[K]) Iterator() Iterator[K] {
	return newFieldIterator(r)
}

func (r *OrderedRecord[K]) Range(fn func(field K, value interface{}) bool) {
	keys := r.Fields()
	for _, k := range keys {
		v, ok := r.fields.get(k)
		if !ok {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

func (r *OrderedRecord[K]) ToMap() map[K]interface{} {
	m := make(map[K]interface{}, r.fields.len())
	for k, v := range r.fields.values {
		m[k] = v
	}
	return m
}

// Clone returns a deep copy of the record's structure: fields, values,
// mutability and registered comparators.
func (r *OrderedRecord[K]) Clone() Record[K] {
	return &OrderedRecord[K]{
		fields:      r.fields.clone(),
		mutable:     r.mutable,
		comparators: r.comparators.Clone(),
	}
}

// compareRecords implements CompareTo for every Record implementation.
func compareRecords[K comparable](this, other Record[K], lookup func(reflect.Type) (Comparator, bool)) (int, error) {
	if other == nil {
		return 0, argumentError("cannot compare with a nil record")
	}
	if this.FieldCount() != other.FieldCount() {
		return 0, commonerrors.Wrapf(ErrIncompatibleRecord, commonerrors.ErrorTypeState,
			"records have %d and %d fields", this.FieldCount(), other.FieldCount())
	}

	for _, field := range this.Fields() {
		a, err := this.Value(field)
		if err != nil {
			return 0, err
		}
		b, err := other.Value(field)
		if err != nil {
			if errors.Is(err, ErrNoSuchField) {
				return 0, commonerrors.Wrapf(errors.Join(ErrIncompatibleRecord, err), commonerrors.ErrorTypeState,
					"field %v is missing from the other record", field)
			}
			return 0, err
		}

		var n int
		if c, ok := lookup(typeOf(a, b)); ok {
			n = c(a, b)
		} else if n, err = Compare(a, b); err != nil {
			return 0, commonerrors.Wrapf(err, commonerrors.ErrorTypeValidation, "field %v", field)
		}
		if n != 0 {
			return n, nil
		}
	}
	return 0, nil
}
