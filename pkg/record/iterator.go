package record

import (
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// Iterator walks the fields of a record in order.
//
//	it := r.Iterator()
//	for it.Next() {
//	    fmt.Println(it.Field(), it.Value())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
//
// Iterators are fail-fast: a structural change made to the record other than
// through Remove stops the iteration and Err reports ErrConcurrentModification.
type Iterator[K comparable] interface {
	// Next advances to the next field and reports whether there is one.
	Next() bool
	// Field returns the current field.
	Field() K
	// Value returns the value of the current field.
	Value() interface{}
	// Remove deletes the current field from the record.
	Remove() error
	// Err returns the error that stopped the iteration, if any.
	Err() error
}

type fieldIterator[K comparable] struct {
	record   *OrderedRecord[K]
	next     int
	current  int
	expected uint64
	field    K
	value    interface{}
	err      error
}

func newFieldIterator[K comparable](r *OrderedRecord[K]) *fieldIterator[K] {
	return &fieldIterator[K]{
		record:   r,
		current:  -1,
		expected: r.fields.mods,
	}
}

func (it *fieldIterator[K]) checkModification() bool {
	if it.record.fields.mods != it.expected {
		it.err = commonerrors.Wrap(ErrConcurrentModification, commonerrors.ErrorTypeConcurrentModification,
			"record changed structurally during iteration")
		return false
	}
	return true
}

func (it *fieldIterator[K]) Next() bool {
	if it.err != nil || !it.checkModification() {
		return false
	}
	f := it.record.fields
	if it.next >= f.len() {
		it.current = -1
		return false
	}
	it.current = it.next
	it.field = f.keys[it.current]
	it.value = f.values[it.field]
	it.next++
	return true
}

func (it *fieldIterator[K]) Field() K { return it.field }

func (it *fieldIterator[K]) Value() interface{} { return it.value }

func (it *fieldIterator[K]) Remove() error {
	if it.err != nil {
		return it.err
	}
	if it.current < 0 {
		return commonerrors.Wrap(ErrIllegalState, commonerrors.ErrorTypeState,
			"Remove called without a current field")
	}
	if !it.checkModification() {
		return it.err
	}
	if !it.record.mutable {
		return immutableError("record")
	}
	it.record.fields.removeAt(it.current)
	it.next = it.current
	it.current = -1
	it.expected = it.record.fields.mods
	return nil
}

func (it *fieldIterator[K]) Err() error { return it.err }
