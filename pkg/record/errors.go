package record

import (
	"errors"
	"fmt"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

var (
	// ErrInvalidArgument is returned for nil or malformed arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoSuchField is returned by named lookups of an absent record field.
	ErrNoSuchField = errors.New("no such field")
	// ErrNoSuchColumn is returned by named lookups of an absent table column.
	ErrNoSuchColumn = errors.New("no such column")
	// ErrDuplicateColumn is returned when a table already has a column of that name.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrIndexOutOfRange is returned by positional access outside the valid range.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrImmutable is returned by mutators called on a read-only record or table.
	ErrImmutable = errors.New("immutable")
	// ErrUnsupportedOperation is returned by setters of read-only columns.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrConcurrentModification is reported by an iterator whose record changed
	// structurally outside of it.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrIllegalState is returned by iterator operations called out of order.
	ErrIllegalState = errors.New("illegal state")
	// ErrIncompatibleRecord is returned when comparing records of different shapes.
	ErrIncompatibleRecord = errors.New("incompatible record")
	// ErrNotComparable is returned when two values have no natural ordering.
	ErrNotComparable = errors.New("values are not comparable")

	// ErrInvalidColumnValue is the family of all column constraint violations.
	ErrInvalidColumnValue = errors.New("invalid column value")
	// ErrInvalidColumnValueType reports a value not assignable to the column type.
	ErrInvalidColumnValueType = fmt.Errorf("%w: wrong type", ErrInvalidColumnValue)
	// ErrInvalidColumnValueSize reports a value whose string form exceeds the column size.
	ErrInvalidColumnValueSize = fmt.Errorf("%w: too large", ErrInvalidColumnValue)
	// ErrNonUniqueColumnValue reports a duplicate value in a unique column.
	ErrNonUniqueColumnValue = fmt.Errorf("%w: not unique", ErrInvalidColumnValue)
	// ErrNullColumnValue reports null written to a non-nullable column.
	ErrNullColumnValue = fmt.Errorf("%w: null", ErrInvalidColumnValue)
)

func argumentError(format string, args ...interface{}) *commonerrors.Error {
	return commonerrors.Wrapf(ErrInvalidArgument, commonerrors.ErrorTypeArgument, format, args...)
}

func indexError(what string, index, size int) *commonerrors.Error {
	return commonerrors.Wrapf(ErrIndexOutOfRange, commonerrors.ErrorTypeOutOfRange,
		"%s index %d out of range [0, %d)", what, index, size).
		WithDetail("index", index).
		WithDetail("size", size)
}

func immutableError(what string) *commonerrors.Error {
	return commonerrors.Wrapf(ErrImmutable, commonerrors.ErrorTypeImmutable, "%s is not mutable", what)
}

func noSuchFieldError(field interface{}) *commonerrors.Error {
	return commonerrors.Wrapf(ErrNoSuchField, commonerrors.ErrorTypeNotFound, "field %v", field).
		WithDetail("field", field)
}

func noSuchColumnError(name string) *commonerrors.Error {
	return commonerrors.Wrapf(ErrNoSuchColumn, commonerrors.ErrorTypeNotFound, "column %q", name).
		WithDetail("column", name)
}

func valueError(sentinel error, column *Column, value interface{}, format string, args ...interface{}) *commonerrors.Error {
	return commonerrors.Wrapf(sentinel, commonerrors.ErrorTypeValidation, format, args...).
		WithDetail("column", column.Name()).
		WithDetail("value", value)
}
