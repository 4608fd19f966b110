package record

import (
	"math"
	"reflect"
	"time"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// ValueAs returns the value of field as a T. A null value yields the zero T.
func ValueAs[T any, K comparable](r Record[K], field K) (T, error) {
	var zero T
	v, err := r.Value(field)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, accessorError(field, v, TypeFor[T]())
	}
	return t, nil
}

// String returns the value of field as a string.
func String[K comparable](r Record[K], field K) (string, error) {
	return ValueAs[string](r, field)
}

// Bool returns the value of field as a bool.
func Bool[K comparable](r Record[K], field K) (bool, error) {
	return ValueAs[bool](r, field)
}

// Time returns the value of field as a time.Time.
func Time[K comparable](r Record[K], field K) (time.Time, error) {
	return ValueAs[time.Time](r, field)
}

// Bytes returns the value of field as a byte slice.
func Bytes[K comparable](r Record[K], field K) ([]byte, error) {
	return ValueAs[[]byte](r, field)
}

// Int returns the value of field widened to int64. Any integer type is
// accepted; unsigned values above math.MaxInt64 are rejected.
func Int[K comparable](r Record[K], field K) (int64, error) {
	v, err := r.Value(field)
	if err != nil || v == nil {
		return 0, err
	}
	rv := reflect.ValueOf(v)
	switch kindOf(rv.Kind()) {
	case kindInt:
		return rv.Int(), nil
	case kindUint:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), nil
		}
	}
	return 0, accessorError(field, v, TypeFor[int64]())
}

// Float returns the value of field widened to float64. Any numeric type is accepted.
func Float[K comparable](r Record[K], field K) (float64, error) {
	v, err := r.Value(field)
	if err != nil || v == nil {
		return 0, err
	}
	rv := reflect.ValueOf(v)
	if k := kindOf(rv.Kind()); k.numeric() {
		return toFloat(rv, k), nil
	}
	return 0, accessorError(field, v, TypeFor[float64]())
}

func accessorError(field, value interface{}, want reflect.Type) error {
	return commonerrors.Wrapf(ErrInvalidColumnValueType, commonerrors.ErrorTypeValidation,
		"value of field %v is %T, not %s", field, value, want).
		WithDetail("field", field)
}
