package record

import (
	"bytes"
	"cmp"
	"reflect"
	"time"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// Comparator orders two values. It returns a negative number when a sorts
// before b, zero when they are equal and a positive number otherwise.
type Comparator func(a, b interface{}) int

// Comparable is implemented by values that define their own ordering.
type Comparable interface {
	CompareTo(other interface{}) int
}

// Compare orders two values by their natural ordering. Null sorts first.
// Numbers of any width compare by value, strings lexically, false before
// true, and time.Time chronologically. Values implementing Comparable order
// themselves. Deeply equal values of any type compare as 0; any other pair
// fails with ErrNotComparable.
func Compare(a, b interface{}) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}

	if ca, ok := a.(Comparable); ok {
		return ca.CompareTo(b), nil
	}

	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}
	case []byte:
		if bv, ok := b.([]byte); ok {
			return bytes.Compare(av, bv), nil
		}
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	ka, kb := kindOf(va.Kind()), kindOf(vb.Kind())
	switch {
	case ka == kindInt && kb == kindInt:
		return cmp.Compare(va.Int(), vb.Int()), nil
	case ka == kindUint && kb == kindUint:
		return cmp.Compare(va.Uint(), vb.Uint()), nil
	case ka.numeric() && kb.numeric():
		return compareMixed(va, ka, vb, kb), nil
	case ka == kindString && kb == kindString:
		return cmp.Compare(va.String(), vb.String()), nil
	case ka == kindBool && kb == kindBool:
		return compareBool(va.Bool(), vb.Bool()), nil
	}

	if reflect.DeepEqual(a, b) {
		return 0, nil
	}
	return 0, commonerrors.Wrapf(ErrNotComparable, commonerrors.ErrorTypeValidation,
		"cannot compare %T with %T", a, b)
}

type valueKind int

const (
	kindOther valueKind = iota
	kindInt
	kindUint
	kindFloat
	kindString
	kindBool
)

func (k valueKind) numeric() bool {
	return k == kindInt || k == kindUint || k == kindFloat
}

func kindOf(k reflect.Kind) valueKind {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return kindUint
	case reflect.Float32, reflect.Float64:
		return kindFloat
	case reflect.String:
		return kindString
	case reflect.Bool:
		return kindBool
	}
	return kindOther
}

// compareMixed orders numbers of different kinds.
func compareMixed(va reflect.Value, ka valueKind, vb reflect.Value, kb valueKind) int {
	// A negative signed value always sorts before an unsigned one.
	if ka == kindInt && kb == kindUint {
		if va.Int() < 0 {
			return -1
		}
		return cmp.Compare(uint64(va.Int()), vb.Uint())
	}
	if ka == kindUint && kb == kindInt {
		return -compareMixed(vb, kb, va, ka)
	}
	return cmp.Compare(toFloat(va, ka), toFloat(vb, kb))
}

func toFloat(v reflect.Value, k valueKind) float64 {
	switch k {
	case kindInt:
		return float64(v.Int())
	case kindUint:
		return float64(v.Uint())
	}
	return v.Float()
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// comparatorRule is one entry of a ComparatorRegistry. Rules created by
// Register carry their type so re-registration can replace them in place.
type comparatorRule struct {
	typ   reflect.Type
	match func(reflect.Type) bool
	cmp   Comparator
}

// ComparatorRegistry maps value types to comparators.
//
// Lookup tries an exact type match first, then evaluates every rule in
// registration order and returns the first whose predicate accepts the type.
// A rule registered for type T accepts every type assignable to T, so
// registering an interface type covers all of its implementations.
//
// The zero value is an empty registry. A nil *ComparatorRegistry is valid
// for lookups and always misses.
type ComparatorRegistry struct {
	rules []comparatorRule
}

// NewComparatorRegistry returns an empty registry.
func NewComparatorRegistry() *ComparatorRegistry {
	return &ComparatorRegistry{}
}

// Register maps typ to c. Registering an already registered type replaces
// its comparator and keeps its position in the lookup order.
func (r *ComparatorRegistry) Register(typ reflect.Type, c Comparator) error {
	if typ == nil {
		return argumentError("comparator type must not be nil")
	}
	if c == nil {
		return argumentError("comparator for %s must not be nil", typ)
	}

	for i := range r.rules {
		if r.rules[i].typ == typ {
			r.rules[i].cmp = c
			return nil
		}
	}
	r.rules = append(r.rules, comparatorRule{
		typ:   typ,
		match: func(t reflect.Type) bool { return t.AssignableTo(typ) },
		cmp:   c,
	})
	return nil
}

// RegisterFunc appends a rule that applies c to every type accepted by match.
func (r *ComparatorRegistry) RegisterFunc(match func(reflect.Type) bool, c Comparator) error {
	if match == nil {
		return argumentError("comparator predicate must not be nil")
	}
	if c == nil {
		return argumentError("comparator must not be nil")
	}
	r.rules = append(r.rules, comparatorRule{match: match, cmp: c})
	return nil
}

// Unregister removes the comparator registered for typ. It reports whether
// one was removed.
func (r *ComparatorRegistry) Unregister(typ reflect.Type) bool {
	for i := range r.rules {
		if r.rules[i].typ != nil && r.rules[i].typ == typ {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup returns the comparator for values of type typ.
func (r *ComparatorRegistry) Lookup(typ reflect.Type) (Comparator, bool) {
	if r == nil || typ == nil {
		return nil, false
	}
	for _, rule := range r.rules {
		if rule.typ == typ {
			return rule.cmp, true
		}
	}
	for _, rule := range r.rules {
		if rule.match(typ) {
			return rule.cmp, true
		}
	}
	return nil, false
}

// Len returns the number of registered rules.
func (r *ComparatorRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Clone returns an independent copy of the registry.
func (r *ComparatorRegistry) Clone() *ComparatorRegistry {
	if r == nil {
		return NewComparatorRegistry()
	}
	return &ComparatorRegistry{rules: append([]comparatorRule(nil), r.rules...)}
}

// Compare orders a and b with the comparator registered for the runtime
// type of a (or of b when a is null), falling back to Compare.
func (r *ComparatorRegistry) Compare(a, b interface{}) (int, error) {
	if c, ok := r.Lookup(typeOf(a, b)); ok {
		return c(a, b), nil
	}
	return Compare(a, b)
}

// typeOf returns the runtime type of the first non-null value.
func typeOf(values ...interface{}) reflect.Type {
	for _, v := range values {
		if v != nil {
			return reflect.TypeOf(v)
		}
	}
	return nil
}
