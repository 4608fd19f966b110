package record

import (
	"errors"
	"reflect"
	"slices"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// RecordComparator orders string-keyed records by a fixed sequence of
// columns. For each column it compares both records' values with the
// column's comparator, else the comparator registered for the value type,
// else natural ordering. The first non-zero result wins.
type RecordComparator struct {
	columns     []*Column
	comparators *ComparatorRegistry
	descending  bool
}

// NewRecordComparator returns a comparator over columns in order.
func NewRecordComparator(columns ...*Column) (*RecordComparator, error) {
	for i, c := range columns {
		if c == nil {
			return nil, argumentError("sort column %d must not be nil", i)
		}
	}
	return &RecordComparator{
		columns:     append([]*Column(nil), columns...),
		comparators: NewComparatorRegistry(),
	}, nil
}

// Columns returns the sort columns.
func (rc *RecordComparator) Columns() []*Column {
	return append([]*Column(nil), rc.columns...)
}

// RegisterComparator registers an ordering for values of type typ.
func (rc *RecordComparator) RegisterComparator(typ reflect.Type, c Comparator) error {
	return rc.comparators.Register(typ, c)
}

// Reversed returns a comparator with the opposite order.
func (rc *RecordComparator) Reversed() *RecordComparator {
	return &RecordComparator{
		columns:     rc.columns,
		comparators: rc.comparators.Clone(),
		descending:  !rc.descending,
	}
}

// Compare orders a against b. A sort column missing from either record is
// reported as ErrInvalidArgument.
func (rc *RecordComparator) Compare(a, b Record[string]) (int, error) {
	if a == nil || b == nil {
		return 0, argumentError("cannot compare nil records")
	}
	for _, c := range rc.columns {
		va, err := rc.value(a, c)
		if err != nil {
			return 0, err
		}
		vb, err := rc.value(b, c)
		if err != nil {
			return 0, err
		}

		n, err := rc.compareValues(c, va, vb)
		if err != nil {
			return 0, err
		}
		if n != 0 {
			if rc.descending {
				return -n, nil
			}
			return n, nil
		}
	}
	return 0, nil
}

func (rc *RecordComparator) value(r Record[string], c *Column) (interface{}, error) {
	v, err := r.Value(c.Name())
	if errors.Is(err, ErrNoSuchField) {
		return nil, argumentError("sort column %q is not a field of the record", c.Name()).
			WithDetail("column", c.Name())
	}
	return v, err
}

func (rc *RecordComparator) compareValues(c *Column, a, b interface{}) (int, error) {
	if cmp := c.Comparator(); cmp != nil {
		return cmp(a, b), nil
	}
	n, err := rc.comparators.Compare(a, b)
	if err != nil {
		return 0, commonerrors.Wrapf(err, commonerrors.ErrorTypeValidation, "column %q", c.Name())
	}
	return n, nil
}

// SortFunc adapts the comparator to slices.SortFunc. The first comparison
// error is stored in errp and later comparisons report equality.
func (rc *RecordComparator) SortFunc(errp *error) func(a, b Record[string]) int {
	return func(a, b Record[string]) int {
		if *errp != nil {
			return 0
		}
		n, err := rc.Compare(a, b)
		if err != nil {
			*errp = err
		}
		return n
	}
}

// Sort stably sorts records in place.
func (rc *RecordComparator) Sort(records []Record[string]) error {
	var err error
	slices.SortStableFunc(records, rc.SortFunc(&err))
	return err
}
