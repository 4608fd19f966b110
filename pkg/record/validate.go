package record

import (
	"errors"

	"go.uber.org/zap"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

// resolve runs the write pipeline for one cell and returns the value to
// store. index is the column position, or -1 for a column not yet in the
// table; skipRow is the row being overwritten, or -1.
//
// Order matters: the default is substituted first so that the uniqueness
// and size checks see the value that would actually be stored.
func (t *MemoryTable) resolve(index int, c *Column, skipRow int, value interface{}) (interface{}, error) {
	if value == nil && !c.Unique() && c.DefaultValue() != nil {
		value = c.DefaultValue()
	}

	if !c.Accepts(value) {
		return nil, t.violation(c, valueError(ErrInvalidColumnValueType, c, value,
			"value of type %T is not assignable to column %q of type %s", value, c.Name(), c.Type()))
	}

	if value == nil {
		if !c.Nullable() {
			return nil, t.violation(c, valueError(ErrNullColumnValue, c, nil,
				"column %q does not accept null", c.Name()))
		}
		return nil, nil
	}

	if c.Unique() && index >= 0 {
		if row := t.findValue(index, c, value, skipRow); row >= 0 {
			return nil, t.violation(c, valueError(ErrNonUniqueColumnValue, c, value,
				"value %v already exists in column %q", value, c.Name()).
				WithDetail("row", row))
		}
	}

	if c.Size() > 0 {
		if n := stringpool.RuneLen(stringpool.ValueToString(value)); n > c.Size() {
			return nil, t.violation(c, valueError(ErrInvalidColumnValueSize, c, value,
				"value of length %d exceeds size %d of column %q", n, c.Size(), c.Name()))
		}
	}

	return value, nil
}

// findValue returns the first row other than skipRow holding value in the
// given column. Nulls never match.
func (t *MemoryTable) findValue(index int, c *Column, value interface{}, skipRow int) int {
	for r, row := range t.rows {
		if r == skipRow || row[index] == nil {
			continue
		}
		if t.equalValues(c, row[index], value) {
			return r
		}
	}
	return -1
}

func (t *MemoryTable) equalValues(c *Column, a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if cmp := t.ComparatorFor(c, a); cmp != nil {
		return cmp(a, b) == 0
	}
	n, err := Compare(a, b)
	return err == nil && n == 0
}

func (t *MemoryTable) violation(c *Column, err *commonerrors.Error) error {
	err.WithDetail("table", t.name)
	t.logger.Debug("column constraint violated",
		zap.String("column", c.Name()),
		zap.Error(err))
	t.observer.ConstraintViolated(t.name, c, err)
	return err
}

func (t *MemoryTable) duplicateColumnError(c *Column) error {
	return commonerrors.Wrapf(ErrDuplicateColumn, commonerrors.ErrorTypeArgument,
		"table %s already has a column named %q", t.name, c.Name()).
		WithDetail("column", c.Name())
}

// IsConstraintViolation reports whether err is any column value violation.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrInvalidColumnValue)
}
