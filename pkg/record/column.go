package record

import (
	"reflect"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

// AnyType is the type of an unconstrained column. Every value is assignable to it.
var AnyType = reflect.TypeOf((*interface{})(nil)).Elem()

// TypeFor returns the reflect.Type of T. Interface types are preserved, so
// TypeFor[fmt.Stringer]() accepts any value implementing fmt.Stringer.
func TypeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Column describes one named, typed and constrained slot of a table.
//
// Name and type are fixed at construction. The remaining attributes can be
// changed at any time; changing a constraint does not revalidate values a
// table already holds.
type Column struct {
	name         string
	typ          reflect.Type
	nullable     bool
	unique       bool
	size         int
	defaultValue interface{}
	comparator   Comparator
	description  string
	displayName  string
	readOnly     bool
}

// ColumnOption configures a column during construction.
type ColumnOption func(*Column) error

// WithNullable sets whether the column accepts null values.
func WithNullable(nullable bool) ColumnOption {
	return func(c *Column) error { return c.SetNullable(nullable) }
}

// WithUnique marks the column as unique.
func WithUnique() ColumnOption {
	return func(c *Column) error { return c.SetUnique(true) }
}

// WithSize bounds the length of the string form of the column's values.
func WithSize(size int) ColumnOption {
	return func(c *Column) error { return c.SetSize(size) }
}

// WithDefault sets the value substituted for null writes.
func WithDefault(value interface{}) ColumnOption {
	return func(c *Column) error { return c.SetDefaultValue(value) }
}

// WithColumnComparator sets the ordering used for the column's values.
func WithColumnComparator(cmp Comparator) ColumnOption {
	return func(c *Column) error { return c.SetComparator(cmp) }
}

// WithDescription sets the column description.
func WithDescription(description string) ColumnOption {
	return func(c *Column) error { return c.SetDescription(description) }
}

// WithDisplayName sets the column display name.
func WithDisplayName(displayName string) ColumnOption {
	return func(c *Column) error { return c.SetDisplayName(displayName) }
}

// NewColumn creates a nullable, non-unique, unbounded column.
// Options are applied in order.
func NewColumn(name string, typ reflect.Type, opts ...ColumnOption) (*Column, error) {
	if name == "" {
		return nil, argumentError("column name must not be empty")
	}
	if typ == nil {
		return nil, argumentError("type of column %q must not be nil", name)
	}

	c := &Column{
		name:     name,
		typ:      typ,
		nullable: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ColumnOf creates a column typed by T.
func ColumnOf[T any](name string, opts ...ColumnOption) (*Column, error) {
	return NewColumn(name, TypeFor[T](), opts...)
}

// MustColumn is NewColumn that panics on error. Intended for fixtures and
// package-level declarations.
func MustColumn(name string, typ reflect.Type, opts ...ColumnOption) *Column {
	c, err := NewColumn(name, typ, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// readOnlyColumn returns an AnyType column whose setters all fail.
func readOnlyColumn(name string) *Column {
	return &Column{
		name:     name,
		typ:      AnyType,
		nullable: true,
		readOnly: true,
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the type values of the column must be assignable to.
func (c *Column) Type() reflect.Type { return c.typ }

// Nullable reports whether the column accepts null.
func (c *Column) Nullable() bool { return c.nullable }

// Unique reports whether values of the column must be distinct across rows.
func (c *Column) Unique() bool { return c.unique }

// Size returns the maximum length of a value's string form, or 0 if unbounded.
func (c *Column) Size() int { return c.size }

// DefaultValue returns the value substituted for null writes, if any.
func (c *Column) DefaultValue() interface{} { return c.defaultValue }

// Comparator returns the column's ordering override, or nil.
func (c *Column) Comparator() Comparator { return c.comparator }

// Description returns the column description.
func (c *Column) Description() string { return c.description }

// DisplayName returns the display name, falling back to the column name.
func (c *Column) DisplayName() string {
	if c.displayName == "" {
		return c.name
	}
	return c.displayName
}

// ReadOnly reports whether the column rejects attribute changes.
func (c *Column) ReadOnly() bool { return c.readOnly }

func (c *Column) checkWritable(attribute string) error {
	if c.readOnly {
		return commonerrors.Wrapf(ErrUnsupportedOperation, commonerrors.ErrorTypeUnsupported,
			"cannot set %s of read-only column %q", attribute, c.name)
	}
	return nil
}

// SetNullable sets whether the column accepts null.
func (c *Column) SetNullable(nullable bool) error {
	if err := c.checkWritable("nullable"); err != nil {
		return err
	}
	c.nullable = nullable
	return nil
}

// SetUnique sets whether values of the column must be distinct.
func (c *Column) SetUnique(unique bool) error {
	if err := c.checkWritable("unique"); err != nil {
		return err
	}
	c.unique = unique
	return nil
}

// SetSize sets the size bound. Zero means unbounded.
func (c *Column) SetSize(size int) error {
	if err := c.checkWritable("size"); err != nil {
		return err
	}
	if size < 0 {
		return argumentError("size of column %q must not be negative: %d", c.name, size)
	}
	c.size = size
	return nil
}

// SetDefaultValue sets the value substituted for null writes. The value must
// be assignable to the column type and, when textual, fit the size bound.
func (c *Column) SetDefaultValue(value interface{}) error {
	if err := c.checkWritable("default value"); err != nil {
		return err
	}
	if value != nil {
		if !c.Accepts(value) {
			return valueError(ErrInvalidColumnValueType, c, value,
				"default value of type %T is not assignable to column %q of type %s", value, c.name, c.typ)
		}
		if c.size > 0 {
			if text, ok := textOf(value); ok && stringpool.RuneLen(text) > c.size {
				return valueError(ErrInvalidColumnValueSize, c, value,
					"default value %q exceeds size %d of column %q", text, c.size, c.name)
			}
		}
	}
	c.defaultValue = value
	return nil
}

// SetComparator sets the ordering override for the column's values.
func (c *Column) SetComparator(cmp Comparator) error {
	if err := c.checkWritable("comparator"); err != nil {
		return err
	}
	c.comparator = cmp
	return nil
}

// SetDescription sets the column description.
func (c *Column) SetDescription(description string) error {
	if err := c.checkWritable("description"); err != nil {
		return err
	}
	c.description = description
	return nil
}

// SetDisplayName sets the display name.
func (c *Column) SetDisplayName(displayName string) error {
	if err := c.checkWritable("display name"); err != nil {
		return err
	}
	c.displayName = displayName
	return nil
}

// Accepts reports whether value is assignable to the column type.
// Null is always type-compatible.
func (c *Column) Accepts(value interface{}) bool {
	if value == nil {
		return true
	}
	return reflect.TypeOf(value).AssignableTo(c.typ)
}

// Equal reports whether both columns have the same attributes.
func (c *Column) Equal(other *Column) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.name == other.name &&
		c.typ == other.typ &&
		c.nullable == other.nullable &&
		c.unique == other.unique &&
		c.size == other.size &&
		c.description == other.description &&
		c.displayName == other.displayName &&
		c.readOnly == other.readOnly &&
		reflect.DeepEqual(c.defaultValue, other.defaultValue) &&
		sameComparator(c.comparator, other.comparator)
}

// Clone returns a copy of the column with the same attributes.
func (c *Column) Clone() *Column {
	clone := *c
	return &clone
}

// String returns "name type".
func (c *Column) String() string {
	return stringpool.Sprintf("%s %s", c.name, c.typ)
}

// textOf returns the text of string-like values.
func textOf(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return stringpool.BytesToString(v), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func sameComparator(a, b Comparator) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
