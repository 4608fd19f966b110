// Package schema describes record tables in YAML or JSON files.
//
// A Definition names a table and lists its columns by type name. It
// converts to and from validated record columns, parses text cells into
// typed values and can be inferred from sample text rows:
//
//	name: people
//	version: "1"
//	columns:
//	  - name: id
//	    type: int
//	    unique: true
//	    nullable: false
//	  - name: name
//	    type: string
//	    size: 40
//
// Supported type names are string, int, int64, float, bool, time, bytes and
// any.
package schema

import (
	"errors"
	"reflect"
	"time"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

var (
	// ErrUnknownType reports a type name with no column type.
	ErrUnknownType = errors.New("unknown column type")
	// ErrInvalidDefinition reports a structurally invalid definition.
	ErrInvalidDefinition = errors.New("invalid table definition")
)

// Type names
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeInt64  = "int64"
	TypeFloat  = "float"
	TypeBool   = "bool"
	TypeTime   = "time"
	TypeBytes  = "bytes"
	TypeAny    = "any"
)

var typesByName = map[string]reflect.Type{
	TypeString: record.TypeFor[string](),
	TypeInt:    record.TypeFor[int](),
	TypeInt64:  record.TypeFor[int64](),
	TypeFloat:  record.TypeFor[float64](),
	TypeBool:   record.TypeFor[bool](),
	TypeTime:   record.TypeFor[time.Time](),
	TypeBytes:  record.TypeFor[[]byte](),
	TypeAny:    record.AnyType,
}

// TypeForName returns the column type for a type name.
func TypeForName(name string) (reflect.Type, error) {
	if t, ok := typesByName[name]; ok {
		return t, nil
	}
	return nil, commonerrors.Wrapf(ErrUnknownType, commonerrors.ErrorTypeValidation, "type %q", name)
}

// NameForType returns the type name of a column type, or false when the
// type has none.
func NameForType(t reflect.Type) (string, bool) {
	for name, typ := range typesByName {
		if typ == t {
			return name, true
		}
	}
	return "", false
}

// Definition describes a table.
type Definition struct {
	Name    string      `yaml:"name" json:"name"`
	Version string      `yaml:"version,omitempty" json:"version,omitempty"`
	Columns []ColumnDef `yaml:"columns" json:"columns"`
}

// ColumnDef describes one column. A nil Nullable means nullable.
type ColumnDef struct {
	Name        string      `yaml:"name" json:"name"`
	Type        string      `yaml:"type" json:"type"`
	Nullable    *bool       `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Unique      bool        `yaml:"unique,omitempty" json:"unique,omitempty"`
	Size        int         `yaml:"size,omitempty" json:"size,omitempty"`
	Default     interface{} `yaml:"default,omitempty" json:"default,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	DisplayName string      `yaml:"display_name,omitempty" json:"display_name,omitempty"`
}

// IsNullable reports the effective nullability of the column.
func (d ColumnDef) IsNullable() bool {
	return d.Nullable == nil || *d.Nullable
}

// Column builds the record column described by d. A default given in a
// different representation, such as 1 for a float column, is converted
// through its text form.
func (d ColumnDef) Column() (*record.Column, error) {
	typ, err := TypeForName(d.Type)
	if err != nil {
		return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeValidation, "column %q", d.Name)
	}

	opts := []record.ColumnOption{record.WithNullable(d.IsNullable())}
	if d.Unique {
		opts = append(opts, record.WithUnique())
	}
	if d.Size != 0 {
		opts = append(opts, record.WithSize(d.Size))
	}
	if d.Description != "" {
		opts = append(opts, record.WithDescription(d.Description))
	}
	if d.DisplayName != "" {
		opts = append(opts, record.WithDisplayName(d.DisplayName))
	}
	if d.Default != nil {
		v, err := convert(typ, d.Default)
		if err != nil {
			return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeValidation, "default of column %q", d.Name)
		}
		opts = append(opts, record.WithDefault(v))
	}

	return record.NewColumn(d.Name, typ, opts...)
}

// convert coerces a decoded default value to typ.
func convert(typ reflect.Type, v interface{}) (interface{}, error) {
	if typ == record.AnyType || reflect.TypeOf(v).AssignableTo(typ) {
		return v, nil
	}
	return parseText(typ, stringpool.ValueToString(v))
}

// Validate checks names and types without building columns.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return commonerrors.Wrap(ErrInvalidDefinition, commonerrors.ErrorTypeValidation, "table name must not be empty")
	}
	if len(d.Columns) == 0 {
		return commonerrors.Wrapf(ErrInvalidDefinition, commonerrors.ErrorTypeValidation, "table %q has no columns", d.Name)
	}

	seen := make(map[string]bool, len(d.Columns))
	for i, c := range d.Columns {
		if c.Name == "" {
			return commonerrors.Wrapf(ErrInvalidDefinition, commonerrors.ErrorTypeValidation,
				"column %d of table %q has no name", i, d.Name)
		}
		if seen[c.Name] {
			return commonerrors.Wrapf(record.ErrDuplicateColumn, commonerrors.ErrorTypeValidation,
				"table %q has more than one column named %q", d.Name, c.Name)
		}
		seen[c.Name] = true
		if _, err := TypeForName(c.Type); err != nil {
			return commonerrors.Wrapf(err, commonerrors.ErrorTypeValidation, "column %q", c.Name)
		}
	}
	return nil
}

// BuildColumns validates the definition and builds its columns in order.
func (d *Definition) BuildColumns() ([]*record.Column, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	columns := make([]*record.Column, len(d.Columns))
	for i, c := range d.Columns {
		column, err := c.Column()
		if err != nil {
			return nil, err
		}
		columns[i] = column
	}
	return columns, nil
}

// Column returns the definition of the named column.
func (d *Definition) Column(name string) (ColumnDef, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// NewTable builds an empty table named after the definition.
func (d *Definition) NewTable(opts ...record.TableOption) (*record.MemoryTable, error) {
	columns, err := d.BuildColumns()
	if err != nil {
		return nil, err
	}
	return record.NewTable(columns, append([]record.TableOption{record.WithName(d.Name)}, opts...)...)
}

// FromColumns describes existing columns. Columns whose type has no type
// name are described as any. Comparators are not representable and are
// dropped.
func FromColumns(name string, columns []*record.Column) *Definition {
	d := &Definition{Name: name, Columns: make([]ColumnDef, len(columns))}
	for i, c := range columns {
		typeName, ok := NameForType(c.Type())
		if !ok {
			typeName = TypeAny
		}
		def := ColumnDef{
			Name:        c.Name(),
			Type:        typeName,
			Unique:      c.Unique(),
			Size:        c.Size(),
			Default:     c.DefaultValue(),
			Description: c.Description(),
		}
		if !c.Nullable() {
			nullable := false
			def.Nullable = &nullable
		}
		if dn := c.DisplayName(); dn != c.Name() {
			def.DisplayName = dn
		}
		d.Columns[i] = def
	}
	return d
}
