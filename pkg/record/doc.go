// Package record provides typed, constrained, in-memory tabular data: columns,
// ordered field/value records and record tables that validate every cell
// write against their column definitions.
//
// # Overview
//
// A Column describes one named, typed slot: nullability, uniqueness, a size
// bound on the value's string form, a default value and an optional ordering
// override. A Record is an ordered field to value mapping. A Table owns an
// ordered list of columns and an ordered list of rows and routes every write
// through a fixed validation pipeline:
//
//  1. null is replaced by the column default (non-unique columns only)
//  2. the value must be assignable to the column type
//  3. null is rejected for non-nullable columns
//  4. the value must not already be present in a unique column
//  5. the value's string form must fit the column size
//
// # Basic Usage
//
//	id := record.MustColumn("id", record.TypeFor[int](), record.WithUnique(), record.WithNullable(false))
//	name := record.MustColumn("name", record.TypeFor[string](), record.WithSize(10))
//
//	table, err := record.NewTable([]*record.Column{id, name})
//	if err != nil {
//	    return err
//	}
//	if err := table.AppendValues(1, "Jon"); err != nil {
//	    return err
//	}
//	err = table.AppendValues(1, "Sarah") // errors.Is(err, record.ErrNonUniqueColumnValue)
//
// # Thread Safety
//
// Records and tables are not safe for concurrent use. Wrap them with
// Synchronized or NewSynchronizedTable and route all access through the
// wrapper, or hand out read-only copies made with Unmodifiable and
// UnmodifiableTable.
package record
