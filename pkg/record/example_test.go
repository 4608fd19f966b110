package record_test

import (
	"errors"
	"fmt"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// Example builds a small constrained table.
func Example() {
	id := record.MustColumn("id", record.TypeFor[int](), record.WithUnique())
	name := record.MustColumn("name", record.TypeFor[string](), record.WithSize(10))

	table, err := record.NewTable([]*record.Column{id, name}, record.WithName("people"))
	if err != nil {
		panic(err)
	}

	for _, row := range [][]interface{}{
		{1, "Jon"},
		{1, "Sarah"},
		{2, "ThisNameIsWayTooLong"},
		{2, "Sarah"},
	} {
		err := table.AppendValues(row...)
		switch {
		case errors.Is(err, record.ErrNonUniqueColumnValue):
			fmt.Println("duplicate id", row[0])
		case errors.Is(err, record.ErrInvalidColumnValueSize):
			fmt.Println("name too long")
		case err != nil:
			fmt.Println(err)
		}
	}
	fmt.Println(table.RowCount())

	// Output:
	// duplicate id 1
	// name too long
	// 2
}

// ExampleRecord_iterator shows fail-fast iteration.
func ExampleRecord_iterator() {
	r, _ := record.RecordOf("a", 1, "b", 2)
	_, _ = r.AddFieldValue("c", 3)

	it := r.Iterator()
	for it.Next() {
		fmt.Println(it.Field(), it.Value())
		if it.Field() == "a" {
			_, _ = r.RemoveField("a")
		}
	}
	fmt.Println(errors.Is(it.Err(), record.ErrConcurrentModification))

	// Output:
	// a 1
	// true
}

// ExampleRecordComparator orders rows by a column sequence.
func ExampleRecordComparator() {
	last := record.MustColumn("last", record.TypeFor[string]())
	first := record.MustColumn("first", record.TypeFor[string]())

	table, _ := record.NewTable([]*record.Column{first, last})
	_ = table.AppendValues("Sarah", "Smith")
	_ = table.AppendValues("Jon", "Smith")
	_ = table.AppendValues("Ann", "Jones")

	cmp, _ := record.NewRecordComparator(last, first)
	_ = table.SortRows(cmp)

	rows, _ := table.ToTabular(nil, nil)
	for _, row := range rows {
		fmt.Println(row...)
	}

	// Output:
	// Ann Jones
	// Jon Smith
	// Sarah Smith
}

// ExampleNewAdapter views a string-keyed record through columns.
func ExampleNewAdapter() {
	r, _ := record.RecordOf("id", 7, "name", "Jon")
	a, _ := record.NewAdapter(r)

	for _, c := range a.Columns() {
		v, _ := a.Value(c)
		fmt.Println(c.Name(), v)
	}

	// Output:
	// id 7
	// name Jon
}
