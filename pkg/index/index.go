// Package index builds ordered, read-only indexes over one column of a
// table snapshot.
//
// An Index sorts the column's non-null values with the same ordering the
// table uses for sorting: the column comparator, then the table's
// registered comparators, then the natural ordering of the values. Rows
// with equal values keep table order.
//
// Indexes do not follow later table writes; rebuild after changing the
// table.
package index

import (
	"math"
	"sync"

	"github.com/google/btree"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// DefaultDegree is the btree degree used when Options leaves it unset.
const DefaultDegree = 32

// Options configures Build.
type Options struct {
	Degree int
}

type entry struct {
	value interface{}
	row   int
}

// Index maps the values of one column to the rows holding them. It is safe
// for concurrent readers.
type Index struct {
	mu     sync.Mutex
	column string
	tree   *btree.BTreeG[entry]
	nulls  []int
	cmp    record.Comparator
	err    error
}

// Build indexes the named column of t.
func Build(t record.Table, column string, opts *Options) (*Index, error) {
	degree := DefaultDegree
	if opts != nil && opts.Degree > 1 {
		degree = opts.Degree
	}

	c, err := t.ColumnNamed(column)
	if err != nil {
		return nil, err
	}
	cells, err := t.ToTabular(nil, []int{t.ColumnIndexNamed(column)})
	if err != nil {
		return nil, err
	}

	idx := &Index{column: column}
	var sample interface{}
	for _, cell := range cells {
		if cell[0] != nil {
			sample = cell[0]
			break
		}
	}
	idx.cmp = t.ComparatorFor(c, sample)
	idx.tree = btree.NewG[entry](degree, idx.less)

	for row, cell := range cells {
		if cell[0] == nil {
			idx.nulls = append(idx.nulls, row)
			continue
		}
		idx.tree.ReplaceOrInsert(entry{value: cell[0], row: row})
		if idx.err != nil {
			return nil, commonerrors.Wrapf(idx.err, commonerrors.ErrorTypeArgument,
				"cannot index column %q", column).
				WithDetail("row", row)
		}
	}
	return idx, nil
}

// compare orders two values, recording the first failure.
func (idx *Index) compare(a, b interface{}) int {
	if idx.cmp != nil {
		return idx.cmp(a, b)
	}
	n, err := record.Compare(a, b)
	if err != nil && idx.err == nil {
		idx.err = err
	}
	return n
}

func (idx *Index) less(a, b entry) bool {
	if n := idx.compare(a.value, b.value); n != 0 {
		return n < 0
	}
	return a.row < b.row
}

// search runs fn with the failure state reset and reports any comparison
// failure it caused.
func (idx *Index) search(fn func()) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.err = nil
	fn()
	err := idx.err
	idx.err = nil
	if err != nil {
		return commonerrors.Wrapf(err, commonerrors.ErrorTypeArgument, "cannot search column %q", idx.column)
	}
	return nil
}

// Column returns the indexed column name.
func (idx *Index) Column() string { return idx.column }

// Len returns the number of indexed non-null cells.
func (idx *Index) Len() int { return idx.tree.Len() }

// Nulls returns the rows whose cell is null, in table order.
func (idx *Index) Nulls() []int {
	return append([]int(nil), idx.nulls...)
}

// Lookup returns the rows holding value, in table order.
func (idx *Index) Lookup(value interface{}) ([]int, error) {
	if value == nil {
		return idx.Nulls(), nil
	}
	var rows []int
	err := idx.search(func() {
		idx.tree.AscendRange(entry{value, -1}, entry{value, math.MaxInt}, func(e entry) bool {
			rows = append(rows, e.row)
			return true
		})
	})
	return rows, err
}

// Range returns the rows whose value v satisfies lo <= v < hi, in value
// order. A nil bound is open.
func (idx *Index) Range(lo, hi interface{}) ([]int, error) {
	var rows []int
	collect := func(e entry) bool {
		rows = append(rows, e.row)
		return true
	}

	err := idx.search(func() {
		switch {
		case lo == nil && hi == nil:
			idx.tree.Ascend(collect)
		case lo == nil:
			idx.tree.AscendLessThan(entry{hi, -1}, collect)
		case hi == nil:
			idx.tree.AscendGreaterOrEqual(entry{lo, -1}, collect)
		default:
			idx.tree.AscendRange(entry{lo, -1}, entry{hi, -1}, collect)
		}
	})
	return rows, err
}

// Ascend calls fn for every indexed cell in value order until fn returns
// false.
func (idx *Index) Ascend(fn func(value interface{}, row int) bool) {
	idx.tree.Ascend(func(e entry) bool {
		return fn(e.value, e.row)
	})
}

// Min returns the smallest indexed value and its first row.
func (idx *Index) Min() (interface{}, int, bool) {
	e, ok := idx.tree.Min()
	return e.value, e.row, ok
}

// Max returns the largest indexed value and its last row.
func (idx *Index) Max() (interface{}, int, bool) {
	e, ok := idx.tree.Max()
	return e.value, e.row, ok
}
