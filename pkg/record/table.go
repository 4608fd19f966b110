package record

import (
	"reflect"
	"slices"

	"go.uber.org/zap"
)

// Table is an ordered collection of rows sharing one ordered sequence of
// columns. Every row holds exactly one value per column and every cell write
// is validated against its column before anything is stored.
type Table interface {
	Name() string

	Columns() []*Column
	Column(index int) (*Column, error)
	ColumnNamed(name string) (*Column, error)
	// ColumnIndex returns the position of the column with the same name, or -1.
	ColumnIndex(column *Column) int
	ColumnIndexNamed(name string) int
	ColumnCount() int
	// AddColumn appends column, filling existing rows with its default value.
	AddColumn(column *Column) error
	InsertColumn(column *Column, index int) error
	RemoveColumn(index int) (*Column, error)
	RemoveColumnNamed(name string) (*Column, error)

	RowCount() int
	// Row returns a read-only snapshot of a row keyed by column name.
	Row(index int) (Record[string], error)
	Rows() []Record[string]
	// AddRow appends a row built from the record's values by column name.
	// Columns missing from the record receive null.
	AddRow(row Record[string]) error
	InsertRow(row Record[string], index int) error
	// AppendValues appends a row given one value per column in column order.
	AppendValues(values ...interface{}) error
	InsertValues(index int, values ...interface{}) error
	RemoveRow(index int) (Record[string], error)
	// RemoveRowRecord removes the first row equal to row.
	RemoveRowRecord(row Record[string]) (bool, error)
	// IndexOfRow returns the position of the first row equal to row, or -1.
	IndexOfRow(row Record[string]) int
	FindRows(match func(row Record[string]) bool) []int

	CellValue(row, column int) (interface{}, error)
	CellValueNamed(row int, column string) (interface{}, error)
	SetCellValue(row, column int, value interface{}) error
	SetCellValueNamed(row int, column string, value interface{}) error

	// ToTabular copies the selected cells into a row-major matrix. A nil
	// selection selects every row or column.
	ToTabular(rows, columns []int) ([][]interface{}, error)
	// SortRows stably reorders the rows. A nil comparator orders by every
	// column in column order.
	SortRows(cmp *RecordComparator) error

	RegisterComparator(typ reflect.Type, c Comparator) error
	RegisterComparatorFunc(match func(reflect.Type) bool, c Comparator) error
	UnregisterComparator(typ reflect.Type) bool
	// ComparatorFor returns the ordering for value in column: the column's
	// comparator, else the one registered for the value's runtime type, else nil.
	ComparatorFor(column *Column, value interface{}) Comparator

	Mutable() bool
	SetMutable(mutable bool) error
	Clone() Table
}

// MemoryTable is the in-memory Table implementation. Rows are stored as
// fixed-arity value vectors indexed by column position.
type MemoryTable struct {
	name        string
	columns     []*Column
	rows        [][]interface{}
	mutable     bool
	comparators *ComparatorRegistry
	logger      *zap.Logger
	observer    Observer
}

var _ Table = (*MemoryTable)(nil)

// TableOption configures a MemoryTable.
type TableOption func(*MemoryTable)

// WithName names the table in logs, errors and metrics.
func WithName(name string) TableOption {
	return func(t *MemoryTable) { t.name = name }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) TableOption {
	return func(t *MemoryTable) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithObserver sets the observer notified of table changes.
func WithObserver(observer Observer) TableOption {
	return func(t *MemoryTable) {
		if observer != nil {
			t.observer = observer
		}
	}
}

// WithComparators seeds the table's comparator registry with a copy of registry.
func WithComparators(registry *ComparatorRegistry) TableOption {
	return func(t *MemoryTable) { t.comparators = registry.Clone() }
}

// NewTable creates an empty mutable table with the given columns.
func NewTable(columns []*Column, opts ...TableOption) (*MemoryTable, error) {
	t := &MemoryTable{
		name:        "table",
		columns:     make([]*Column, 0, len(columns)),
		mutable:     true,
		comparators: NewComparatorRegistry(),
		logger:      zap.NewNop(),
		observer:    NopObserver{},
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, c := range columns {
		if c == nil {
			return nil, argumentError("column must not be nil")
		}
		if t.ColumnIndexNamed(c.Name()) >= 0 {
			return nil, t.duplicateColumnError(c)
		}
		t.columns = append(t.columns, c)
	}

	t.logger = t.logger.With(zap.String("table", t.name))
	return t, nil
}

func (t *MemoryTable) Name() string { return t.name }

func (t *MemoryTable) checkMutable() error {
	if !t.mutable {
		return immutableError("table " + t.name)
	}
	return nil
}

func (t *MemoryTable) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

func (t *MemoryTable) Column(index int) (*Column, error) {
	if index < 0 || index >= len(t.columns) {
		return nil, indexError("column", index, len(t.columns))
	}
	return t.columns[index], nil
}

func (t *MemoryTable) ColumnNamed(name string) (*Column, error) {
	i := t.ColumnIndexNamed(name)
	if i < 0 {
		return nil, noSuchColumnError(name)
	}
	return t.columns[i], nil
}

func (t *MemoryTable) ColumnIndex(column *Column) int {
	if column == nil {
		return -1
	}
	return t.ColumnIndexNamed(column.Name())
}

func (t *MemoryTable) ColumnIndexNamed(name string) int {
	for i, c := range t.columns {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

func (t *MemoryTable) ColumnCount() int { return len(t.columns) }

func (t *MemoryTable) AddColumn(column *Column) error {
	return t.InsertColumn(column, len(t.columns))
}

func (t *MemoryTable) InsertColumn(column *Column, index int) error {
	if column == nil {
		return argumentError("column must not be nil")
	}
	if err := t.checkMutable(); err != nil {
		return err
	}
	if index < 0 || index > len(t.columns) {
		return indexError("column", index, len(t.columns)+1)
	}
	if t.ColumnIndexNamed(column.Name()) >= 0 {
		return t.duplicateColumnError(column)
	}

	var fill interface{}
	if len(t.rows) > 0 {
		v, err := t.resolve(-1, column, -1, nil)
		if err != nil {
			return err
		}
		fill = v
	}

	t.columns = slices.Insert(t.columns, index, column)
	for i, row := range t.rows {
		t.rows[i] = slices.Insert(row, index, fill)
	}

	t.logger.Debug("column added",
		zap.String("column", column.Name()),
		zap.Int("index", index),
		zap.Int("rows", len(t.rows)))
	t.observer.ColumnAdded(t.name, column)
	return nil
}

func (t *MemoryTable) RemoveColumn(index int) (*Column, error) {
	if err := t.checkMutable(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.columns) {
		return nil, indexError("column", index, len(t.columns))
	}

	column := t.columns[index]
	t.columns = slices.Delete(t.columns, index, index+1)
	for i, row := range t.rows {
		t.rows[i] = slices.Delete(row, index, index+1)
	}

	t.logger.Debug("column removed", zap.String("column", column.Name()), zap.Int("index", index))
	t.observer.ColumnRemoved(t.name, column)
	return column, nil
}

func (t *MemoryTable) RemoveColumnNamed(name string) (*Column, error) {
	i := t.ColumnIndexNamed(name)
	if i < 0 {
		return nil, noSuchColumnError(name)
	}
	return t.RemoveColumn(i)
}

func (t *MemoryTable) RowCount() int { return len(t.rows) }

func (t *MemoryTable) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

func (t *MemoryTable) rowRecord(index int, names []string) *OrderedRecord[string] {
	values := append([]interface{}(nil), t.rows[index]...)
	return readOnlyRecord(names, values, t.comparators.Clone())
}

func (t *MemoryTable) Row(index int) (Record[string], error) {
	if index < 0 || index >= len(t.rows) {
		return nil, indexError("row", index, len(t.rows))
	}
	return t.rowRecord(index, t.columnNames()), nil
}

func (t *MemoryTable) Rows() []Record[string] {
	names := t.columnNames()
	rows := make([]Record[string], len(t.rows))
	for i := range t.rows {
		rows[i] = t.rowRecord(i, names)
	}
	return rows
}

func (t *MemoryTable) AddRow(row Record[string]) error {
	return t.InsertRow(row, len(t.rows))
}

func (t *MemoryTable) InsertRow(row Record[string], index int) error {
	if row == nil {
		return argumentError("row must not be nil")
	}
	values, err := t.valuesOf(row)
	if err != nil {
		return err
	}
	return t.insertValues(index, values)
}

func (t *MemoryTable) AppendValues(values ...interface{}) error {
	return t.InsertValues(len(t.rows), values...)
}

func (t *MemoryTable) InsertValues(index int, values ...interface{}) error {
	if len(values) != len(t.columns) {
		return argumentError("table %s has %d columns but %d values were given",
			t.name, len(t.columns), len(values))
	}
	return t.insertValues(index, append([]interface{}(nil), values...))
}

// valuesOf maps a record onto the table's column order.
func (t *MemoryTable) valuesOf(row Record[string]) ([]interface{}, error) {
	for _, f := range row.Fields() {
		if t.ColumnIndexNamed(f) < 0 {
			return nil, noSuchColumnError(f)
		}
	}
	values := make([]interface{}, len(t.columns))
	for i, c := range t.columns {
		values[i], _ = row.Lookup(c.Name())
	}
	return values, nil
}

// insertValues validates every cell of a new row before storing it.
func (t *MemoryTable) insertValues(index int, values []interface{}) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	if index < 0 || index > len(t.rows) {
		return indexError("row", index, len(t.rows)+1)
	}

	for i, c := range t.columns {
		v, err := t.resolve(i, c, -1, values[i])
		if err != nil {
			return err
		}
		values[i] = v
	}

	t.rows = slices.Insert(t.rows, index, values)
	t.logger.Debug("row added", zap.Int("index", index))
	t.observer.RowAdded(t.name, index)
	return nil
}

func (t *MemoryTable) RemoveRow(index int) (Record[string], error) {
	if err := t.checkMutable(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.rows) {
		return nil, indexError("row", index, len(t.rows))
	}

	removed := t.rowRecord(index, t.columnNames())
	t.rows = slices.Delete(t.rows, index, index+1)

	t.logger.Debug("row removed", zap.Int("index", index))
	t.observer.RowRemoved(t.name, index)
	return removed, nil
}

func (t *MemoryTable) RemoveRowRecord(row Record[string]) (bool, error) {
	if err := t.checkMutable(); err != nil {
		return false, err
	}
	i := t.IndexOfRow(row)
	if i < 0 {
		return false, nil
	}
	if _, err := t.RemoveRow(i); err != nil {
		return false, err
	}
	return true, nil
}

func (t *MemoryTable) IndexOfRow(row Record[string]) int {
	if row == nil || row.FieldCount() != len(t.columns) {
		return -1
	}
	values := make([]interface{}, len(t.columns))
	for i, c := range t.columns {
		v, ok := row.Lookup(c.Name())
		if !ok {
			return -1
		}
		values[i] = v
	}

next:
	for r, stored := range t.rows {
		for i, c := range t.columns {
			if !t.equalValues(c, stored[i], values[i]) {
				continue next
			}
		}
		return r
	}
	return -1
}

func (t *MemoryTable) FindRows(match func(row Record[string]) bool) []int {
	var found []int
	names := t.columnNames()
	for i := range t.rows {
		if match(t.rowRecord(i, names)) {
			found = append(found, i)
		}
	}
	return found
}

func (t *MemoryTable) cell(row, column int) error {
	if row < 0 || row >= len(t.rows) {
		return indexError("row", row, len(t.rows))
	}
	if column < 0 || column >= len(t.columns) {
		return indexError("column", column, len(t.columns))
	}
	return nil
}

func (t *MemoryTable) CellValue(row, column int) (interface{}, error) {
	if err := t.cell(row, column); err != nil {
		return nil, err
	}
	return t.rows[row][column], nil
}

func (t *MemoryTable) CellValueNamed(row int, column string) (interface{}, error) {
	i := t.ColumnIndexNamed(column)
	if i < 0 {
		return nil, noSuchColumnError(column)
	}
	return t.CellValue(row, i)
}

func (t *MemoryTable) SetCellValue(row, column int, value interface{}) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	if err := t.cell(row, column); err != nil {
		return err
	}

	c := t.columns[column]
	v, err := t.resolve(column, c, row, value)
	if err != nil {
		return err
	}
	t.rows[row][column] = v
	t.observer.CellWritten(t.name, c)
	return nil
}

func (t *MemoryTable) SetCellValueNamed(row int, column string, value interface{}) error {
	i := t.ColumnIndexNamed(column)
	if i < 0 {
		return noSuchColumnError(column)
	}
	return t.SetCellValue(row, i, value)
}

func (t *MemoryTable) ToTabular(rows, columns []int) ([][]interface{}, error) {
	if rows == nil {
		rows = sequence(len(t.rows))
	}
	if columns == nil {
		columns = sequence(len(t.columns))
	}
	for _, c := range columns {
		if c < 0 || c >= len(t.columns) {
			return nil, indexError("column", c, len(t.columns))
		}
	}

	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		if r < 0 || r >= len(t.rows) {
			return nil, indexError("row", r, len(t.rows))
		}
		line := make([]interface{}, len(columns))
		for j, c := range columns {
			line[j] = t.rows[r][c]
		}
		out[i] = line
	}
	return out, nil
}

func (t *MemoryTable) SortRows(cmp *RecordComparator) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	if cmp == nil {
		cmp = &RecordComparator{columns: t.Columns(), comparators: t.comparators.Clone()}
	}

	records := t.Rows()
	order := sequence(len(records))
	var sortErr error
	slices.SortStableFunc(order, func(a, b int) int {
		if sortErr != nil {
			return 0
		}
		n, err := cmp.Compare(records[a], records[b])
		if err != nil {
			sortErr = err
		}
		return n
	})
	if sortErr != nil {
		return sortErr
	}

	sorted := make([][]interface{}, len(order))
	for i, r := range order {
		sorted[i] = t.rows[r]
	}
	t.rows = sorted
	t.logger.Debug("rows sorted", zap.Int("rows", len(sorted)))
	return nil
}

func (t *MemoryTable) RegisterComparator(typ reflect.Type, c Comparator) error {
	return t.comparators.Register(typ, c)
}

func (t *MemoryTable) RegisterComparatorFunc(match func(reflect.Type) bool, c Comparator) error {
	return t.comparators.RegisterFunc(match, c)
}

func (t *MemoryTable) UnregisterComparator(typ reflect.Type) bool {
	return t.comparators.Unregister(typ)
}

func (t *MemoryTable) ComparatorFor(column *Column, value interface{}) Comparator {
	if column != nil && column.Comparator() != nil {
		return column.Comparator()
	}
	if c, ok := t.comparators.Lookup(typeOf(value)); ok {
		return c
	}
	return nil
}

func (t *MemoryTable) Mutable() bool { return t.mutable }

func (t *MemoryTable) SetMutable(mutable bool) error {
	t.mutable = mutable
	return nil
}

// Clone returns a deep copy of the table. Columns are copied, so changing a
// column attribute of the clone does not affect the original.
func (t *MemoryTable) Clone() Table {
	columns := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		columns[i] = c.Clone()
	}
	rows := make([][]interface{}, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append([]interface{}(nil), row...)
	}
	return &MemoryTable{
		name:        t.name,
		columns:     columns,
		rows:        rows,
		mutable:     t.mutable,
		comparators: t.comparators.Clone(),
		logger:      t.logger,
		observer:    t.observer,
	}
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
