package record

// Observer is notified of table changes. Implementations must be cheap; they
// run synchronously on the writing goroutine.
type Observer interface {
	CellWritten(table string, column *Column)
	RowAdded(table string, index int)
	RowRemoved(table string, index int)
	ColumnAdded(table string, column *Column)
	ColumnRemoved(table string, column *Column)
	// ConstraintViolated is called when a write is rejected by column
	// validation. column is nil for violations not tied to one column.
	ConstraintViolated(table string, column *Column, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) CellWritten(string, *Column)               {}
func (NopObserver) RowAdded(string, int)                      {}
func (NopObserver) RowRemoved(string, int)                    {}
func (NopObserver) ColumnAdded(string, *Column)               {}
func (NopObserver) ColumnRemoved(string, *Column)             {}
func (NopObserver) ConstraintViolated(string, *Column, error) {}
