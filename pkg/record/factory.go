package record

// Factory creates records and tables. Components that need new instances
// take a Factory instead of constructing a concrete implementation.
type Factory interface {
	NewRecord() Record[string]
	NewTable(columns ...*Column) (Table, error)
}

// DefaultFactory creates OrderedRecords and MemoryTables.
type DefaultFactory struct {
	options []TableOption
}

var _ Factory = (*DefaultFactory)(nil)

// NewDefaultFactory returns a factory applying opts to every table it creates.
func NewDefaultFactory(opts ...TableOption) *DefaultFactory {
	return &DefaultFactory{options: opts}
}

func (f *DefaultFactory) NewRecord() Record[string] {
	return NewRecord[string]()
}

func (f *DefaultFactory) NewTable(columns ...*Column) (Table, error) {
	t, err := NewTable(columns, f.options...)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SynchronizedFactory wraps every record and table of another factory in
// its synchronized decorator.
type SynchronizedFactory struct {
	factory Factory
}

var _ Factory = (*SynchronizedFactory)(nil)

// NewSynchronizedFactory wraps f.
func NewSynchronizedFactory(f Factory) *SynchronizedFactory {
	return &SynchronizedFactory{factory: f}
}

func (f *SynchronizedFactory) NewRecord() Record[string] {
	return Synchronized(f.factory.NewRecord())
}

func (f *SynchronizedFactory) NewTable(columns ...*Column) (Table, error) {
	t, err := f.factory.NewTable(columns...)
	if err != nil {
		return nil, err
	}
	return NewSynchronizedTable(t), nil
}
