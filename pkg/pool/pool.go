// Package pool provides typed object pools and the pooled value slices used
// to bind table rows to SQL statements.
//
// Example usage:
//
//	args := pool.GetValues()
//	defer pool.PutValues(args)
//
//	args.V = append(args.V, 1, "Jon")
//	_, err := db.ExecContext(ctx, stmt, args.V...)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a type-safe wrapper around sync.Pool that resets objects on Put
// and keeps usage statistics. It is safe for concurrent use.
//
// Pointer types are recommended for T; a value type is copied into an
// interface on every Put.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a pool allocating with new. reset, when not nil, runs on
// every object returned with Put.
func New[T any](new func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return new()
	}
	return p
}

// Get retrieves an object from the pool, allocating one when it is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns how many objects the pool allocated, how many are checked
// out and how many were reused from the pool.
func (p *Pool[T]) Stats() (allocated, inUse, hits int64) {
	allocated = atomic.LoadInt64(&p.stats.allocated)
	hits = atomic.LoadInt64(&p.stats.gets) - allocated
	if hits < 0 {
		hits = 0
	}
	return allocated, atomic.LoadInt64(&p.stats.inUse), hits
}

// Values is a reusable slice of cell values.
type Values struct {
	V []interface{}
}

// maxPooledValues bounds the capacity kept by the values pool so one huge
// batch does not pin its backing array.
const maxPooledValues = 1 << 16

var values = New(
	func() *Values { return &Values{V: make([]interface{}, 0, 256)} },
	func(v *Values) {
		if cap(v.V) > maxPooledValues {
			v.V = make([]interface{}, 0, 256)
			return
		}
		clear(v.V)
		v.V = v.V[:0]
	},
)

// GetValues returns an empty value slice from the shared pool.
func GetValues() *Values {
	return values.Get()
}

// PutValues returns v to the shared pool. The caller must not use v after.
func PutValues(v *Values) {
	if v != nil {
		values.Put(v)
	}
}

// ValuesStats reports the statistics of the shared value slice pool.
func ValuesStats() (allocated, inUse, hits int64) {
	return values.Stats()
}
