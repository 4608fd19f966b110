package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type buffer struct {
	data []byte
}

func TestPool(t *testing.T) {
	resets := 0
	p := New(
		func() *buffer { return &buffer{data: make([]byte, 0, 16)} },
		func(b *buffer) {
			resets++
			b.data = b.data[:0]
		},
	)

	b := p.Get()
	require.NotNil(t, b)
	b.data = append(b.data, "abc"...)

	allocated, inUse, _ := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(1), inUse)

	p.Put(b)
	assert.Equal(t, 1, resets)
	assert.Empty(t, b.data)

	_, inUse, _ = p.Stats()
	assert.Equal(t, int64(0), inUse)
}

func TestValues(t *testing.T) {
	v := GetValues()
	assert.Empty(t, v.V)
	v.V = append(v.V, 1, "two", nil)
	kept := v.V[:3]
	PutValues(v)

	// Reset clears the elements so pooled slices do not retain cell values.
	assert.Equal(t, []interface{}{nil, nil, nil}, kept)
	assert.Empty(t, v.V)

	PutValues(nil)
}

func TestValuesDropsLargeSlices(t *testing.T) {
	v := GetValues()
	v.V = make([]interface{}, 0, maxPooledValues+1)
	PutValues(v)
	assert.LessOrEqual(t, cap(v.V), maxPooledValues)
}

func TestValuesConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v := GetValues()
				v.V = append(v.V, i, j)
				assert.Equal(t, []interface{}{i, j}, v.V)
				PutValues(v)
			}
		}(i)
	}
	wg.Wait()
}
