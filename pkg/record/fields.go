package record

// fields is an insertion-ordered map with positional access. mods counts
// structural changes (adds, removes and clears) so iterators can fail fast.
type fields[K comparable] struct {
	keys   []K
	values map[K]interface{}
	mods   uint64
}

func newFields[K comparable](capacity int) *fields[K] {
	return &fields[K]{
		keys:   make([]K, 0, capacity),
		values: make(map[K]interface{}, capacity),
	}
}

func (f *fields[K]) len() int { return len(f.keys) }

func (f *fields[K]) has(key K) bool {
	_, ok := f.values[key]
	return ok
}

func (f *fields[K]) get(key K) (interface{}, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fields[K]) index(key K) int {
	if !f.has(key) {
		return -1
	}
	for i, k := range f.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// add appends key with value. It reports false if key is already present.
func (f *fields[K]) add(key K, value interface{}) bool {
	if f.has(key) {
		return false
	}
	f.keys = append(f.keys, key)
	f.values[key] = value
	f.mods++
	return true
}

// set replaces the value of a present key and returns the previous one.
// Replacing a value is not a structural change.
func (f *fields[K]) set(key K, value interface{}) interface{} {
	old := f.values[key]
	f.values[key] = value
	return old
}

func (f *fields[K]) remove(key K) bool {
	i := f.index(key)
	if i < 0 {
		return false
	}
	f.removeAt(i)
	return true
}

func (f *fields[K]) removeAt(i int) {
	key := f.keys[i]
	f.keys = append(f.keys[:i], f.keys[i+1:]...)
	delete(f.values, key)
	f.mods++
}

func (f *fields[K]) clear() {
	if len(f.keys) == 0 {
		return
	}
	clear(f.values)
	f.keys = f.keys[:0]
	f.mods++
}

func (f *fields[K]) clone() *fields[K] {
	c := newFields[K](len(f.keys))
	c.keys = append(c.keys, f.keys...)
	for k, v := range f.values {
		c.values[k] = v
	}
	return c
}
