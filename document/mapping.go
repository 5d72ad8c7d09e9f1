package document

import "slices"

// Mapping is a set of key-value pairs (a JSON object).  Keys are unique and
// iterate in insertion order.
type Mapping struct {
	keys   []string
	values map[string]Value
}

func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Value)}
}

func (*Mapping) Kind() Kind { return MappingKind }

func (m *Mapping) Len() int { return len(m.keys) }

// Keys returns the keys of m in iteration order.
func (m *Mapping) Keys() []string {
	return slices.Clone(m.keys)
}

func (m *Mapping) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Mapping) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set associates key with a copy of v.  A new key is added at the end of the
// iteration order, an existing key keeps its position.
func (m *Mapping) Set(key string, v Value) {
	m.put(key, Clone(v))
}

// Delete removes key from m and reports whether it was present.
func (m *Mapping) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return true
}

// Each calls f for each key-value pair in iteration order.
func (m *Mapping) Each(f func(key string, v Value)) {
	for _, k := range m.keys {
		f(k, m.values[k])
	}
}

func (m *Mapping) put(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}
