package document

// Sequence is an ordered list of values (a JSON array).
type Sequence struct {
	items []Value
}

// NewSequence returns a sequence holding copies of items.
func NewSequence(items ...Value) *Sequence {
	s := &Sequence{items: make([]Value, 0, len(items))}
	for _, item := range items {
		s.Append(item)
	}
	return s
}

func (*Sequence) Kind() Kind { return SequenceKind }

func (s *Sequence) Len() int { return len(s.items) }

// At returns the item at 0-based offset i, or nil if there is none.
func (s *Sequence) At(i int) Value {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// SetAt replaces the item at 0-based offset i with a copy of v.  It returns
// false if i is out of range, in which case the sequence is unchanged.
func (s *Sequence) SetAt(i int, v Value) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	s.items[i] = Clone(v)
	return true
}

// Append adds a copy of v at the end of the sequence.
func (s *Sequence) Append(v Value) {
	s.items = append(s.items, Clone(v))
}

// Each calls f for each item in order, with its 0-based offset.
func (s *Sequence) Each(f func(i int, v Value)) {
	for i, item := range s.items {
		f(i, item)
	}
}

func (s *Sequence) push(v Value) {
	s.items = append(s.items, v)
}
