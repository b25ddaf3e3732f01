package waypoint

import "github.com/golang/geo/r3"

// Modifier is a pending edit to a named waypoint's base position, queued by
// the producer and consumed by the next regeneration (spec.md §3, "Modifier
// Entry"). It is transient: once applied to a next_deque it is discarded.
type Modifier struct {
	Name     string
	Position r3.Vector
}

// Book is the ordered list of pending modifiers awaiting the next
// regeneration. Later entries for the same name override earlier ones (see
// SPEC_FULL.md "same-name modify_waypoint collision" resolution): Put
// replaces in place rather than appending a duplicate.
type Book struct {
	entries []Modifier
	index   map[string]int
}

// NewBook returns an empty modifier book.
func NewBook() *Book {
	return &Book{index: make(map[string]int)}
}

// Put queues (or overwrites) a modification for name.
func (b *Book) Put(name string, position r3.Vector) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[name]; ok {
		b.entries[i].Position = position
		return
	}
	b.index[name] = len(b.entries)
	b.entries = append(b.entries, Modifier{Name: name, Position: position})
}

// Drain returns the queued modifiers and empties the book.
func (b *Book) Drain() []Modifier {
	out := b.entries
	b.entries = nil
	b.index = make(map[string]int)
	return out
}

// Len reports how many distinct names are currently queued.
func (b *Book) Len() int {
	return len(b.entries)
}
