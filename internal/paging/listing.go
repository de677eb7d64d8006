package paging

import "fmt"

// Listing is the state of one paged view over a fetched collection. The API
// listing and the history listing are both Listings.
type Listing[T any] struct {
	items       []T
	cursor      Cursor
	pending     bool
	substituted bool
	err         error
}

func NewListing[T any](size int) *Listing[T] {
	return &Listing[T]{cursor: NewCursor(size)}
}

// Begin marks a fetch as in flight. It reports false when one already is.
func (l *Listing[T]) Begin() bool {
	if l.pending {
		return false
	}
	l.pending = true
	return true
}

// Load replaces the collection and returns to page one. substituted marks
// data that did not come from the backend.
func (l *Listing[T]) Load(items []T, substituted bool) {
	l.pending = false
	l.err = nil
	l.items = items
	l.substituted = substituted
	l.cursor.SetTotal(len(items))
	l.cursor.Jump(1)
}

// Fail ends a fetch with an error and keeps whatever was loaded before.
func (l *Listing[T]) Fail(err error) {
	l.pending = false
	l.err = err
}

func (l *Listing[T]) Pending() bool     { return l.pending }
func (l *Listing[T]) Substituted() bool { return l.substituted }
func (l *Listing[T]) Err() error        { return l.err }
func (l *Listing[T]) Len() int          { return len(l.items) }
func (l *Listing[T]) Items() []T        { return l.items }

func (l *Listing[T]) Current() Page[T] {
	return Slice(l.items, l.cursor.Page(), l.cursor.Size())
}

func (l *Listing[T]) Next()          { l.cursor.Next() }
func (l *Listing[T]) Prev()          { l.cursor.Prev() }
func (l *Listing[T]) Jump(n int)     { l.cursor.Jump(n) }
func (l *Listing[T]) Cursor() Cursor { return l.cursor }

// Summary renders the "Showing X to Y of Z entries" line.
func (p Page[T]) Summary() string {
	return fmt.Sprintf("Showing %d to %d of %d entries", p.First, p.Last, p.Total)
}
