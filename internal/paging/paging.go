// Package paging splits ordered collections into fixed-size pages and keeps
// the state of one paged listing.
package paging

const DefaultPageSize = 10

// Page is one window of a collection.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalPages int
	Total      int
	// First and Last are the 1-based positions of the window's first and last
	// items in the whole collection; both are 0 when the page is empty.
	First int
	Last  int
}

// TotalPages is ceil(total/size). A non-positive size uses DefaultPageSize.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Slice returns items [(number-1)*size, number*size). Page numbers outside
// the collection yield an empty window; they are not clamped here.
func Slice[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	p := Page[T]{
		Number:     number,
		Size:       size,
		Total:      len(items),
		TotalPages: TotalPages(len(items), size),
	}
	if number < 1 {
		return p
	}
	start := (number - 1) * size
	if start >= len(items) {
		return p
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[start:end]
	p.First = start + 1
	p.Last = end
	return p
}

// Cursor tracks the current page of a collection whose length may change.
type Cursor struct {
	page  int
	size  int
	total int
}

func NewCursor(size int) Cursor {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Cursor{page: 1, size: size}
}

func (c Cursor) Page() int { return c.page }
func (c Cursor) Size() int { return c.size }

func (c Cursor) TotalPages() int { return TotalPages(c.total, c.size) }

// SetTotal records the collection length and re-clamps the page.
func (c *Cursor) SetTotal(total int) {
	c.total = total
	c.Jump(c.page)
}

// Jump moves to page n, clamped to [1, TotalPages].
func (c *Cursor) Jump(n int) {
	last := c.TotalPages()
	if n > last {
		n = last
	}
	if n < 1 {
		n = 1
	}
	c.page = n
}

func (c *Cursor) Next() { c.Jump(c.page + 1) }
func (c *Cursor) Prev() { c.Jump(c.page - 1) }

func (c Cursor) HasNext() bool { return c.page < c.TotalPages() }
func (c Cursor) HasPrev() bool { return c.page > 1 }
