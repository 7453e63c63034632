package models

const DefaultPageSize = 10

// Page is the from/size window every list endpoint accepts.
type Page struct {
	From int
	Size int
}

// Offset rounds From down to a multiple of Size.
func (p Page) Offset() int {
	if p.Size <= 0 {
		return 0
	}
	return p.From / p.Size * p.Size
}

// Slice applies the page to an already materialized list.
func Slice[T any](items []T, p Page) []T {
	off := p.Offset()
	if off >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Size > 0 && off+p.Size < end {
		end = off + p.Size
	}
	return items[off:end]
}
