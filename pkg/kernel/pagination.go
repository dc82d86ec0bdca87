package kernel

// Page represents pagination metadata
type Page struct {
	Number int `json:"page"`      // Current page number (1-based)
	Size   int `json:"page_size"` // Number of records per page
	Total  int `json:"total"`     // Total number of records
	Pages  int `json:"pages"`     // Total number of pages
}

// Paginated is a generic container for paginated data with metadata
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"pagination"`
	Empty bool `json:"empty"`
}

// NewPaginated creates a new paginated result with calculated fields
func NewPaginated[T any](items []T, page, size, total int) Paginated[T] {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	if items == nil {
		items = []T{}
	}

	return Paginated[T]{
		Items: items,
		Page: Page{
			Number: page,
			Size:   size,
			Total:  total,
			Pages:  pages,
		},
		Empty: len(items) == 0,
	}
}

// HasNext returns whether there are more pages after the current one
func (p Paginated[T]) HasNext() bool {
	return p.Page.Number < p.Page.Pages
}

// HasPrevious returns whether there are pages before the current one
func (p Paginated[T]) HasPrevious() bool {
	return p.Page.Number > 1
}

// MapPage converts the items of a page, keeping its metadata.
func MapPage[T, R any](p Paginated[T], fn func(T) R) Paginated[R] {
	out := make([]R, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Paginated[R]{Items: out, Page: p.Page, Empty: p.Empty}
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationOptions holds options for pagination queries
type PaginationOptions struct {
	Page     int // Page number (1-based)
	PageSize int // Number of records per page
}

// Normalize applies the defaults: page 1, page size DefaultPageSize,
// capped at MaxPageSize.
func (o PaginationOptions) Normalize() PaginationOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	o.PageSize = min(o.PageSize, MaxPageSize)
	return o
}

// Offset is the number of records preceding the page.
func (o PaginationOptions) Offset() int {
	o = o.Normalize()
	return (o.Page - 1) * o.PageSize
}

// Window returns the [start, end) bounds of the page within total records.
func (o PaginationOptions) Window(total int) (start, end int) {
	o = o.Normalize()
	start = min(o.Offset(), total)
	end = min(start+o.PageSize, total)
	return start, end
}
