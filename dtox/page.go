package dtox

import (
	"slices"

	"github.com/goccy/go-json"
)

// Page is an immutable page of DTOs with caller-supplied paging metadata.
// total, perPage and page are never derived from the items.
type Page struct {
	items   []DTO
	total   int
	perPage int
	page    int
}

// NewPage wraps items with paging metadata
func NewPage(items []DTO, total, perPage, page int) *Page {
	return &Page{
		items:   slices.Clone(items),
		total:   total,
		perPage: perPage,
		page:    page,
	}
}

// Items returns a copy of the page's DTOs
func (p *Page) Items() []DTO { return slices.Clone(p.items) }

func (p *Page) Total() int   { return p.total }
func (p *Page) PerPage() int { return p.perPage }
func (p *Page) Page() int    { return p.page }

// ToMapping renders {data: [...], meta: {total, perPage, page}}
func (p *Page) ToMapping() Mapping {
	data := make([]any, len(p.items))
	for i, item := range p.items {
		data[i] = item.ToMapping()
	}
	return Mapping{
		"data": data,
		"meta": Mapping{
			"total":   p.total,
			"perPage": p.perPage,
			"page":    p.page,
		},
	}
}

// MarshalJSON encodes ToMapping
func (p *Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMapping())
}

// DefaultPerPage is used when a PageRequest leaves PerPage unset
const DefaultPerPage = 20

// PageRequest describes which slice of a result set a paginated source returns
type PageRequest struct {
	Page    int
	PerPage int
	OrderBy string
	Desc    bool
	Filters map[string]any
	Fields  []string
}

// WithDefaults clamps Page to at least 1 and fills PerPage
func (r PageRequest) WithDefaults() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PerPage < 1 {
		r.PerPage = DefaultPerPage
	}
	return r
}

// Offset is the number of records skipped before this page
func (r PageRequest) Offset() int {
	r = r.WithDefaults()
	return (r.Page - 1) * r.PerPage
}
