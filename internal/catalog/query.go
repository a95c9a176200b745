package catalog

import (
	"sort"
	"strings"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 48
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
)

type Query struct {
	Search     string
	CategoryID string
	BrandID    string
	MinPrice   int64
	MaxPrice   int64 // 0 = unbounded
	Sort       string
	Page       int
	Limit      int
}

type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
}

// Apply filters, sorts and paginates an already fetched product list.
func Apply(products []Product, q Query) Page[Product] {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if q.BrandID != "" && p.BrandID != q.BrandID {
			continue
		}
		price := p.FromPrice()
		if price < q.MinPrice {
			continue
		}
		if q.MaxPrice > 0 && price > q.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, q.Sort)
	return Paginate(out, q.Page, q.Limit)
}

func sortProducts(ps []Product, mode string) {
	var less func(a, b Product) bool
	switch mode {
	case SortPriceAsc:
		less = func(a, b Product) bool { return a.FromPrice() < b.FromPrice() }
	case SortPriceDesc:
		less = func(a, b Product) bool { return a.FromPrice() > b.FromPrice() }
	case SortNameAsc:
		less = func(a, b Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortNameDesc:
		less = func(a, b Product) bool { return strings.ToLower(a.Name) > strings.ToLower(b.Name) }
	default:
		less = func(a, b Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

// Paginate slices items by 1-based page. Pages past the end are empty.
func Paginate[T any](items []T, page, limit int) Page[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	res := Page[T]{
		Items:       []T{},
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		TotalItems:  total,
	}
	start := (page - 1) * limit
	if start >= total {
		return res
	}
	end := start + limit
	if end > total {
		end = total
	}
	res.Items = items[start:end]
	return res
}
