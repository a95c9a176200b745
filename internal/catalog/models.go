package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNameTaken = errors.New("name already exists")
	ErrInUse     = errors.New("still referenced by products")
	ErrInvalid   = errors.New("invalid input")
)

// Label is the shared shape of brands and categories.
type Label struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Listed      bool      `json:"listed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type (
	Brand    = Label
	Category = Label
)

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	BrandID      string    `json:"brand_id"`
	BrandName    string    `json:"brand_name"`
	Images       []string  `json:"images"`
	Listed       bool      `json:"listed"`
	Variants     []Variant `json:"variants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Variant struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

// FromPrice is the cheapest variant price, or 0 for a product without variants.
func (p Product) FromPrice() int64 {
	var min int64
	for i, v := range p.Variants {
		if i == 0 || v.PriceCents < min {
			min = v.PriceCents
		}
	}
	return min
}

func (p Product) InStock() bool {
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return true
		}
	}
	return false
}
