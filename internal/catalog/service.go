package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type ProductStore interface {
	ListListed(ctx context.Context) ([]Product, error)
	ListAll(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	GetListed(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, id string, u ProductUpdate) error
	SetProductListed(ctx context.Context, id string, listed bool) error
	UpsertVariant(ctx context.Context, productID string, v Variant) (Variant, error)
}

type LabelStore interface {
	List(ctx context.Context, onlyListed bool) ([]Label, error)
	Create(ctx context.Context, name, description string) (Label, error)
	Update(ctx context.Context, id, name, description string) (Label, error)
	SetListed(ctx context.Context, id string, listed bool) error
	Delete(ctx context.Context, id string) error
}

// Cache holds product detail responses; misses report false without error.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	Products   ProductStore
	Brands     LabelStore
	Categories LabelStore
	Cache      Cache
	CacheKey   func(productID string) string
	CacheTTL   time.Duration
}

func (s *Service) Browse(ctx context.Context, q Query) (Page[Product], error) {
	ps, err := s.Products.ListListed(ctx)
	if err != nil {
		return Page[Product]{}, err
	}
	return Apply(ps, q), nil
}

// Product returns a storefront-visible product, served from cache when possible.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	key := ""
	if s.Cache != nil && s.CacheKey != nil {
		key = s.CacheKey(id)
		var p Product
		if ok, err := s.Cache.GetJSON(ctx, key, &p); err == nil && ok {
			return p, nil
		} else if err != nil {
			slog.WarnContext(ctx, "product cache read", "product_id", id, "err", err)
		}
	}

	p, err := s.Products.GetListed(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if key != "" {
		if err := s.Cache.SetJSON(ctx, key, p, s.CacheTTL); err != nil {
			slog.WarnContext(ctx, "product cache write", "product_id", id, "err", err)
		}
	}
	return p, nil
}

func (s *Service) AdminProducts(ctx context.Context, q Query) (Page[Product], error) {
	ps, err := s.Products.ListAll(ctx)
	if err != nil {
		return Page[Product]{}, err
	}
	return Apply(ps, q), nil
}

func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if p.Name == "" {
		return Product{}, fmt.Errorf("%w: product name is required", ErrInvalid)
	}
	if p.CategoryID == "" || p.BrandID == "" {
		return Product{}, fmt.Errorf("%w: category and brand are required", ErrInvalid)
	}
	if len(p.Variants) == 0 {
		return Product{}, fmt.Errorf("%w: at least one variant is required", ErrInvalid)
	}
	for i := range p.Variants {
		if err := normalizeVariant(&p.Variants[i]); err != nil {
			return Product{}, err
		}
	}
	p.Listed = true
	return s.Products.CreateProduct(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, u ProductUpdate) (Product, error) {
	if u.empty() {
		return Product{}, fmt.Errorf("%w: empty update payload", ErrInvalid)
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return Product{}, fmt.Errorf("%w: product name is required", ErrInvalid)
	}
	if err := s.Products.UpdateProduct(ctx, id, u); err != nil {
		return Product{}, err
	}
	s.invalidate(ctx, id)
	return s.Products.Get(ctx, id)
}

func (s *Service) SetProductListed(ctx context.Context, id string, listed bool) error {
	if err := s.Products.SetProductListed(ctx, id, listed); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) UpsertVariant(ctx context.Context, productID string, v Variant) (Variant, error) {
	if err := normalizeVariant(&v); err != nil {
		return Variant{}, err
	}
	out, err := s.Products.UpsertVariant(ctx, productID, v)
	if err != nil {
		return Variant{}, err
	}
	s.invalidate(ctx, productID)
	return out, nil
}

func normalizeVariant(v *Variant) error {
	v.Size = strings.TrimSpace(v.Size)
	v.Color = strings.TrimSpace(v.Color)
	if v.PriceCents <= 0 {
		return fmt.Errorf("%w: variant price must be positive", ErrInvalid)
	}
	if v.Stock < 0 {
		return fmt.Errorf("%w: variant stock cannot be negative", ErrInvalid)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, productID string) {
	if s.Cache == nil || s.CacheKey == nil {
		return
	}
	if err := s.Cache.Delete(ctx, s.CacheKey(productID)); err != nil {
		slog.WarnContext(ctx, "product cache invalidate", "product_id", productID, "err", err)
	}
}

// InvalidateLabel drops cached detail for every product under the brand or category,
// so listing changes on the label show up on product pages at once.
func (s *Service) InvalidateLabel(ctx context.Context, kind, labelID string) {
	if s.Cache == nil || s.CacheKey == nil {
		return
	}
	ps, err := s.Products.ListAll(ctx)
	if err != nil {
		slog.WarnContext(ctx, "label cache invalidate", "kind", kind, "label_id", labelID, "err", err)
		return
	}
	var keys []string
	for _, p := range ps {
		if (kind == KindBrand && p.BrandID == labelID) || (kind == KindCategory && p.CategoryID == labelID) {
			keys = append(keys, s.CacheKey(p.ID))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.Cache.Delete(ctx, keys...); err != nil {
		slog.WarnContext(ctx, "label cache invalidate", "kind", kind, "label_id", labelID, "err", err)
	}
}

const (
	KindBrand    = "brand"
	KindCategory = "category"
)

// LabelService wraps brand or category storage with input validation.
type LabelService struct {
	Store LabelStore
	Kind  string // KindBrand or KindCategory, used in messages
	// Catalog, when set, has its product cache cleared after label writes.
	Catalog *Service
}

func (s *LabelService) changed(ctx context.Context, id string) {
	if s.Catalog != nil {
		s.Catalog.InvalidateLabel(ctx, s.Kind, id)
	}
}

func (s *LabelService) List(ctx context.Context, onlyListed bool) ([]Label, error) {
	return s.Store.List(ctx, onlyListed)
}

func (s *LabelService) Create(ctx context.Context, name, description string) (Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Label{}, fmt.Errorf("%w: %s name is required", ErrInvalid, s.Kind)
	}
	return s.Store.Create(ctx, name, strings.TrimSpace(description))
}

func (s *LabelService) Update(ctx context.Context, id, name, description string) (Label, error) {
	if strings.TrimSpace(name) == "" {
		return Label{}, fmt.Errorf("%w: %s name is required", ErrInvalid, s.Kind)
	}
	l, err := s.Store.Update(ctx, id, strings.TrimSpace(name), strings.TrimSpace(description))
	if err != nil {
		return Label{}, err
	}
	s.changed(ctx, id)
	return l, nil
}

func (s *LabelService) SetListed(ctx context.Context, id string, listed bool) error {
	if err := s.Store.SetListed(ctx, id, listed); err != nil {
		return err
	}
	s.changed(ctx, id)
	return nil
}

func (s *LabelService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, id)
	return nil
}
