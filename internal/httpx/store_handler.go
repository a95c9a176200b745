package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/promo"
)

type storeHandler struct{ api *API }

func (h *storeHandler) Register(r chi.Router) {
	r.Get("/products", h.browse)
	r.Get("/products/{id}", h.product)
	r.Get("/brands", h.brands)
	r.Get("/categories", h.categories)
}

// productCard is a product with its best live offer applied to the list price.
type productCard struct {
	catalog.Product
	OfferPercent        int   `json:"offer_percent"`
	FromPriceCents      int64 `json:"from_price_cents"`
	OfferFromPriceCents int64 `json:"offer_from_price_cents"`
	InStock             bool  `json:"in_stock"`
}

func card(p catalog.Product, offers []promo.Offer, now time.Time) productCard {
	pct := promo.BestPercent(offers, p.ID, p.CategoryID, p.BrandID, now)
	return productCard{
		Product:             p,
		OfferPercent:        pct,
		FromPriceCents:      p.FromPrice(),
		OfferFromPriceCents: promo.ApplyPercent(p.FromPrice(), pct),
		InStock:             p.InStock(),
	}
}

func queryFrom(r *http.Request) catalog.Query {
	q := r.URL.Query()
	return catalog.Query{
		Search:     q.Get("search"),
		CategoryID: q.Get("category"),
		BrandID:    q.Get("brand"),
		MinPrice:   int64Param(r, "min_price"),
		MaxPrice:   int64Param(r, "max_price"),
		Sort:       q.Get("sort"),
		Page:       intParam(r, "page", 1),
		Limit:      intParam(r, "limit", 0),
	}
}

func (h *storeHandler) browse(w http.ResponseWriter, r *http.Request) {
	page, err := h.api.Catalog.Browse(r.Context(), queryFrom(r))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	offers, err := h.api.Promo.LiveOffers(r.Context())
	if err != nil {
		storeFail(w, r, err)
		return
	}
	now := time.Now().UTC()
	cards := make([]productCard, 0, len(page.Items))
	for _, p := range page.Items {
		cards = append(cards, card(p, offers, now))
	}
	storeOK(w, http.StatusOK, J{
		"products":       cards,
		"current_page":   page.CurrentPage,
		"total_pages":    page.TotalPages,
		"total_products": page.TotalItems,
	})
}

func (h *storeHandler) product(w http.ResponseWriter, r *http.Request) {
	p, err := h.api.Catalog.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	offers, err := h.api.Promo.LiveOffers(r.Context())
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"product": card(p, offers, time.Now().UTC())})
}

func (h *storeHandler) brands(w http.ResponseWriter, r *http.Request) {
	bs, err := h.api.Brands.List(r.Context(), true)
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"brands": bs})
}

func (h *storeHandler) categories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.api.Categories.List(r.Context(), true)
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"categories": cs})
}
