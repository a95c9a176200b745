package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/catalog"
)

type adminCatalogHandler struct{ api *API }

func (h *adminCatalogHandler) Register(r chi.Router) {
	r.Route("/brands", labelRoutes(h.api.Brands, "brand"))
	r.Route("/categories", labelRoutes(h.api.Categories, "category"))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.products)
		r.Post("/", h.createProduct)
		r.Patch("/{id}", h.updateProduct)
		r.Patch("/{id}/listed", h.setProductListed)
		r.Put("/{id}/variants", h.upsertVariant)
	})
}

type labelReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type listedReq struct {
	Listed bool `json:"listed"`
}

// labelRoutes serves the same CRUD surface for brands and categories.
func labelRoutes(svc LabelService, noun string) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			ls, err := svc.List(r.Context(), false)
			if err != nil {
				adminFail(w, r, err)
				return
			}
			adminOK(w, http.StatusOK, J{"items": ls})
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req labelReq
			if err := decode(r, &req); err != nil {
				adminFail(w, r, err)
				return
			}
			l, err := svc.Create(r.Context(), req.Name, req.Description)
			if err != nil {
				adminFail(w, r, err)
				return
			}
			adminOK(w, http.StatusCreated, J{"message": "Created " + noun, "item": l})
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			var req labelReq
			if err := decode(r, &req); err != nil {
				adminFail(w, r, err)
				return
			}
			l, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
			if err != nil {
				adminFail(w, r, err)
				return
			}
			adminOK(w, http.StatusOK, J{"message": "Updated " + noun, "item": l})
		})
		r.Patch("/{id}/listed", func(w http.ResponseWriter, r *http.Request) {
			var req listedReq
			if err := decode(r, &req); err != nil {
				adminFail(w, r, err)
				return
			}
			if err := svc.SetListed(r.Context(), chi.URLParam(r, "id"), req.Listed); err != nil {
				adminFail(w, r, err)
				return
			}
			adminOK(w, http.StatusOK, J{"message": listedMessage(noun, req.Listed)})
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				adminFail(w, r, err)
				return
			}
			adminOK(w, http.StatusOK, J{"message": "Deleted " + noun})
		})
	}
}

func listedMessage(noun string, listed bool) string {
	if listed {
		return "Listed " + noun
	}
	return "Unlisted " + noun
}

func (h *adminCatalogHandler) products(w http.ResponseWriter, r *http.Request) {
	page, err := h.api.Catalog.AdminProducts(r.Context(), queryFrom(r))
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{
		"products":     page.Items,
		"current_page": page.CurrentPage,
		"total_pages":  page.TotalPages,
		"total_items":  page.TotalItems,
	})
}

func (h *adminCatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decode(r, &p); err != nil {
		adminFail(w, r, err)
		return
	}
	p, err := h.api.Catalog.CreateProduct(r.Context(), p)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusCreated, J{"message": "Created product", "product": p})
}

func (h *adminCatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var u catalog.ProductUpdate
	if err := decode(r, &u); err != nil {
		adminFail(w, r, err)
		return
	}
	p, err := h.api.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": "Updated product", "product": p})
}

func (h *adminCatalogHandler) setProductListed(w http.ResponseWriter, r *http.Request) {
	var req listedReq
	if err := decode(r, &req); err != nil {
		adminFail(w, r, err)
		return
	}
	if err := h.api.Catalog.SetProductListed(r.Context(), chi.URLParam(r, "id"), req.Listed); err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": listedMessage("product", req.Listed)})
}

func (h *adminCatalogHandler) upsertVariant(w http.ResponseWriter, r *http.Request) {
	var v catalog.Variant
	if err := decode(r, &v); err != nil {
		adminFail(w, r, err)
		return
	}
	v, err := h.api.Catalog.UpsertVariant(r.Context(), chi.URLParam(r, "id"), v)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": "Saved variant", "variant": v})
}
