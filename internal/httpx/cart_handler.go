package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/auth"
)

type cartHandler struct{ api *API }

func (h *cartHandler) Register(r chi.Router) {
	r.Get("/cart", h.view)
	r.Post("/cart", h.add)
	r.Patch("/cart/{variantID}", h.setQty)
	r.Delete("/cart/{variantID}", h.remove)

	r.Get("/wishlist", h.wishlist)
	r.Post("/wishlist", h.addWish)
	r.Delete("/wishlist/{productID}", h.removeWish)
}

func (h *cartHandler) view(w http.ResponseWriter, r *http.Request) {
	v, err := h.api.Cart.View(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"cart": v})
}

type cartReq struct {
	VariantID string `json:"variant_id"`
	Qty       int    `json:"qty"`
}

func (h *cartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := decode(r, &req); err != nil {
		storeFail(w, r, err)
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}
	if err := h.api.Cart.Add(r.Context(), auth.UserID(r.Context()), req.VariantID, req.Qty); err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"msg": "Added to cart"})
}

func (h *cartHandler) setQty(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := decode(r, &req); err != nil {
		storeFail(w, r, err)
		return
	}
	if err := h.api.Cart.SetQty(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "variantID"), req.Qty); err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"msg": "Cart updated"})
}

func (h *cartHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.api.Cart.Remove(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "variantID")); err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"msg": "Removed from cart"})
}

func (h *cartHandler) wishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.api.Cart.Wishlist(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"wishlist": items})
}

func (h *cartHandler) addWish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := decode(r, &req); err != nil {
		storeFail(w, r, err)
		return
	}
	if err := h.api.Cart.AddWish(r.Context(), auth.UserID(r.Context()), req.ProductID); err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"msg": "Added to wishlist"})
}

func (h *cartHandler) removeWish(w http.ResponseWriter, r *http.Request) {
	if err := h.api.Cart.RemoveWish(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "productID")); err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"msg": "Removed from wishlist"})
}
