package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/promo"
)

type adminPromoHandler struct{ api *API }

func (h *adminPromoHandler) Register(r chi.Router) {
	r.Route("/coupons", func(r chi.Router) {
		r.Get("/", h.coupons)
		r.Post("/", h.createCoupon)
		r.Put("/{id}", h.updateCoupon)
		r.Patch("/{id}/active", h.setCouponActive)
		r.Delete("/{id}", h.deleteCoupon)
	})
	r.Route("/offers", func(r chi.Router) {
		r.Get("/", h.offers)
		r.Post("/", h.createOffer)
		r.Put("/{id}", h.updateOffer)
		r.Patch("/{id}/active", h.setOfferActive)
		r.Delete("/{id}", h.deleteOffer)
	})
}

type activeReq struct {
	Active bool `json:"active"`
}

func (h *adminPromoHandler) coupons(w http.ResponseWriter, r *http.Request) {
	cs, err := h.api.Promo.Coupons(r.Context())
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"coupons": cs})
}

func (h *adminPromoHandler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var c promo.Coupon
	if err := decode(r, &c); err != nil {
		adminFail(w, r, err)
		return
	}
	c, err := h.api.Promo.CreateCoupon(r.Context(), c)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusCreated, J{"message": "Coupon created", "coupon": c})
}

func (h *adminPromoHandler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var c promo.Coupon
	if err := decode(r, &c); err != nil {
		adminFail(w, r, err)
		return
	}
	c, err := h.api.Promo.UpdateCoupon(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": "Coupon updated", "coupon": c})
}

func (h *adminPromoHandler) setCouponActive(w http.ResponseWriter, r *http.Request) {
	var req activeReq
	if err := decode(r, &req); err != nil {
		adminFail(w, r, err)
		return
	}
	if err := h.api.Promo.SetCouponActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": activeMessage("Coupon", req.Active)})
}

func (h *adminPromoHandler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.api.Promo.DeleteCoupon(r.Context(), chi.URLParam(r, "id")); err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": "Coupon deleted"})
}

func (h *adminPromoHandler) offers(w http.ResponseWriter, r *http.Request) {
	list, err := h.api.Promo.Offers(r.Context())
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"offers": list})
}

func (h *adminPromoHandler) createOffer(w http.ResponseWriter, r *http.Request) {
	var o promo.Offer
	if err := decode(r, &o); err != nil {
		adminFail(w, r, err)
		return
	}
	o, err := h.api.Promo.CreateOffer(r.Context(), o)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusCreated, J{"message": "Offer created", "offer": o})
}

func (h *adminPromoHandler) updateOffer(w http.ResponseWriter, r *http.Request) {
	var o promo.Offer
	if err := decode(r, &o); err != nil {
		adminFail(w, r, err)
		return
	}
	o, err := h.api.Promo.UpdateOffer(r.Context(), chi.URLParam(r, "id"), o)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": "Offer updated", "offer": o})
}

func (h *adminPromoHandler) setOfferActive(w http.ResponseWriter, r *http.Request) {
	var req activeReq
	if err := decode(r, &req); err != nil {
		adminFail(w, r, err)
		return
	}
	if err := h.api.Promo.SetOfferActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": activeMessage("Offer", req.Active)})
}

func (h *adminPromoHandler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.api.Promo.DeleteOffer(r.Context(), chi.URLParam(r, "id")); err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": "Offer deleted"})
}

func activeMessage(noun string, active bool) string {
	if active {
		return noun + " activated"
	}
	return noun + " deactivated"
}
