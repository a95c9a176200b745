package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

type ordersHandler struct{ api *API }

func (h *ordersHandler) Register(r chi.Router) {
	r.Get("/coupons", h.coupons)
	r.Post("/checkout/quote", h.quote)
	r.Post("/checkout", h.checkout)

	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/cancel", h.cancel)
	r.Post("/orders/{id}/return", h.requestReturn)
}

func (h *ordersHandler) coupons(w http.ResponseWriter, r *http.Request) {
	cs, err := h.api.Promo.Available(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"coupons": cs})
}

func (h *ordersHandler) quote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CouponCode string `json:"coupon_code"`
	}
	if err := decode(r, &req); err != nil {
		storeFail(w, r, err)
		return
	}
	q, err := h.api.Orders.Quote(r.Context(), auth.UserID(r.Context()), req.CouponCode)
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"quote": q})
}

// checkout honours an Idempotency-Key header: the key is reserved before the order is
// placed, so a retry gets the same order and a concurrent duplicate gets a conflict.
func (h *ordersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	var in orders.CheckoutInput
	if err := decode(r, &in); err != nil {
		storeFail(w, r, err)
		return
	}
	in.TraceID = middleware.GetReqID(ctx)

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	reserved := false
	if idemKey != "" && h.api.Idem != nil {
		existing, ok, err := h.api.Idem.Reserve(ctx, userID, idemKey)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "idempotency reserve", "err", err)
		case !ok && existing == redisx.IdemPending:
			storeFail(w, r, errCheckoutInProgress)
			return
		case !ok:
			o, err := h.api.Orders.Get(ctx, userID, existing)
			if err != nil {
				storeFail(w, r, err)
				return
			}
			storeOK(w, http.StatusOK, J{"msg": "Order already placed", "order": o, "idempotent": true})
			return
		default:
			reserved = true
		}
	}

	o, err := h.api.Orders.Checkout(ctx, userID, in)
	if err != nil {
		if reserved {
			if rerr := h.api.Idem.Release(ctx, userID, idemKey); rerr != nil {
				slog.WarnContext(ctx, "idempotency release", "err", rerr)
			}
		}
		storeFail(w, r, err)
		return
	}
	if reserved {
		if err := h.api.Idem.Remember(ctx, userID, idemKey, o.ID); err != nil {
			slog.WarnContext(ctx, "idempotency remember", "order_id", o.ID, "err", err)
		}
	}
	storeOK(w, http.StatusCreated, J{"msg": "Order placed", "order": o})
}

func (h *ordersHandler) list(w http.ResponseWriter, r *http.Request) {
	p, err := h.api.Orders.List(r.Context(), auth.UserID(r.Context()), intParam(r, "page", 1), intParam(r, "limit", 10))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{
		"orders":       p.Orders,
		"current_page": p.CurrentPage,
		"total_pages":  p.TotalPages,
		"total_orders": p.TotalOrders,
		"limit":        p.Limit,
	})
}

func (h *ordersHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.api.Orders.Get(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"order": o})
}

type reasonReq struct {
	Reason string `json:"reason"`
}

func (h *ordersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req reasonReq
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			storeFail(w, r, err)
			return
		}
	}
	by := orders.Actor{UserID: auth.UserID(r.Context())}
	o, err := h.api.Orders.Cancel(r.Context(), by, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"msg": "Order cancelled", "order": o})
}

func (h *ordersHandler) requestReturn(w http.ResponseWriter, r *http.Request) {
	var req reasonReq
	if err := decode(r, &req); err != nil {
		storeFail(w, r, err)
		return
	}
	o, err := h.api.Orders.RequestReturn(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"msg": "Return requested", "order": o})
}
