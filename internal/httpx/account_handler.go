package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/auth"
)

type accountHandler struct{ api *API }

func (h *accountHandler) Register(r chi.Router) {
	r.Get("/wallet", h.wallet)
	r.Get("/referral", h.referral)
	r.Post("/referral/redeem", h.redeem)
}

func (h *accountHandler) wallet(w http.ResponseWriter, r *http.Request) {
	p, err := h.api.Wallet.History(r.Context(), auth.UserID(r.Context()), intParam(r, "page", 1), intParam(r, "limit", 10))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{
		"balance_cents":      p.BalanceCents,
		"transactions":       p.Transactions,
		"current_page":       p.CurrentPage,
		"total_pages":        p.TotalPages,
		"total_transactions": p.TotalTransactions,
		"limit":              p.Limit,
	})
}

func (h *accountHandler) referral(w http.ResponseWriter, r *http.Request) {
	ref, err := h.api.Users.Referral(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"referral": ref})
}

func (h *accountHandler) redeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decode(r, &req); err != nil {
		storeFail(w, r, err)
		return
	}
	reward, err := h.api.Users.RedeemReferral(r.Context(), auth.UserID(r.Context()), req.Code)
	if err != nil {
		storeFail(w, r, err)
		return
	}
	storeOK(w, http.StatusOK, J{"msg": "Referral reward credited", "reward_cents": reward})
}
