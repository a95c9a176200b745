package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/dashboard"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

type adminOpsHandler struct{ api *API }

func (h *adminOpsHandler) Register(r chi.Router) {
	r.Get("/users", h.users)
	r.Patch("/users/{id}/block", h.block)

	r.Get("/orders", h.orders)
	r.Get("/orders/{id}", h.order)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/cancel", h.cancel)
	r.Post("/orders/{id}/return", h.decideReturn)

	r.Get("/dashboard", h.dashboard)
}

func (h *adminOpsHandler) users(w http.ResponseWriter, r *http.Request) {
	p, err := h.api.Users.List(r.Context(), r.URL.Query().Get("search"), intParam(r, "page", 1), intParam(r, "limit", 10))
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{
		"users":        p.Users,
		"current_page": p.CurrentPage,
		"total_pages":  p.TotalPages,
		"total_users":  p.TotalUsers,
		"limit":        p.Limit,
	})
}

func (h *adminOpsHandler) block(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Blocked bool `json:"blocked"`
	}
	if err := decode(r, &req); err != nil {
		adminFail(w, r, err)
		return
	}
	if err := h.api.Users.SetBlocked(r.Context(), chi.URLParam(r, "id"), req.Blocked); err != nil {
		adminFail(w, r, err)
		return
	}
	msg := "User unblocked"
	if req.Blocked {
		msg = "User blocked"
	}
	adminOK(w, http.StatusOK, J{"message": msg})
}

func (h *adminOpsHandler) orders(w http.ResponseWriter, r *http.Request) {
	status := orders.Status(r.URL.Query().Get("status"))
	p, err := h.api.Orders.AdminList(r.Context(), status, intParam(r, "page", 1), intParam(r, "limit", 10))
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{
		"orders":       p.Orders,
		"current_page": p.CurrentPage,
		"total_pages":  p.TotalPages,
		"total_orders": p.TotalOrders,
		"limit":        p.Limit,
	})
}

func (h *adminOpsHandler) order(w http.ResponseWriter, r *http.Request) {
	o, err := h.api.Orders.AdminGet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"order": o})
}

func (h *adminOpsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"status"`
		Note   string        `json:"note"`
	}
	if err := decode(r, &req); err != nil {
		adminFail(w, r, err)
		return
	}
	o, err := h.api.Orders.UpdateStatus(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), req.Status, req.Note)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": "Order status updated", "order": o})
}

func (h *adminOpsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req reasonReq
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			adminFail(w, r, err)
			return
		}
	}
	by := orders.Actor{UserID: auth.UserID(r.Context()), Admin: true}
	o, err := h.api.Orders.Cancel(r.Context(), by, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"message": "Order cancelled", "order": o})
}

func (h *adminOpsHandler) decideReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Approve bool   `json:"approve"`
		Note    string `json:"note"`
	}
	if err := decode(r, &req); err != nil {
		adminFail(w, r, err)
		return
	}
	o, err := h.api.Orders.DecideReturn(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), req.Approve, req.Note)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	msg := "Return rejected"
	if req.Approve {
		msg = "Return approved"
	}
	adminOK(w, http.StatusOK, J{"message": msg, "order": o})
}

const dateLayout = "2006-01-02"

// dashboard reads from and to as dates; to is inclusive.
func (h *adminOpsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"))
	if err != nil {
		adminFail(w, r, err)
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		adminFail(w, r, err)
		return
	}
	if !to.IsZero() {
		to = to.Add(24 * time.Hour)
	}
	rep, err := h.api.Reports.Report(r.Context(), dashboard.Period(q.Get("period")), from, to)
	if err != nil {
		adminFail(w, r, err)
		return
	}
	adminOK(w, http.StatusOK, J{"report": rep})
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dates use YYYY-MM-DD", dashboard.ErrInvalid)
	}
	return t, nil
}
