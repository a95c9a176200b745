package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/dashboard"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/promo"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/ariefcatur/go-storefront/internal/wallet"
)

// J is a JSON object body.
type J map[string]any

var (
	errBadJSON            = errors.New("invalid json body")
	errCheckoutInProgress = errors.New("a checkout with this idempotency key is already in progress")
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// storeOK answers storefront routes: {"val": true, ...}.
func storeOK(w http.ResponseWriter, code int, body J) {
	if body == nil {
		body = J{}
	}
	body["val"] = true
	writeJSON(w, code, body)
}

// adminOK answers admin routes: {"success": true, ...}.
func adminOK(w http.ResponseWriter, code int, body J) {
	if body == nil {
		body = J{}
	}
	body["success"] = true
	writeJSON(w, code, body)
}

func storeFail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := classify(r, err)
	writeJSON(w, code, J{"val": false, "msg": msg})
}

func adminFail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := classify(r, err)
	writeJSON(w, code, J{"success": false, "message": msg})
}

var statusByErr = []struct {
	err  error
	code int
}{
	{errBadJSON, http.StatusBadRequest},
	{errCheckoutInProgress, http.StatusConflict},

	{catalog.ErrNotFound, http.StatusNotFound},
	{cart.ErrNotFound, http.StatusNotFound},
	{orders.ErrNotFound, http.StatusNotFound},
	{promo.ErrNotFound, http.StatusNotFound},
	{users.ErrNotFound, http.StatusNotFound},

	{catalog.ErrNameTaken, http.StatusConflict},
	{catalog.ErrInUse, http.StatusConflict},
	{promo.ErrCodeTaken, http.StatusConflict},
	{orders.ErrInvalidTransition, http.StatusConflict},
	{orders.ErrOutOfStock, http.StatusConflict},
	{orders.ErrUnavailable, http.StatusConflict},
	{cart.ErrOutOfStock, http.StatusConflict},
	{cart.ErrLimitReached, http.StatusConflict},
	{cart.ErrUnavailable, http.StatusConflict},

	{catalog.ErrInvalid, http.StatusBadRequest},
	{promo.ErrInvalid, http.StatusBadRequest},
	{promo.ErrRejected, http.StatusBadRequest},
	{orders.ErrInvalid, http.StatusBadRequest},
	{orders.ErrEmptyCart, http.StatusBadRequest},
	{orders.ErrCODLimit, http.StatusBadRequest},
	{orders.ErrReturnWindow, http.StatusBadRequest},
	{cart.ErrInvalidQty, http.StatusBadRequest},
	{users.ErrReferral, http.StatusBadRequest},
	{dashboard.ErrInvalid, http.StatusBadRequest},
	{wallet.ErrInsufficientBalance, http.StatusBadRequest},
}

// classify maps domain errors to a status and a message safe to show. Anything else is a 500.
func classify(r *http.Request, err error) (int, string) {
	for _, e := range statusByErr {
		if errors.Is(err, e.err) {
			return e.code, err.Error()
		}
	}
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	return http.StatusInternalServerError, "Internal server error"
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJSON
	}
	return nil
}

func intParam(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func int64Param(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v
}
