// Package auth reads the identity issued by the external session service from a bearer token.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

const RoleAdmin = "admin"

// BlockChecker reports whether a customer account has been blocked by an admin.
type BlockChecker interface {
	IsBlocked(ctx context.Context, userID string) (bool, error)
}

type Middleware struct {
	secretKey []byte
	blocks    BlockChecker
}

func NewMiddleware(secret string, blocks BlockChecker) *Middleware {
	return &Middleware{secretKey: []byte(secret), blocks: blocks}
}

// Authenticate rejects requests without a valid token and stores the identity in the context.
// Failures use the storefront body {"val": false, "msg": ...}.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return m.authenticate(next, denyStore)
}

// AuthenticateAdmin is Authenticate plus RequireAdmin, answering failures in the admin
// body {"success": false, "message": ...}.
func (m *Middleware) AuthenticateAdmin(next http.Handler) http.Handler {
	return m.authenticate(RequireAdmin(next), denyAdmin)
}

func (m *Middleware) authenticate(next http.Handler, deny denyFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.parse(r.Header.Get("Authorization"))
		if err != nil {
			slog.WarnContext(r.Context(), "invalid token", "err", err)
			deny(w, http.StatusUnauthorized, "Please log in")
			return
		}
		if !id.IsAdmin() && m.blocks != nil {
			blocked, err := m.blocks.IsBlocked(r.Context(), id.UserID)
			if err != nil {
				slog.ErrorContext(r.Context(), "block check failed", "user_id", id.UserID, "err", err)
				deny(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if blocked {
				deny(w, http.StatusForbidden, "Your account has been blocked")
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := FromContext(r.Context()); !ok || !id.IsAdmin() {
			denyAdmin(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) parse(header string) (Identity, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Identity{}, fmt.Errorf("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("unexpected claims type")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("missing sub claim")
	}
	role, _ := claims["role"].(string)
	return Identity{UserID: sub, Role: role}, nil
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// UserID returns the authenticated user id or "".
func UserID(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.UserID
}

type denyFunc func(w http.ResponseWriter, code int, msg string)

func denyStore(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"val": false, "msg": msg})
}

func denyAdmin(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "message": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
