package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type blockList map[string]bool

func (b blockList) IsBlocked(_ context.Context, userID string) (bool, error) {
	return b[userID], nil
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func serve(m *Middleware, token string, h http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	m.Authenticate(h).ServeHTTP(rr, req)
	return rr
}

func TestAuthenticateStoresIdentity(t *testing.T) {
	m := NewMiddleware(secret, blockList{})
	var got Identity
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	})

	rr := serve(m, sign(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}), h)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.IsAdmin())
}

func TestAuthenticateRejects(t *testing.T) {
	m := NewMiddleware(secret, blockList{"blocked": true})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("handler must not run") })

	cases := map[string]struct {
		token string
		code  int
	}{
		"missing": {"", http.StatusUnauthorized},
		"garbage": {"abc.def.ghi", http.StatusUnauthorized},
		"expired": {sign(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		"no sub":  {sign(t, jwt.MapClaims{"role": "admin"}), http.StatusUnauthorized},
		"blocked": {sign(t, jwt.MapClaims{"sub": "blocked"}), http.StatusForbidden},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := serve(m, tc.token, h)
			assert.Equal(t, tc.code, rr.Code)
			assert.Contains(t, rr.Body.String(), `"val":false`)
		})
	}
}

func TestAuthenticateAdmin(t *testing.T) {
	m := NewMiddleware(secret, nil)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := m.AuthenticateAdmin(ok)

	for token, code := range map[string]int{
		sign(t, jwt.MapClaims{"sub": "a1", "role": RoleAdmin}): http.StatusNoContent,
		sign(t, jwt.MapClaims{"sub": "u1"}):                    http.StatusForbidden,
		"":                                                     http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, code, rr.Code)
		if code != http.StatusNoContent {
			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		}
	}
}

func TestDenyEscapesJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	denyStore(rr, http.StatusForbidden, "blocked \"é\" <user>")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["val"])
	assert.Equal(t, "blocked \"é\" <user>", body["msg"])
}
