package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/bookit/pkg/httpx"
	"github.com/aussiebroadwan/bookit/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr host", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"first forwarded entry", "192.168.1.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "203.0.113.1"},
		{"real ip without forwarded", "192.168.1.1:12345", map[string]string{"X-Real-IP": " 203.0.113.2 "}, "203.0.113.2"},
		{"forwarded beats real ip", "", map[string]string{"X-Forwarded-For": "1.1.1.1", "X-Real-IP": "2.2.2.2"}, "1.1.1.1"},
		{"remote addr without port", "192.168.1.9", nil, "192.168.1.9"},
		{"nothing known", "", nil, httpx.UnknownIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.ClientIP(req))
		})
	}
}

func TestAuthnMiddleware(t *testing.T) {
	signer, err := jwtx.GenerateEdDSASigner("k1")
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keys, "bookit-auth")

	var gotUser, gotRole string
	h := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httpx.UserIDFromContext(r.Context())
		gotRole = httpx.RoleFromContext(r.Context())
		claims, ok := httpx.ClaimsFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "s@example.com", claims.Email)
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewSessionClaims("01ACC", "staff", "s@example.com", nil, time.Hour, "bookit-auth", time.Now()))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/mfa/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "01ACC", gotUser)
		require.Equal(t, "staff", gotRole)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer "))
	})

	t.Run("tampered token", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewSessionClaims("01ACC", "user", "", nil, time.Hour, "bookit-auth", time.Now()))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAnyRole(t *testing.T) {
	var denied []string
	h := httpx.RequireAnyRole(func(_ *http.Request, required []string) {
		denied = required
	}, "admin")(okHandler)

	as := func(role string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/v1/activity-logs", nil)
		return req.WithContext(httpx.ContextWithClaims(req.Context(), jwtx.Claims{Role: role}))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, as("admin"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, denied)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, as("staff"))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, []string{"admin"}, denied)
}

func TestCORS(t *testing.T) {
	h := httpx.CORS("https://app.bookit.example, https://admin.bookit.example")(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/v1/auth/login", nil)
	req.Header.Set("Origin", "https://app.bookit.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "https://app.bookit.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","extra":1}`))
	require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &body))
	require.Equal(t, "a@b.c", body.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.ErrorIs(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &body), httpx.ErrEmptyBody)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &body))
}
