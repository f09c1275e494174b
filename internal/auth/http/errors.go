package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bookit/internal/auth/audit"
	"github.com/aussiebroadwan/bookit/internal/auth/service"
	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/aussiebroadwan/bookit/pkg/httpx"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
)

// serviceErrors maps the service sentinels to their response.
var serviceErrors = []struct {
	err error
	api *authsdk.APIError
}{
	{service.ErrInvalidInput, authsdk.ErrInvalidRequest},
	{service.ErrAccountExists, authsdk.ErrAccountExists},
	{service.ErrAccountNotFound, authsdk.ErrAccountNotFound},
	{service.ErrInvalidOTP, authsdk.ErrInvalidOTP},
	{service.ErrMFANotInitialized, authsdk.ErrMFANotInitialized},
	{service.ErrMFANotEnabled, authsdk.ErrMFANotEnabled},
	{service.ErrMFAAlreadyEnabled, authsdk.ErrMFAAlreadyEnabled},
	{service.ErrInvalidMFACode, authsdk.ErrInvalidMFACode},
	{service.ErrInvalidPassword, authsdk.ErrInvalidPassword},
	{service.ErrInvalidExportFormat, authsdk.ErrInvalidRequest.WithMessage("Invalid format. Use 'json' or 'csv'")},
}

// writeServiceError writes the response for an error returned by a service.
// Anything unrecognised is logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			m.api.WriteError(w)
			return
		}
	}
	slogx.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
	authsdk.ErrServerError.WriteError(w)
}

// decodeBody reads a JSON body into v and attaches its redacted form to the
// audit context. It writes the 400 itself and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) (*http.Request, bool) {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return r, false
	}
	return r.WithContext(audit.WithPayload(r.Context(), v)), true
}

// actor identifies the bearer of the request token.
func actor(r *http.Request) *audit.Actor {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}
	return &audit.Actor{ID: claims.Subject, Email: claims.Email, Role: claims.Role}
}
