package audit

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/bookit/pkg/httpx"
)

// Request is the transport context captured with an event.
type Request struct {
	IPAddress string
	UserAgent string
	Method    string
	URL       string
	SessionID string
	Body      map[string]any // already redacted
}

type requestKey struct{}

// FromHTTP captures the fields of r that an audit event records.
func FromHTTP(r *http.Request) *Request {
	ua := strings.TrimSpace(r.UserAgent())
	if ua == "" {
		ua = "unknown"
	}
	return &Request{
		IPAddress: httpx.ClientIP(r),
		UserAgent: ua,
		Method:    r.Method,
		URL:       r.URL.RequestURI(),
		SessionID: r.Header.Get("Session-Id"),
	}
}

// WithRequest stores req on ctx for every event recorded under it.
func WithRequest(ctx context.Context, req *Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

// RequestFromContext returns the captured request, or nil outside one.
func RequestFromContext(ctx context.Context) *Request {
	req, _ := ctx.Value(requestKey{}).(*Request)
	return req
}

// WithPayload attaches the redacted form of a decoded request body to the
// request on ctx. It is a no-op outside a request.
func WithPayload(ctx context.Context, payload any) context.Context {
	req := RequestFromContext(ctx)
	if req == nil {
		return ctx
	}
	cp := *req
	cp.Body = Redact(toDocument(payload))
	return WithRequest(ctx, &cp)
}

// Middleware captures the request context for the audit logger.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequest(r.Context(), FromHTTP(r))))
	})
}
