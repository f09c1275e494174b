package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/audit"
	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/service"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/aussiebroadwan/bookit/pkg/httpx"
	"github.com/aussiebroadwan/bookit/pkg/jwtx"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/bookit/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	Audit          *audit.Logger
	AuthService    *service.AuthService
	AccountService *service.AccountService
	MFAService     *service.MFAService
	AuditService   *service.AuditService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion, corsOrigins string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins),
		audit.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerActivityLogs()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			BookIt Authentication Service API
//	@version		0.1.0
//	@description	Registration, login with lockout and password expiry, TOTP multi-factor authentication and the
//	@description	admin activity log of the BookIt room booking platform.
//	@description
//	@description				Session tokens are signed with EdDSA and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/bookit
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:    r.AuthService,
		AccountService: r.AccountService,
	}
	mfa := &MFAHandler{MFAService: r.MFAService}

	// Public endpoints - strict rate limit by IP (credential and code guessing)
	public := func(hf http.HandlerFunc) http.Handler {
		return httpx.Chain(hf, httpx.RateLimitByIP(httpx.StrictLimit))
	}

	r.Mux.Handle("POST /v1/auth/register", public(h.HandleRegister))
	r.Mux.Handle("POST /v1/auth/verify-otp", public(h.HandleVerifyOTP))
	r.Mux.Handle("POST /v1/auth/resend-otp", public(h.HandleResendOTP))
	r.Mux.Handle("POST /v1/auth/login", public(h.HandleLogin))
	r.Mux.Handle("POST /v1/auth/mfa/verify/{userId}", public(mfa.HandleVerify))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	secured := func(hf http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(hf,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	// Code and password checks - strict rate limit by user
	r.Mux.Handle("POST /v1/mfa/setup", secured(h.HandleSetup, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/mfa/setup/verify", secured(h.HandleVerifySetup, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/mfa/disable", secured(h.HandleDisable, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/mfa/backup-codes", secured(h.HandleRegenerateBackupCodes, httpx.StrictLimit))
	r.Mux.Handle("GET /v1/mfa/status", secured(h.HandleStatus, httpx.ModerateLimit))
}

func (r *Router) registerActivityLogs() {
	h := &ActivityLogHandler{AuditService: r.AuditService}

	admin := func(hf http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(hf,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(r.auditDenied, string(domain.RoleAdmin)),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("GET /v1/activity-logs", admin(h.HandleList, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/activity-logs/users/{userId}", admin(h.HandleListForUser, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/activity-logs/stats", admin(h.HandleStats, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/activity-logs/summary", admin(h.HandleSummary, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/activity-logs/export", admin(h.HandleExport, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/activity-logs/old", admin(h.HandlePurge, httpx.StrictLimit))
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics",
		httpx.Chain(promhttp.Handler(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// auditDenied records an authenticated request turned away by a role check.
func (r *Router) auditDenied(req *http.Request, required []string) {
	if r.Audit == nil {
		return
	}
	a := actor(req)
	role := "unknown"
	if a != nil && a.Role != "" {
		role = a.Role
	}
	desc := fmt.Sprintf("Access denied: role %s attempted %s %s (requires %s)",
		role, req.Method, req.URL.Path, strings.Join(required, " or "))

	r.Audit.Record(req.Context(), audit.Entry{
		Actor:        a,
		Action:       domain.ActionAccessDenied,
		Description:  desc,
		Severity:     domain.SeverityHigh,
		Failed:       true,
		ErrorMessage: desc,
		StatusCode:   http.StatusForbidden,
		ResourceType: domain.ResourceSystem,
	})
}
