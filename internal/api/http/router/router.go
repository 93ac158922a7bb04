package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	httpctx "github.com/dtroode/folio-server/internal/api/http/context"
	"github.com/dtroode/folio-server/internal/api/http/handler"
	"github.com/dtroode/folio-server/internal/api/http/middleware"
	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
	"github.com/dtroode/folio-server/internal/ratelimit"
)

// Rate limit policy names, used in logs and audit details.
const (
	PolicyLogin = "login"
	PolicyAdmin = "admin"
)

// AuthService is the authentication gateway as seen by the HTTP layer.
type AuthService interface {
	handler.AuthService
	middleware.SessionGuard
}

// Services groups the collaborators the routes dispatch to.
type Services struct {
	Auth    AuthService
	MFA     handler.MFAService
	Audit   handler.AuditReader
	Auditor model.Auditor
	DB      handler.Pinger
}

// Options configures cross-cutting HTTP behavior.
type Options struct {
	Environment       string
	CookieSecure      bool
	SessionTTL        time.Duration
	CORSOrigins       []string
	TrustProxyHeaders bool
	LoginLimiter      ratelimit.Limiter
	AdminLimiter      ratelimit.Limiter
	Clock             model.Clock
}

// Router represents the HTTP router for the admin API.
// It wires handlers, middleware and route registration.
type Router struct {
	services       Services
	options        Options
	contextManager *httpctx.Manager
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
//
// Parameters:
//   - services: The gateway, MFA service, audit reader/recorder and database pinger
//   - options: Cookie, CORS, proxy and rate limit settings
//   - contextManager: The request context manager
//   - logger: The logger for request logging
//
// Returns a pointer to the newly created Router instance.
func New(services Services, options Options, contextManager *httpctx.Manager, logger *logger.Logger) *Router {
	return &Router{
		services:       services,
		options:        options,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the handler chain: recovery, proxy headers, CORS, access
// log, client extraction, then per-route rate limiting and the session guard.
//
// Returns the root http.Handler.
func (r *Router) Register() http.Handler {
	m := mux.NewRouter()
	m.NotFoundHandler = http.HandlerFunc(notFound)

	logging := middleware.NewLogging(r.logger)
	client := middleware.NewClient(r.contextManager)
	m.Use(logging.Handle, client.Handle)

	api := m.PathPrefix("/api/admin").Subrouter()
	r.registerAuthRoutes(api)
	r.registerMFARoutes(api)
	r.registerAdminRoutes(m, api)

	var h http.Handler = m
	if len(r.options.CORSOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(r.options.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
			handlers.AllowCredentials(),
		)(h)
	}
	if r.options.TrustProxyHeaders {
		h = handlers.ProxyHeaders(h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{r.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

func (r *Router) registerAuthRoutes(api *mux.Router) {
	auth := handler.NewAuth(r.services.Auth, r.contextManager, handler.CookieConfig{
		Secure: r.options.CookieSecure,
		MaxAge: r.options.SessionTTL,
	}, r.logger)

	api.Handle("/login", r.login(auth.Login)).Methods(http.MethodPost)
	api.Handle("/login/verify", r.login(auth.VerifyLogin)).Methods(http.MethodPost)
	api.Handle("/logout", r.limited(auth.Logout)).Methods(http.MethodPost)
	api.Handle("/change-password", r.protected(auth.ChangePassword)).Methods(http.MethodPost)
}

func (r *Router) registerMFARoutes(api *mux.Router) {
	mfa := handler.NewMFA(r.services.MFA, r.contextManager, r.logger)

	api.Handle("/mfa/status", r.protected(mfa.Status)).Methods(http.MethodGet)
	api.Handle("/mfa/setup", r.protected(mfa.Setup)).Methods(http.MethodPost)
	api.Handle("/mfa/verify-setup", r.protected(mfa.VerifySetup)).Methods(http.MethodPost)
	api.Handle("/mfa/verify-backup", r.protected(mfa.VerifyBackup)).Methods(http.MethodPost)
	api.Handle("/mfa/regenerate-backup-codes", r.protected(mfa.RegenerateBackupCodes)).Methods(http.MethodPost)
	api.Handle("/mfa/disable", r.protected(mfa.Disable)).Methods(http.MethodPost)
	api.Handle("/password-reset/request", r.protected(mfa.RequestPasswordReset)).Methods(http.MethodPost)
	api.Handle("/password-reset/confirm", r.protected(mfa.ConfirmPasswordReset)).Methods(http.MethodPost)
}

func (r *Router) registerAdminRoutes(m, api *mux.Router) {
	admin := handler.NewAdmin(r.services.Audit, r.services.DB, r.options.Environment, r.options.Clock, r.logger)

	m.HandleFunc("/healthz", admin.Health).Methods(http.MethodGet)
	api.Handle("/status", r.protected(admin.Status)).Methods(http.MethodGet)
	api.Handle("/audit", r.protected(admin.Audit)).Methods(http.MethodGet)
}

// login throttles with the strict login policy.
func (r *Router) login(h http.HandlerFunc) http.Handler {
	return r.limit(r.options.LoginLimiter, PolicyLogin, h)
}

// limited throttles with the admin area policy.
func (r *Router) limited(h http.HandlerFunc) http.Handler {
	return r.limit(r.options.AdminLimiter, PolicyAdmin, h)
}

// protected throttles with the admin area policy, then requires a live session.
func (r *Router) protected(h http.HandlerFunc) http.Handler {
	guard := middleware.NewAuthenticate(r.services.Auth, r.contextManager, r.logger)
	return r.limit(r.options.AdminLimiter, PolicyAdmin, guard.Handle(h))
}

func (r *Router) limit(limiter ratelimit.Limiter, policy string, h http.Handler) http.Handler {
	if limiter == nil {
		return h
	}
	return middleware.NewRateLimit(limiter, policy, r.services.Auditor, r.contextManager, r.logger).Handle(h)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
}

type recoveryLogger struct {
	logger *logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("HTTP handler panic recovered",
		"panic", fmt.Sprint(v...))
}
