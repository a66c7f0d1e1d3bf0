// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/iyunix/hammer/internal/middleware"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Auth     *AuthHandler
	Profile  *ProfileHandler
	Admin    *AdminHandler
	Sessions middleware.SessionResolver
	Logger   Logger

	// Gatherer backs /metrics; nil leaves the endpoint out.
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(cfg.Sessions, cfg.Logger)

	r.Use(middleware.LoggingMiddleware(cfg.Logger))
	r.Use(middleware.RecoverPanic(cfg.Logger))

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.HandleFunc("/request_code/", cfg.Auth.RequestCode).Methods(http.MethodPost)
	authRoutes.HandleFunc("/verify_code/", cfg.Auth.VerifyCode).Methods(http.MethodPost)
	authRoutes.HandleFunc("/logout/", cfg.Auth.Logout).Methods(http.MethodPost)

	// --- Protected Routes ---
	profileRoutes := r.PathPrefix("/api/profile").Subrouter()
	profileRoutes.Use(authMiddleware)
	profileRoutes.HandleFunc("/", cfg.Profile.GetProfile).Methods(http.MethodGet)
	profileRoutes.HandleFunc("/activate_invite/", cfg.Profile.ActivateInvite).Methods(http.MethodPost)

	if cfg.Admin != nil {
		adminRoutes := r.PathPrefix("/api/admin").Subrouter()
		adminRoutes.Use(authMiddleware)
		adminRoutes.Use(middleware.RequireStaff(cfg.Logger))
		adminRoutes.HandleFunc("/users", cfg.Admin.GetAllUsersHandler).Methods(http.MethodGet)
		adminRoutes.HandleFunc("/users/export", cfg.Admin.ExportUsersCSVHandler).Methods(http.MethodGet)
		adminRoutes.HandleFunc("/users/{id:[0-9]+}", cfg.Admin.DeleteUserHandler).Methods(http.MethodDelete)
		adminRoutes.HandleFunc("/verification_codes/purge", cfg.Admin.PurgeCodesHandler).Methods(http.MethodPost)
	}

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: "the requested resource does not exist"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{ErrorCode: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(r)
}
