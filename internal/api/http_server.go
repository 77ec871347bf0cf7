package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sportspot/internal/config"
	"sportspot/internal/domain"
	"sportspot/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the application services behind the HTTP API.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Venues   *service.VenueService
	Bookings *service.BookingService
	Store    Pinger
}

// HTTPServer exposes the JSON API.
type HTTPServer struct {
	cfg      config.APIConfig
	auth     *service.AuthService
	users    *service.UserService
	venues   *service.VenueService
	bookings *service.BookingService
	store    Pinger
	limiter  *rateLimiter
	logger   *zerolog.Logger
	handler  http.Handler
	server   *http.Server
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		auth:     svc.Auth,
		users:    svc.Users,
		venues:   svc.Venues,
		bookings: svc.Bookings,
		store:    svc.Store,
		limiter:  newRateLimiter(cfg.RateLimit),
		logger:   logger,
	}

	router := srv.routes()
	srv.handler = srv.recoverMiddleware(
		srv.requestIDMiddleware(
			srv.loggingMiddleware(
				srv.corsMiddleware(
					srv.rateLimitMiddleware(router)))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}
	return srv
}

func (s *HTTPServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, s.logger, domain.NotFound("route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: errorBody{
			Kind:    domain.KindValidation,
			Message: "method not allowed",
		}})
	})

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	v1.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/auth/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	v1.HandleFunc("/auth/reset-password", s.handleResetPassword).Methods(http.MethodPost)
	v1.Handle("/auth/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)

	v1.Handle("/profile", s.authed(s.handleGetProfile)).Methods(http.MethodGet)
	v1.Handle("/profile", s.authed(s.handleUpdateProfile)).Methods(http.MethodPut)

	v1.HandleFunc("/venues", s.handleListVenues).Methods(http.MethodGet)
	v1.Handle("/venues", s.admin(s.handleCreateVenue)).Methods(http.MethodPost)
	v1.HandleFunc("/venues/featured", s.handleFeaturedVenues).Methods(http.MethodGet)
	v1.HandleFunc("/venues/{id}", s.handleGetVenue).Methods(http.MethodGet)
	v1.Handle("/venues/{id}", s.admin(s.handleUpdateVenue)).Methods(http.MethodPut)
	v1.Handle("/venues/{id}", s.admin(s.handleDeleteVenue)).Methods(http.MethodDelete)
	v1.HandleFunc("/venues/{id}/availability", s.handleVenueAvailability).Methods(http.MethodGet)

	v1.HandleFunc("/bookings/availability", s.handleCheckAvailability).Methods(http.MethodPost)
	v1.Handle("/bookings", s.authed(s.handleListBookings)).Methods(http.MethodGet)
	v1.Handle("/bookings", s.authed(s.handleCreateBooking)).Methods(http.MethodPost)
	v1.Handle("/bookings/{id}", s.authed(s.handleCancelBooking)).Methods(http.MethodDelete)

	v1.Handle("/admin/bookings/export", s.admin(s.handleExportBookings)).Methods(http.MethodGet)

	return r
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			writeError(w, s.logger, domain.Infrastructure("store is unavailable", err))
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ready"})
}
