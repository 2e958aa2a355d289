package api

import (
	"context"
	"fmt"
	"net/http"

	"eventhub/internal/auth"
	"eventhub/internal/config"
	"eventhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Server exposes the REST API.
type Server struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	tokens   *auth.TokenManager
	validate *validator.Validate
	limiter  *rateLimiter
	server   *http.Server

	authService    *service.AuthService
	eventService   *service.EventService
	bookingService *service.BookingService
	cartService    *service.CartService
	userService    *service.UserService
	exportService  *service.ExportService
}

type Services struct {
	Auth    *service.AuthService
	Events  *service.EventService
	Booking *service.BookingService
	Cart    *service.CartService
	Users   *service.UserService
	Export  *service.ExportService
}

func NewServer(cfg *config.Config, tokens *auth.TokenManager, services Services, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:            cfg,
		logger:         logger,
		tokens:         tokens,
		validate:       validator.New(),
		limiter:        newRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		authService:    services.Auth,
		eventService:   services.Events,
		bookingService: services.Booking,
		cartService:    services.Cart,
		userService:    services.Users,
		exportService:  services.Export,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logging)
	r.Use(s.rateLimit)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Get("/google", s.handleGoogleAuth)
			r.Get("/google/callback", s.handleGoogleCallback)
			r.Post("/forgot-password", s.handleForgotPassword)
			r.Put("/reset-password/{token}", s.handleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.handleMe)
				r.Get("/logout", s.handleLogout)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Get("/categories", s.handleEventCategories)
			r.Get("/{id}", s.handleGetEvent)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth, requireRole(RoleAdmin))
				r.Post("/", s.handleCreateEvent)
				r.Put("/{id}", s.handleUpdateEvent)
				r.Delete("/{id}", s.handleDeleteEvent)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/decoration-packages", s.handleDecorationPackages)
			r.Post("/", s.handleCreateBooking)
			r.Get("/", s.handleMyBookings)
			r.Get("/{id}", s.handleGetBooking)
			r.Post("/{id}/confirm-payment", s.handleConfirmPayment)
			r.Put("/{id}/cancel", s.handleCancelBooking)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleGetCart)
			r.Post("/add", s.handleAddToCart)
			r.Put("/{itemID}", s.handleUpdateCartItem)
			r.Delete("/{itemID}", s.handleRemoveCartItem)
			r.Delete("/", s.handleClearCart)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth, requireRole(RoleAdmin))
			r.Get("/users", s.handleAdminUsers)
			r.Get("/dashboard", s.handleAdminDashboard)
			r.Put("/users/{id}/role", s.handleAdminChangeRole)
			r.Put("/users/{id}/status", s.handleAdminToggleUser)
			r.Delete("/users/{id}", s.handleAdminDeleteUser)
			r.Get("/bookings", s.handleAdminBookings)
			r.Get("/bookings/export", s.handleAdminBookingsExport)
			r.Put("/bookings/{id}/status", s.handleAdminBookingStatus)
		})
	})

	return r
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
