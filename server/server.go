// Package server assembles the HTTP router: chi middleware, the request
// pipeline with its session and principal stages, and every feature's routes.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/yelpcamp-go/auth"
	"github.com/user/yelpcamp-go/campgrounds"
	"github.com/user/yelpcamp-go/config"
	"github.com/user/yelpcamp-go/demo"
	"github.com/user/yelpcamp-go/farms"
	"github.com/user/yelpcamp-go/observability"
	"github.com/user/yelpcamp-go/pipeline"
	"github.com/user/yelpcamp-go/session"
	"github.com/user/yelpcamp-go/users"
)

// Options carries what the router needs beyond the stores.
type Options struct {
	Config *config.AppConfig
	Logger *slog.Logger
	// Ping reports database health for /healthz. Nil means always healthy.
	Ping func(ctx context.Context) error
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// App is the assembled application.
type App struct {
	Handler  http.Handler
	Sessions *session.Manager
	Auth     *auth.AuthService
}

// New wires stores, services and handlers into a router.
func New(stores *Stores, opts Options) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authService, err := auth.NewAuthService(stores.Users, cfg.Auth.BcryptCost, logger)
	if err != nil {
		return nil, err
	}
	manager := session.NewManager(
		stores.Sessions,
		session.NewCodec(cfg.Auth.SessionSecret),
		cfg.Auth.SessionTTL,
		cfg.Auth.SecureCookie,
		logger,
	)

	p := pipeline.New(pipeline.NewErrorHandler(cfg.Server.IsDevelopment(), logger), logger)
	p.Use(pipeline.Sessions(manager), auth.LoadPrincipal(authService))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-HTTP-Method-Override"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(pipeline.MethodOverride)
	r.Use(observability.Middleware)

	r.Get("/healthz", healthz(opts.Ping))
	r.Handle("/metrics", promhttp.Handler())

	demo.RegisterRoutes(r, p)
	demo.RegisterAdminRoutes(r, p, cfg.Auth.AdminPass)

	authHandlers := auth.NewHandlers(authService)
	r.Method(http.MethodGet, auth.RegisterPath, p.Handle(authHandlers.RegisterForm))
	r.Method(http.MethodPost, auth.RegisterPath, p.Handle(authHandlers.Register))
	r.Method(http.MethodGet, auth.LoginPath, p.Handle(authHandlers.LoginForm))
	r.Method(http.MethodPost, auth.LoginPath, p.Handle(authHandlers.Login))
	r.Method(http.MethodGet, "/logout", p.Handle(authHandlers.Logout))

	userHandlers := users.NewUserHandlers(users.NewUserService(stores.Users))
	r.Route("/users", func(r chi.Router) {
		r.Method(http.MethodGet, "/me", p.Handle(auth.RequireAuthenticated, pipeline.HandlerFunc(userHandlers.GetProfile)))
		r.Method(http.MethodPut, "/me", p.Handle(auth.RequireAuthenticated, pipeline.HandlerFunc(userHandlers.UpdateProfile)))
	})

	campgroundService := campgrounds.NewService(stores.Campgrounds, stores.Reviews, stores.Users)
	campgrounds.NewHandlers(campgroundService).RegisterRoutes(r, p)

	farmService := farms.NewService(stores.Farms, stores.Products)
	farms.NewHandlers(farmService).RegisterRoutes(r, p)

	return &App{Handler: r, Sessions: manager, Auth: authService}, nil
}

func healthz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
