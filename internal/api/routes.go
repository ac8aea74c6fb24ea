package api

import (
	"net/http"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter wires the public and authenticated routes. Authenticated routes
// take the caller's user id from the token verified by issuer.
func NewRouter(h *Handlers, issuer *auth.Issuer, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(issuer.Middleware(h.unauthorized))

		r.Post("/registries", h.CreateRegistry)
		r.Get("/registries", h.ListRegistries)
		r.Post("/registries/{registryID}/products", h.CreateProduct)

		r.Get("/products", h.ListProducts)
		r.Delete("/products/{productID}", h.DeleteProduct)

		r.Post("/scrape", h.Scrape)
		r.Get("/scrapes", h.GetScrapes)
		r.Delete("/scrapes", h.ClearScrapes)
	})

	return r
}
