package routes

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/hotel-listing/app"
	"github.com/upb/hotel-listing/handlers"
	"github.com/upb/hotel-listing/middleware"
	"github.com/upb/hotel-listing/models"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location", "X-Request-Id"},
		MaxAge:         deps.Config.CORS.MaxAge,
	}))

	health := newHealthHandler(deps)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	auth := deps.AuthMiddleware
	admin := auth.RequireRole(models.RoleAdministrator)

	account := handlers.NewAccountHandler(deps.Auth, deps.Logger.Named("account"))
	r.Route("/api/account", func(r chi.Router) {
		r.Post("/register", account.HandleRegister)
		r.Post("/login", account.HandleLogin)
		r.Post("/refreshtoken", account.HandleRefreshToken)
	})

	countries := handlers.NewCountryHandler(deps.Countries, deps.Logger.Named("countries"))
	r.Route("/api/v1/countries", func(r chi.Router) {
		r.Use(chimw.SetHeader("api-deprecated-versions", "1.0"))
		r.Use(chimw.SetHeader("api-supported-versions", "2.0"))
		r.Use(auth.RequireAuth)
		r.Get("/GetAll", countries.HandleGetAll)
		r.Get("/", countries.HandleList)
		r.Post("/", countries.HandleCreate)
		r.Get("/{id}", countries.HandleGet)
		r.Put("/{id}", countries.HandleUpdate)
		r.With(admin).Delete("/{id}", countries.HandleDelete)
	})

	r.Route("/api/v2/countries", func(r chi.Router) {
		r.Use(chimw.SetHeader("api-supported-versions", "2.0"))
		r.Get("/", countries.HandleQuery)
		r.Get("/{id}", countries.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/", countries.HandleCreate)
			r.Put("/{id}", countries.HandleUpdate)
			r.With(admin).Delete("/{id}", countries.HandleDelete)
		})
	})

	hotels := handlers.NewHotelHandler(deps.Hotels, deps.Logger.Named("hotels"))
	r.Route("/api/hotels", func(r chi.Router) {
		r.Get("/GetAll", hotels.HandleGetAll)
		r.Get("/", hotels.HandleList)
		r.Get("/{id}", hotels.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/", hotels.HandleCreate)
			r.Put("/{id}", hotels.HandleUpdate)
			r.With(admin).Delete("/{id}", hotels.HandleDelete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}

func newHealthHandler(deps *app.Dependencies) *handlers.HealthHandler {
	var db *sql.DB
	if deps.DB != nil {
		db = deps.DB.DB
	}
	h := handlers.NewHealthHandler(db, deps.Logger.Named("health"))
	if deps.Redis != nil {
		h.WithCheck("redis", func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
	}
	return h
}
