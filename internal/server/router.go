package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailorbooks-backend/internal/config"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/handler"
)

// Handlers groups every route set the router mounts.
type Handlers struct {
	Health      handler.HealthHandler
	Auth        handler.AuthHandler
	Home        handler.HomeHandler
	Docs        handler.DocsHandler
	Customers   handler.CustomerHandler
	Jobs        handler.JobHandler
	Inventory   handler.InventoryHandler
	Sales       handler.SaleHandler
	Collections handler.CollectionHandler
	Receivables handler.ReceivableHandler
	Expenses    handler.ExpenseHandler
	Reports     handler.ReportHandler
	Dashboard   handler.DashboardHandler
	Settings    handler.SettingsHandler
	Activity    handler.ActivityLogHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	limit := cfg.RateLimitPerMin
	if limit <= 0 {
		limit = 200
	}
	r.Use(httprate.LimitByIP(limit, time.Minute))

	h.Health.RegisterRoutes(r)
	h.Auth.RegisterRoutes(r)
	h.Home.RegisterRoutes(r)
	h.Docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// day-to-day books (staff/manager/admin)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleStaff))
			h.Customers.RegisterRoutes(sr)
			h.Jobs.RegisterRoutes(sr)
			h.Inventory.RegisterRoutes(sr)
			h.Sales.RegisterRoutes(sr)
			h.Collections.RegisterRoutes(sr)
			h.Receivables.RegisterRoutes(sr)
		})
		// manager-level (manager/admin)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			h.Inventory.RegisterAdminRoutes(mr)
			h.Expenses.RegisterRoutes(mr)
			h.Reports.RegisterRoutes(mr)
			h.Dashboard.RegisterRoutes(mr)
			h.Settings.RegisterRoutes(mr)
			h.Activity.RegisterRoutes(mr)
			h.Auth.RegisterStaffRoutes(mr)
		})
	})

	return r
}
