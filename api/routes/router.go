package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/oms-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/oms-backend/api/controllers/orders"
	"github.com/angelmondragon/oms-backend/api/middleware"
	"github.com/angelmondragon/oms-backend/internal/customers"
	"github.com/angelmondragon/oms-backend/internal/orders"
	"github.com/angelmondragon/oms-backend/internal/products"
	"github.com/angelmondragon/oms-backend/internal/reports"
	"github.com/angelmondragon/oms-backend/pkg/config"
	"github.com/angelmondragon/oms-backend/pkg/logger"
	"github.com/angelmondragon/oms-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/oms-backend/pkg/redis"
)

// Deps groups everything the HTTP surface needs. RedisPinger and
// IdempotencyStore stay nil when Redis is not configured.
type Deps struct {
	DBPinger         controllers.Pinger
	RedisPinger      controllers.Pinger
	IdempotencyStore pkgredis.IdempotencyStore
	HTTPMetrics      *metrics.HTTPMetrics
	MetricsHandler   http.Handler

	Customers customers.Service
	Products  products.Service
	Orders    orders.Service
	Reports   reports.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if cfg.Metrics.Enabled && deps.MetricsHandler != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Route("/{customerId}", func(r chi.Router) {
				r.Get("/", controllers.CustomerGet(deps.Customers, logg))
				r.Put("/", controllers.CustomerUpdate(deps.Customers, logg))
				r.Delete("/", controllers.CustomerDelete(deps.Customers, logg))
				r.Get("/orders", ordercontrollers.ListByCustomer(deps.Orders, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.ProductGet(deps.Products, logg))
				r.Put("/", controllers.ProductUpdate(deps.Products, logg))
				r.Delete("/", controllers.ProductDelete(deps.Products, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Idempotency(deps.IdempotencyStore, cfg.Idempotency.TTL, logg))
			r.Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/", ordercontrollers.ListByDateRange(deps.Orders, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", ordercontrollers.Detail(deps.Orders, logg))
				r.Put("/", ordercontrollers.ReplaceItems(deps.Orders, logg))
				r.Delete("/", ordercontrollers.Delete(deps.Orders, logg))
				r.Patch("/status", ordercontrollers.SetStatus(deps.Orders, logg))
			})
		})

		r.Get("/reports/top-products", controllers.TopProducts(deps.Reports, logg))
	})

	return r
}
