package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Estevanavelar/naldogas-backend/api/controllers"
	containercontrollers "github.com/Estevanavelar/naldogas-backend/api/controllers/containers"
	deliverycontrollers "github.com/Estevanavelar/naldogas-backend/api/controllers/deliveries"
	receivablecontrollers "github.com/Estevanavelar/naldogas-backend/api/controllers/receivables"
	salecontrollers "github.com/Estevanavelar/naldogas-backend/api/controllers/sales"
	"github.com/Estevanavelar/naldogas-backend/api/handlers"
	"github.com/Estevanavelar/naldogas-backend/api/middleware"
	containersvc "github.com/Estevanavelar/naldogas-backend/internal/containers"
	customersvc "github.com/Estevanavelar/naldogas-backend/internal/customers"
	deliverysvc "github.com/Estevanavelar/naldogas-backend/internal/deliveries"
	productsvc "github.com/Estevanavelar/naldogas-backend/internal/products"
	receivablesvc "github.com/Estevanavelar/naldogas-backend/internal/receivables"
	salesvc "github.com/Estevanavelar/naldogas-backend/internal/sales"
	"github.com/Estevanavelar/naldogas-backend/pkg/config"
	"github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
	"github.com/Estevanavelar/naldogas-backend/pkg/metrics"
	"github.com/Estevanavelar/naldogas-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	productService productsvc.Service,
	customerService customersvc.Service,
	saleService salesvc.Service,
	containerService containersvc.Service,
	receivableService receivablesvc.Service,
	deliveryService deliverysvc.Service,
	ledgerMetrics *metrics.LedgerMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", handlers.Healthz(cfg, logg))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, cfg.Idempotency.TTL, logg))

		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{productId}", controllers.GetProduct(productService, logg))
		})

		r.Route("/v1/customers", func(r chi.Router) {
			r.Post("/", controllers.CreateCustomer(customerService, logg))
			r.Get("/lookup", controllers.LookupCustomer(customerService, logg))
			r.Get("/{customerId}", controllers.GetCustomer(customerService, logg))
			r.Get("/{customerId}/sales", salecontrollers.ListByCustomer(saleService, logg))
		})

		r.Route("/v1/sales", func(r chi.Router) {
			r.Post("/", salecontrollers.Record(saleService, ledgerMetrics, logg))
			r.Get("/", salecontrollers.List(saleService, logg))
			r.Get("/{saleId}", salecontrollers.Detail(saleService, logg))
		})

		r.Route("/v1/containers", func(r chi.Router) {
			r.Get("/stock/{depotId}", containercontrollers.Stock(containerService, ledgerMetrics, logg))
			r.Get("/possessions/{depotId}/{customerId}", containercontrollers.Possession(containerService, logg))
			r.Post("/returns", containercontrollers.Return(containerService, ledgerMetrics, logg))
			r.Post("/acquisitions", containercontrollers.Acquire(containerService, ledgerMetrics, logg))
			r.Post("/refills", containercontrollers.Refill(containerService, ledgerMetrics, logg))
		})

		r.Route("/v1/receivables", func(r chi.Router) {
			r.Get("/", receivablecontrollers.List(receivableService, logg))
			r.Get("/overdue", receivablecontrollers.ListOverdue(receivableService, logg))
			r.Get("/summary", receivablecontrollers.Summary(receivableService, logg))
			r.Get("/{receivableId}", receivablecontrollers.Detail(receivableService, logg))
			r.Post("/{receivableId}/payments", receivablecontrollers.RegisterPayment(receivableService, logg))
		})

		r.Route("/v1/deliveries", func(r chi.Router) {
			r.Get("/", deliverycontrollers.List(deliveryService, logg))
			r.Get("/{deliveryId}", deliverycontrollers.Detail(deliveryService, logg))
			r.Post("/{deliveryId}/assign", deliverycontrollers.Assign(deliveryService, logg))
			r.Post("/{deliveryId}/status", deliverycontrollers.UpdateStatus(deliveryService, logg))
		})
	})

	return r
}
