package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/stockmanager/backend/internal/http/handlers"
	"github.com/stockmanager/backend/internal/models"
)

// NewRouter wires the full API surface. Everything under /api except
// login and refresh requires a valid bearer token; admin-only routes
// are additionally role gated.
func NewRouter(clientOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(CORS(clientOrigin))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(RateLimit).Post("/login", handlers.LoginHandler)
			r.Post("/register", handlers.RegisterHandler)
			r.Post("/refresh", handlers.RefreshHandler)
			r.Post("/logout", handlers.LogoutHandler)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware)
				r.Get("/me", handlers.MeHandler)

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(models.RoleAdmin))
					r.Post("/employees", handlers.CreateEmployeeHandler)
					r.Get("/employees", handlers.GetEmployeesHandler)
					r.Put("/employees/{id}", handlers.UpdateEmployeeHandler)
					r.Delete("/employees/{id}", handlers.DeleteEmployeeHandler)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", handlers.GetProductsHandler)
				r.Get("/low-stock", handlers.GetLowStockProductsHandler)
				r.Get("/{id}", handlers.GetProductByIDHandler)
				r.Get("/{id}/movements", handlers.GetProductMovementsHandler)

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(models.RoleAdmin))
					r.Post("/", handlers.CreateProductHandler)
					r.Put("/{id}", handlers.UpdateProductHandler)
					r.Delete("/{id}", handlers.DeleteProductHandler)
					r.Post("/import", handlers.ImportProductsHandler)
				})
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", handlers.GetSuppliersHandler)
				r.Get("/{id}", handlers.GetSupplierByIDHandler)

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(models.RoleAdmin))
					r.Post("/", handlers.CreateSupplierHandler)
					r.Put("/{id}", handlers.UpdateSupplierHandler)
					r.Delete("/{id}", handlers.DeleteSupplierHandler)
				})
			})

			r.Route("/movements", func(r chi.Router) {
				r.Post("/", handlers.RecordMovementHandler)
				r.Get("/", handlers.GetMovementsHandler)
				r.Get("/export", handlers.ExportMovementsHandler)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Post("/", handlers.RecordSaleHandler)
				r.Get("/", handlers.GetSalesHandler)
				r.With(RequireRole(models.RoleAdmin)).Get("/report", handlers.GetSalesReportHandler)
				r.Get("/{id}", handlers.GetSaleByIDHandler)
			})

			r.Route("/issues", func(r chi.Router) {
				r.Post("/", handlers.CreateIssueHandler)
				r.Get("/", handlers.GetIssuesHandler)
				r.With(RequireRole(models.RoleAdmin)).Patch("/{id}/status", handlers.UpdateIssueStatusHandler)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Post("/sales/{saleId}", handlers.GenerateInvoiceHandler)
				r.Get("/sales/{saleId}", handlers.GetSaleInvoiceHandler)
				r.Get("/{id}/download", handlers.DownloadInvoiceHandler)
			})

			r.Get("/alerts", handlers.GetAlertsHandler)
			r.Get("/categories", handlers.GetCategoriesHandler)
			r.With(RequireRole(models.RoleAdmin)).Get("/metrics/dashboard", handlers.GetDashboardMetricsHandler)
		})
	})

	return r
}
