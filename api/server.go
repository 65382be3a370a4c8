/*
server.go - Router assembly

PURPOSE:
  Wires the handler set into a chi router with the standard middleware
  stack: request IDs, logging, panic recovery, CORS, Prometheus.
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP routing tree.
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCustomer)
				r.Get("/balance", h.GetBalance)
				r.Get("/statement", h.GetStatement)
				r.Post("/transactions", h.AddTransaction)
				r.Post("/payments", h.SubmitPayment)
				r.Post("/payments/{paymentID}/approve", h.ApprovePayment)
				r.Post("/payments/{paymentID}/reject", h.RejectPayment)
			})
		})

		r.Get("/payments/pending", h.ListPendingPayments)
	})

	return r
}
