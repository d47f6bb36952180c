package router

import (
	"net/http"
	"strings"

	"kart-pay/internal/handler"
	"kart-pay/internal/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	paymentHandler *handler.PaymentHandler,
	orderHandler *handler.OrderHandler,
	registry *prometheus.Registry,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Prometheus metrics (no authentication required)
	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// Payment routes: create at the collection root, capture nested
	// under the provider order ID.
	paymentRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/api/payments/orders" || path == "/api/payments/orders/" {
			paymentHandler.CreateOrder(w, r)
			return
		}

		if strings.HasPrefix(path, "/api/payments/orders/") && strings.HasSuffix(path, "/capture") {
			paymentHandler.Capture(w, r)
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}

	mux.HandleFunc("/api/payments/orders", paymentRouteHandler)
	mux.HandleFunc("/api/payments/orders/", paymentRouteHandler)

	// Completed order lookup for the confirmation view.
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/completed") {
			orderHandler.GetCompleted(w, r)
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	})

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
