package api

import (
	"net/http"
	"strings"

	"github.com/okian/squad/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandleHealth handles GET /healthz. Clients asking for text/plain or
// application/openmetrics-text get the Prometheus exposition; everyone else
// gets a JSON status.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/openmetrics-text") || strings.Contains(accept, "text/plain") {
		MetricsHandler().ServeHTTP(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MetricsHandler serves the service registry in Prometheus format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{EnableOpenMetrics: true})
}
