package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/rinkrank/pkg/metrics"
)

// HealthHandler serves readiness and Prometheus metrics on one route.
type HealthHandler struct {
	stats   StatsProvider
	metrics http.Handler
}

// NewHealthHandler creates a new health handler. stats may be nil, in
// which case the service always reports ready.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{
		stats:   stats,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records,omitempty"`
}

// HandleHealth handles GET /healthz. Clients asking for application/json
// get a readiness document (503 until the dataset is loaded); everyone
// else gets the metrics exposition.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Accept"), "application/json") {
		h.metrics.ServeHTTP(w, r)
		return
	}
	if h.stats == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	stats := h.stats.GetStats()
	if started, _ := stats["started"].(bool); !started {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}
	records, _ := stats["records"].(int)
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Records: records})
}
