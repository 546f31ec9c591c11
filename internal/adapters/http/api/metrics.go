package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/shopapi/pkg/metrics"
)

// NewMetricsHandler serves the custom metrics registry. The registry is looked
// up per request because metrics.Configure may replace it after startup.
func NewMetricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
