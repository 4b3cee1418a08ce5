package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// serverMetrics holds plain counters exposed on /metrics. No metrics
// library: the surface is three counters and an uptime gauge.
type serverMetrics struct {
	started       time.Time
	requestsTotal atomic.Int64
	errorsTotal   atomic.Int64
	rateLimited   atomic.Int64
}

func newServerMetrics() *serverMetrics {
	return &serverMetrics{started: time.Now()}
}

func (m *serverMetrics) observe(status int) {
	m.requestsTotal.Add(1)
	if status >= http.StatusInternalServerError {
		m.errorsTotal.Add(1)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "pesatrack_uptime_seconds %d\n", int64(time.Since(s.metrics.started).Seconds()))
	fmt.Fprintf(w, "pesatrack_requests_total %d\n", s.metrics.requestsTotal.Load())
	fmt.Fprintf(w, "pesatrack_errors_total %d\n", s.metrics.errorsTotal.Load())
	fmt.Fprintf(w, "pesatrack_rate_limited_total %d\n", s.metrics.rateLimited.Load())
	fmt.Fprintf(w, "pesatrack_summary_cache_entries %d\n", s.summaryCache.Size())
}
