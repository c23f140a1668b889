package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// appMetrics tracks request counters for the plain-text metrics endpoint.
type appMetrics struct {
	startedAt       time.Time
	requestsTotal   int64
	responses2xx    int64
	responses4xx    int64
	responses5xx    int64
	rateLimitHits   int64
	cacheHits       int64
	cacheMisses     int64
	statementsSaved int64
}

func newAppMetrics() *appMetrics {
	return &appMetrics{startedAt: time.Now()}
}

func (m *appMetrics) recordResponse(status int) {
	atomic.AddInt64(&m.requestsTotal, 1)
	switch {
	case status >= 500:
		atomic.AddInt64(&m.responses5xx, 1)
	case status >= 400:
		atomic.AddInt64(&m.responses4xx, 1)
	default:
		atomic.AddInt64(&m.responses2xx, 1)
	}
}

// handleMetrics writes counters in a plain key/value text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.metrics
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "faturas_uptime_seconds %d\n", int64(time.Since(m.startedAt).Seconds()))
	fmt.Fprintf(w, "faturas_requests_total %d\n", atomic.LoadInt64(&m.requestsTotal))
	fmt.Fprintf(w, "faturas_responses_2xx_total %d\n", atomic.LoadInt64(&m.responses2xx))
	fmt.Fprintf(w, "faturas_responses_4xx_total %d\n", atomic.LoadInt64(&m.responses4xx))
	fmt.Fprintf(w, "faturas_responses_5xx_total %d\n", atomic.LoadInt64(&m.responses5xx))
	fmt.Fprintf(w, "faturas_rate_limit_hits_total %d\n", atomic.LoadInt64(&m.rateLimitHits))
	fmt.Fprintf(w, "faturas_summary_cache_hits_total %d\n", atomic.LoadInt64(&m.cacheHits))
	fmt.Fprintf(w, "faturas_summary_cache_misses_total %d\n", atomic.LoadInt64(&m.cacheMisses))
	fmt.Fprintf(w, "faturas_statements_saved_total %d\n", atomic.LoadInt64(&m.statementsSaved))
}
