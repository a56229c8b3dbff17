package services

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/EasterCompany/dex-meetup-service/utils"
)

// StatusServer tracks suggestion proxy counters and serves /status and
// /health.
type StatusServer struct {
	startTime time.Time
	service   string
	version   string

	// Metrics
	suggestionsReceived atomic.Uint64
	suggestionsServed   atomic.Uint64
	suggestionsFailed   atomic.Uint64
}

// NewStatusServer creates a new status server instance
func NewStatusServer(service, version string) *StatusServer {
	return &StatusServer{
		startTime: time.Now(),
		service:   service,
		version:   version,
	}
}

// Metrics returns the counters as reported on /status and /service.
func (ss *StatusServer) Metrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"suggestions_received": ss.suggestionsReceived.Load(),
		"suggestions_served":   ss.suggestionsServed.Load(),
		"suggestions_failed":   ss.suggestionsFailed.Load(),
		"goroutines":           runtime.NumGoroutine(),
		"memory_alloc_mb":      float64(m.Alloc) / 1024 / 1024,
		"gc_runs":              m.NumGC,
	}
}

// HandleStatus returns detailed service status
func (ss *StatusServer) HandleStatus(w http.ResponseWriter, r *http.Request) {
	health := utils.GetHealth()
	status := map[string]interface{}{
		"service":   ss.service,
		"status":    health.Status,
		"version":   ss.version,
		"uptime":    int(time.Since(ss.startTime).Seconds()),
		"timestamp": time.Now().Unix(),
		"metrics":   ss.Metrics(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("[STATUS] Error encoding status: %v", err)
	}
}

// HandleHealth returns simple health check
func (ss *StatusServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": utils.GetHealth().Status,
	}); err != nil {
		log.Printf("[STATUS] Error encoding health check: %v", err)
	}
}

func (ss *StatusServer) IncrementReceived() { ss.suggestionsReceived.Add(1) }

func (ss *StatusServer) IncrementServed() { ss.suggestionsServed.Add(1) }

func (ss *StatusServer) IncrementFailed() { ss.suggestionsFailed.Add(1) }
