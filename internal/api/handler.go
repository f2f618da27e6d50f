// Package api exposes the phishing risk scanner over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/theopenlane/spectra/internal/analyzer"
	"github.com/theopenlane/spectra/internal/history"
	"github.com/theopenlane/spectra/internal/intel"
	"github.com/theopenlane/spectra/internal/scanner"
	"github.com/theopenlane/spectra/internal/types"
)

const serviceName = "spectra"

// Scanner produces the consensus result for one message; satisfied by *scanner.Scanner
type Scanner interface {
	Scan(ctx context.Context, req scanner.Request) (*types.UnifiedScanResult, error)
}

// Analyzer builds the full single-message report; satisfied by *analyzer.Analyzer
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*analyzer.Report, error)
}

// IntelManager hydrates and queries threat feeds; satisfied by *intel.Manager
type IntelManager interface {
	Hydrate(ctx context.Context) (intel.HydrationSummary, error)
	Check(url string) (intel.ThreatFeedEntry, bool, error)
	Status() intel.Status
}

// Notifier alerts on high scoring scans; satisfied by *slack.Client
type Notifier interface {
	Notify(ctx context.Context, res *types.UnifiedScanResult) (bool, error)
}

// Handler manages API endpoints
type Handler struct {
	scanner     Scanner
	urls        scanner.URLAnalyzer
	analyzer    Analyzer
	intel       IntelManager
	history     history.Store
	notifier    Notifier
	maxBodySize int64
	now         func() time.Time
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status    string        `json:"status"`
	Service   string        `json:"service"`
	Timestamp string        `json:"timestamp"`
	Intel     *intel.Status `json:"intel,omitempty"`
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}

	if h.intel != nil {
		status := h.intel.Status()
		resp.Intel = &status
	}

	respond(w, resp)
}

// limitBody caps the request body at the configured size
func (h *Handler) limitBody(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}
}
