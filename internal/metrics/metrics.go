package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reputation lookup outcomes
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

var (
	// Registry holds every spectra collector plus the Go runtime collectors
	Registry = prometheus.NewRegistry()

	// ScansTotal counts completed consensus scans by verdict
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spectra_scans_total",
		Help: "Total number of consensus scans completed",
	}, []string{"verdict"})

	// URLFindingsTotal counts analyzed URLs by verdict
	URLFindingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spectra_url_findings_total",
		Help: "Total number of URLs analyzed",
	}, []string{"verdict"})

	// ReputationLookupsTotal counts reputation cache lookups by result
	ReputationLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spectra_reputation_lookups_total",
		Help: "Total number of reputation lookups",
	}, []string{"result"})

	// ScanDuration observes wall time of consensus scans
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "spectra_scan_duration_seconds",
		Help:    "Duration of consensus scans",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	})
)

func init() {
	Registry.MustRegister(
		ScansTotal,
		URLFindingsTotal,
		ReputationLookupsTotal,
		ScanDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes Registry in the prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
