package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theopenlane/spectra/internal/history"
	"github.com/theopenlane/spectra/internal/metrics"
	"github.com/theopenlane/spectra/internal/scanner"
)

// RouterConfig holds the collaborators behind each endpoint. A nil Scanner, URLAnalyzer or
// Analyzer leaves its route unregistered; a nil Intel or History answers service_unavailable
type RouterConfig struct {
	Scanner     Scanner
	URLAnalyzer scanner.URLAnalyzer
	Analyzer    Analyzer
	Intel       IntelManager
	History     history.Store
	Notifier    Notifier

	// MaxBodySize caps request bodies in bytes; zero disables the cap
	MaxBodySize int64
	// RequestTimeout bounds every request; zero disables the bound
	RequestTimeout time.Duration
	// Now is the health check clock
	Now func() time.Time
}

// NewRouter creates a new chi router with all endpoints and middleware
func NewRouter(cfg RouterConfig) http.Handler {
	h := &Handler{
		scanner:     cfg.Scanner,
		urls:        cfg.URLAnalyzer,
		analyzer:    cfg.Analyzer,
		intel:       cfg.Intel,
		history:     cfg.History,
		notifier:    cfg.Notifier,
		maxBodySize: cfg.MaxBodySize,
		now:         cfg.Now,
	}

	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		if h.scanner != nil {
			r.Post("/scan", h.handleScan)
		}

		if h.urls != nil {
			r.Post("/analyze-url", h.handleAnalyzeURL)
		}

		if h.analyzer != nil {
			r.Post("/analyze", h.handleAnalyze)
		}

		r.Post("/mail-severity", h.handleMailSeverity)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.handleListHistory)
			r.Delete("/", h.handleClearHistory)
			r.Get("/{id}", h.handleGetHistory)
			r.Delete("/{id}", h.handleDeleteHistory)
		})

		r.Route("/intel", func(r chi.Router) {
			r.Post("/hydrate", h.handleIntelHydrate)
			r.Post("/lookup", h.handleIntelLookup)
		})
	})

	return r
}

// cors allows browser extensions and the dashboard to call the API from any origin
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
