package reputation

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/spectra/internal/metrics"
)

const (
	// DefaultTTL is how long a cached verdict is trusted
	DefaultTTL = 24 * time.Hour
	// DefaultLookupTimeout bounds a single third-party fetch
	DefaultLookupTimeout = 20 * time.Second
)

// Service answers reputation lookups from the cache, refreshing stale or missing entries from the fetcher
type Service struct {
	cache   Cache
	fetcher Fetcher
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithTTL sets how long cached entries are considered fresh
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithTimeout bounds each fetch
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithClock replaces time.Now, mainly for TTL tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service. A nil cache gets a MemoryCache; a nil fetcher disables lookups entirely
func NewService(cache Cache, fetcher Fetcher, opts ...Option) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}

	s := &Service{
		cache:   cache,
		fetcher: fetcher,
		ttl:     DefaultTTL,
		timeout: DefaultLookupTimeout,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Enabled reports whether the service has a verdict source
func (s *Service) Enabled() bool {
	return s != nil && s.fetcher != nil
}

// Lookup returns the third-party verdict for url. It never fails: cache and transport errors
// are logged and reported as no verdict
func (s *Service) Lookup(ctx context.Context, url string) (*Stats, bool) {
	key := strings.TrimSpace(url)
	if !s.Enabled() || key == "" {
		return nil, false
	}

	now := s.now()

	entry, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("url", key).Msg("reputation cache read failed")
	}

	if ok && now.Sub(entry.FetchedAt) <= s.ttl {
		metrics.ReputationLookupsTotal.WithLabelValues(metrics.LookupHit).Inc()

		return entry.Result, entry.Result != nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.fetcher.Fetch(fetchCtx, key)
	if err != nil {
		metrics.ReputationLookupsTotal.WithLabelValues(metrics.LookupError).Inc()
		log.Debug().Err(err).Str("url", key).Msg("reputation fetch failed")

		return nil, false
	}

	metrics.ReputationLookupsTotal.WithLabelValues(metrics.LookupMiss).Inc()

	if err := s.cache.Put(ctx, Entry{URL: key, FetchedAt: now, Result: stats}); err != nil {
		log.Warn().Err(err).Str("url", key).Msg("reputation cache write failed")
	}

	return stats, stats != nil
}

// Summary returns the malicious/total pair for url with defaults when no verdict is available
func (s *Service) Summary(ctx context.Context, url string) Summary {
	stats, _ := s.Lookup(ctx, url)

	return Summarize(stats)
}
