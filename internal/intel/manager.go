package intel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/theopenlane/httpsling"
)

// Manager coordinates downloading feeds, storing entries, and serving membership lookups
type Manager struct {
	mu           sync.RWMutex
	config       FeedConfig
	store        *entryStore
	httpClient   *http.Client
	storageDir   string
	hydrated     bool
	lastHydrated time.Time
	now          func() time.Time
}

// Option configures the Manager
type Option func(*Manager)

// WithStorageDir overrides the directory used to persist raw feed downloads
func WithStorageDir(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.storageDir = path
		}
	}
}

// WithHTTPClient supplies a custom HTTP client for feed downloads
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// WithClock replaces time.Now for first/last seen bookkeeping
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a feed manager with the provided feed configuration
func NewManager(cfg FeedConfig, opts ...Option) (*Manager, error) {
	if len(cfg.Feeds) == 0 {
		return nil, ErrNoFeedsDefined
	}

	for _, f := range cfg.Feeds {
		if f.Name == "" || f.URL == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFeed, f.Name)
		}
	}

	manager := &Manager{
		config:     cfg,
		store:      newEntryStore(),
		storageDir: "data/intel",
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager, nil
}

// LoadFeedConfig reads a feed configuration from disk
func LoadFeedConfig(path string) (FeedConfig, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return FeedConfig{}, err
	}
	defer file.Close() //nolint:errcheck

	return DecodeFeedConfig(file)
}

// DecodeFeedConfig parses a feed configuration from an arbitrary reader
func DecodeFeedConfig(r io.Reader) (FeedConfig, error) {
	var cfg FeedConfig
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return FeedConfig{}, err
	}

	if len(cfg.Feeds) == 0 {
		return FeedConfig{}, ErrNoFeedsDefined
	}

	return cfg, nil
}

// Hydrate downloads all known feeds concurrently and swaps in a rebuilt entry store.
// first_seen survives across runs; last_seen is refreshed for every URL still listed
func (m *Manager) Hydrate(ctx context.Context) (HydrationSummary, error) {
	now := m.now().UTC()

	summary := HydrationSummary{
		StartedAt:  now,
		TotalFeeds: len(m.config.Feeds),
	}

	if err := os.MkdirAll(m.storageDir, 0o755); err != nil {
		return summary, fmt.Errorf("create storage dir: %w", err)
	}

	newStore := newEntryStore()

	var (
		storeMu   sync.Mutex
		summaryMu sync.Mutex
		wg        sync.WaitGroup
	)

	for _, feed := range m.config.Feeds {
		wg.Go(func() {
			if ctx.Err() != nil {
				return
			}

			start := time.Now()
			feedSummary := FeedSummary{
				Name: feed.Name,
				URL:  feed.URL,
			}

			dest := filepath.Join(m.storageDir, feed.Name+".txt")

			fetchErr := m.fetchFeed(ctx, feed, dest)
			if fetchErr != nil {
				log.Warn().Err(fetchErr).Str("feed", feed.Name).Msg("feed download failed")
			}

			var (
				added     int
				ingestErr error
			)

			if _, statErr := os.Stat(dest); statErr == nil {
				storeMu.Lock()
				added, ingestErr = newStore.ingestFile(dest, feed, now)
				storeMu.Unlock()
			} else if fetchErr == nil {
				ingestErr = statErr
			}

			err := errors.Join(fetchErr, ingestErr)
			feedSummary.UsedCache = fetchErr != nil && ingestErr == nil && added > 0
			feedSummary.Entries = added
			feedSummary.Duration = time.Since(start)

			summaryMu.Lock()
			defer summaryMu.Unlock()

			if err != nil {
				feedSummary.Error = err.Error()
				summary.ErrorsEncountered = true
			}

			if ingestErr == nil && (fetchErr == nil || added > 0) {
				feedSummary.Downloaded = fetchErr == nil
				feedSummary.LastUpdated = time.Now().UTC()
				summary.SuccessfulFeeds++
			} else {
				summary.FailedFeeds++
			}

			summary.Feeds = append(summary.Feeds, feedSummary)
		})
	}

	wg.Wait()

	sort.Slice(summary.Feeds, func(i, j int) bool { return summary.Feeds[i].Name < summary.Feeds[j].Name })

	m.mu.Lock()
	// a run where every feed failed keeps the previous corpus
	if summary.SuccessfulFeeds > 0 || !m.hydrated {
		summary.NewEntries = newStore.inherit(m.store)
		m.store = newStore
		m.hydrated = true
		m.lastHydrated = m.now().UTC()
	}

	summary.TotalEntries = m.store.len()
	m.mu.Unlock()

	summary.CompletedAt = m.now().UTC()

	log.Info().Int("entries", summary.TotalEntries).Int("new", summary.NewEntries).Int("failed_feeds", summary.FailedFeeds).Msg("threat feeds hydrated")

	return summary, nil
}

func (m *Manager) fetchFeed(ctx context.Context, feed Feed, dest string) error {
	tmp, err := os.CreateTemp(m.storageDir, feed.Name+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	requester := httpsling.MustNew(
		httpsling.URL(feed.URL),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(m.httpClient),
	)

	resp, _, err := requester.ReceiveTo(ctx, tmp)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedFeedStatus, resp.StatusCode)
	}

	if err := tmp.Sync(); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}

// Exists reports whether url is listed on any hydrated feed. An unhydrated manager lists nothing
func (m *Manager) Exists(_ context.Context, url string) bool {
	_, ok := m.Lookup(url)

	return ok
}

// Lookup returns the feed entry for url
func (m *Manager) Lookup(url string) (ThreatFeedEntry, bool) {
	m.mu.RLock()
	store := m.store
	m.mu.RUnlock()

	if store == nil {
		return ThreatFeedEntry{}, false
	}

	return store.lookup(url)
}

// Check is Lookup with explicit errors for the API surface
func (m *Manager) Check(url string) (ThreatFeedEntry, bool, error) {
	if NormalizeURL(url) == "" {
		return ThreatFeedEntry{}, false, ErrEmptyURL
	}

	m.mu.RLock()
	hydrated := m.hydrated
	m.mu.RUnlock()

	if !hydrated {
		return ThreatFeedEntry{}, false, ErrNotHydrated
	}

	entry, ok := m.Lookup(url)

	return entry, ok, nil
}

// Status reports whether feeds are loaded and how many entries they hold
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	feeds := make([]string, 0, len(m.config.Feeds))
	for _, f := range m.config.Feeds {
		feeds = append(feeds, f.Name)
	}

	return Status{
		Hydrated:     m.hydrated,
		LastHydrated: m.lastHydrated,
		Entries:      m.store.len(),
		Feeds:        feeds,
	}
}
