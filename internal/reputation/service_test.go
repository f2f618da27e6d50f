package reputation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	result *Stats
	err    error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return cloneStats(f.result), f.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestServiceLookupCachesWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{result: &Stats{Harmless: 60, Malicious: 3, Undetected: 7}}
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(NewMemoryCache(), fetcher, WithClock(c.now))

	stats, ok := svc.Lookup(context.Background(), " http://evil.example/login ")
	require.True(t, ok)
	assert.Equal(t, 3, stats.Malicious)
	assert.Equal(t, 1, fetcher.calls)

	c.t = c.t.Add(23 * time.Hour)
	_, ok = svc.Lookup(context.Background(), "http://evil.example/login")
	require.True(t, ok)
	assert.Equal(t, 1, fetcher.calls, "fresh entry must not refetch")

	c.t = c.t.Add(2 * time.Hour)
	_, ok = svc.Lookup(context.Background(), "http://evil.example/login")
	require.True(t, ok)
	assert.Equal(t, 2, fetcher.calls, "stale entry must refetch")
}

func TestServiceLookupCachesMissingVerdict(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := NewMemoryCache()
	svc := NewService(cache, fetcher)

	_, ok := svc.Lookup(context.Background(), "http://new.example")
	assert.False(t, ok)

	_, ok = svc.Lookup(context.Background(), "http://new.example")
	assert.False(t, ok)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1, cache.Len())
}

func TestServiceLookupDoesNotCacheTransportErrors(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection reset")}
	cache := NewMemoryCache()
	svc := NewService(cache, fetcher)

	_, ok := svc.Lookup(context.Background(), "http://flaky.example")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(nil, nil)

	assert.False(t, svc.Enabled())

	stats, ok := svc.Lookup(context.Background(), "http://example.com")
	assert.Nil(t, stats)
	assert.False(t, ok)
	assert.Equal(t, Summary{Total: DefaultEngineTotal}, svc.Summary(context.Background(), "http://example.com"))
}

func TestSummarize(t *testing.T) {
	testCases := []struct {
		name  string
		stats *Stats
		want  Summary
	}{
		{name: "nil", stats: nil, want: Summary{Total: 70}},
		{name: "empty tally", stats: &Stats{}, want: Summary{Total: 70}},
		{name: "tally", stats: &Stats{Harmless: 80, Malicious: 4, Suspicious: 1, Undetected: 5, Timeout: 2}, want: Summary{Malicious: 4, Total: 92}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Summarize(tc.stats))
		})
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, ErrCacheUnavailable
}

func (failingCache) Put(context.Context, Entry) error { return ErrCacheUnavailable }

func TestServiceSurvivesCacheFailure(t *testing.T) {
	fetcher := &fakeFetcher{result: &Stats{Malicious: 1, Harmless: 69}}
	svc := NewService(failingCache{}, fetcher)

	stats, ok := svc.Lookup(context.Background(), "http://example.com")
	require.True(t, ok)
	assert.Equal(t, 1, stats.Malicious)
}
