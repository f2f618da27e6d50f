package reputation

import (
	"context"
	"time"
)

// DefaultEngineTotal is reported as the engine count when no verdict is available
const DefaultEngineTotal = 70

// Stats is the per-category engine tally of a third-party URL verdict
type Stats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`
	Timeout    int `json:"timeout"`
}

// Total returns the number of engines that reported
func (s Stats) Total() int {
	return s.Harmless + s.Malicious + s.Suspicious + s.Undetected + s.Timeout
}

// Summary is the malicious/total pair consumed by scoring
type Summary struct {
	Malicious int `json:"malicious"`
	Total     int `json:"total"`
}

// Summarize reduces stats to a Summary, substituting defaults for a missing verdict or an empty tally
func Summarize(stats *Stats) Summary {
	if stats == nil {
		return Summary{Total: DefaultEngineTotal}
	}

	total := stats.Total()
	if total <= 0 {
		total = DefaultEngineTotal
	}

	return Summary{Malicious: stats.Malicious, Total: total}
}

// Entry is a cached lookup; a nil Result records that the third party had no verdict
type Entry struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
	Result    *Stats    `json:"result"`
}

// Cache stores lookups keyed by URL. Implementations must be safe for concurrent use;
// concurrent writers for the same key are last-writer-wins
type Cache interface {
	// Get returns the entry for url and whether one exists
	Get(ctx context.Context, url string) (Entry, bool, error)
	// Put stores or replaces the entry for e.URL
	Put(ctx context.Context, e Entry) error
}

// Fetcher queries the third-party verdict source. A nil result with a nil error means the
// source has no verdict yet
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Stats, error)
}

func cloneStats(s *Stats) *Stats {
	if s == nil {
		return nil
	}

	c := *s

	return &c
}
