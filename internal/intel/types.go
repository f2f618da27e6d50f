package intel

import (
	"strings"
	"time"
)

// FeedConfig represents the full set of phishing URL feeds defined in feed_config.json
type FeedConfig struct {
	Feeds []Feed `json:"feeds"`
}

// Feed describes a single URL feed to download and ingest
type Feed struct {
	// Name identifies the feed and names its cached copy on disk
	Name string `json:"name"`
	// URL is where the feed is downloaded from
	URL string `json:"url"`
	// Source is reported on entries from this feed, defaulting to Name
	Source string `json:"source,omitempty"`
}

// SourceName returns the label recorded on entries ingested from the feed
func (f Feed) SourceName() string {
	if s := strings.TrimSpace(f.Source); s != "" {
		return s
	}

	return f.Name
}

// DefaultFeedConfig is used when no feed configuration file is available
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		Feeds: []Feed{
			{Name: "openphish", URL: "https://openphish.com/feed.txt", Source: "OpenPhish"},
		},
	}
}

// ThreatFeedEntry is a known-malicious URL
type ThreatFeedEntry struct {
	URL       string    `json:"url"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Source    string    `json:"source"`
}

// HydrationSummary captures high-level results of a hydration run
type HydrationSummary struct {
	StartedAt         time.Time     `json:"started_at"`
	CompletedAt       time.Time     `json:"completed_at"`
	TotalFeeds        int           `json:"total_feeds"`
	SuccessfulFeeds   int           `json:"successful_feeds"`
	FailedFeeds       int           `json:"failed_feeds"`
	TotalEntries      int           `json:"total_entries"`
	NewEntries        int           `json:"new_entries"`
	Feeds             []FeedSummary `json:"feeds"`
	ErrorsEncountered bool          `json:"errors_encountered"`
}

// FeedSummary captures the outcome for an individual feed download and ingest
type FeedSummary struct {
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	Downloaded  bool          `json:"downloaded"`
	UsedCache   bool          `json:"used_cache"`
	Entries     int           `json:"entries"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	LastUpdated time.Time     `json:"last_updated"`
}

// Status describes the current state of the feed corpus
type Status struct {
	Hydrated     bool      `json:"hydrated"`
	LastHydrated time.Time `json:"last_hydrated,omitempty"`
	Entries      int       `json:"entries"`
	Feeds        []string  `json:"feeds"`
}
