package intel

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type entryStore struct {
	entries map[string]*ThreatFeedEntry
}

func newEntryStore() *entryStore {
	return &entryStore{entries: make(map[string]*ThreatFeedEntry)}
}

// add records url as seen at now, returning true when it was not already in the store
func (s *entryStore) add(url, source string, now time.Time) bool {
	key := NormalizeURL(url)
	if key == "" {
		return false
	}

	if existing, ok := s.entries[key]; ok {
		existing.LastSeen = now
		return false
	}

	s.entries[key] = &ThreatFeedEntry{
		URL:       key,
		FirstSeen: now,
		LastSeen:  now,
		Source:    source,
	}

	return true
}

// inherit carries first_seen forward from a previous corpus and returns how many entries are new
func (s *entryStore) inherit(prev *entryStore) int {
	fresh := 0

	for key, e := range s.entries {
		if prev != nil {
			if old, ok := prev.entries[key]; ok {
				e.FirstSeen = old.FirstSeen
				continue
			}
		}

		fresh++
	}

	return fresh
}

func (s *entryStore) ingestFile(path string, feed Feed, now time.Time) (int, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	// Increase buffer to handle long lines (e.g., CSV rows)
	const maxCapacity = 2 * 1024 * 1024
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	source := feed.SourceName()

	var added int
	for scanner.Scan() {
		u := parseFeedLine(scanner.Text())
		if u == "" {
			continue
		}

		if s.add(u, source, now) {
			added++
		}
	}

	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("scan %s: %w", path, err)
	}

	return added, nil
}

func (s *entryStore) lookup(url string) (ThreatFeedEntry, bool) {
	e, ok := s.entries[NormalizeURL(url)]
	if !ok {
		return ThreatFeedEntry{}, false
	}

	return *e, true
}

func (s *entryStore) len() int {
	return len(s.entries)
}
