package intel

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEntryStoreAdd(t *testing.T) {
	store := newEntryStore()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	if !store.add("http://evil.example/a", "OpenPhish", now) {
		t.Fatal("expected first add to report a new entry")
	}

	later := now.Add(time.Hour)
	if store.add(" http://evil.example/a ", "Other", later) {
		t.Fatal("expected duplicate add to be ignored")
	}

	if store.add("   ", "OpenPhish", now) {
		t.Fatal("expected empty url to be rejected")
	}

	entry, ok := store.lookup("http://evil.example/a")
	if !ok {
		t.Fatal("expected entry to be present")
	}

	if entry.Source != "OpenPhish" {
		t.Errorf("expected source of first sighting, got %q", entry.Source)
	}

	if !entry.FirstSeen.Equal(now) || !entry.LastSeen.Equal(later) {
		t.Errorf("unexpected timestamps first=%v last=%v", entry.FirstSeen, entry.LastSeen)
	}
}

func TestEntryStoreInherit(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)

	prev := newEntryStore()
	prev.add("http://old.example", "feed", t0)

	next := newEntryStore()
	next.add("http://old.example", "feed", t1)
	next.add("http://new.example", "feed", t1)

	if fresh := next.inherit(prev); fresh != 1 {
		t.Fatalf("expected 1 new entry, got %d", fresh)
	}

	old, _ := next.lookup("http://old.example")
	if !old.FirstSeen.Equal(t0) || !old.LastSeen.Equal(t1) {
		t.Errorf("expected first_seen carried forward, got first=%v last=%v", old.FirstSeen, old.LastSeen)
	}

	if fresh := newEntryStore().inherit(nil); fresh != 0 {
		t.Errorf("expected 0 new entries for empty store, got %d", fresh)
	}
}

func TestEntryStoreIngestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.txt")
	content := "# header\nhttp://a.example/login\n\nhttps://b.example/verify\nhttp://a.example/login\nnot-a-url\n"

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	store := newEntryStore()

	added, err := store.ingestFile(path, Feed{Name: "openphish", Source: "OpenPhish"}, time.Now())
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if added != 2 || store.len() != 2 {
		t.Fatalf("expected 2 entries, got added=%d len=%d", added, store.len())
	}

	entry, ok := store.lookup("https://b.example/verify")
	if !ok || entry.Source != "OpenPhish" {
		t.Fatalf("unexpected entry %+v ok=%v", entry, ok)
	}

	if _, err := store.ingestFile(filepath.Join(t.TempDir(), "missing.txt"), Feed{Name: "x"}, time.Now()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
