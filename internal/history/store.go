package history

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultMaxRecords bounds the history kept by a store
const DefaultMaxRecords = 500

const shortIDLength = 8

// Record is one stored scan outcome. ID is the conversation id the caller supplied, or a
// generated short id for one-off analyses
type Record struct {
	ID              string          `json:"id"`
	FinalRisk       float64         `json:"final_risk"`
	Verdict         string          `json:"verdict"`
	ConfidenceLevel string          `json:"confidence_level"`
	ThreatCategory  string          `json:"threat_category,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
	Result          json.RawMessage `json:"result,omitempty"`
}

// Store keeps scan history keyed by record id. Saving an existing id replaces the record
// (last write wins, no merge)
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	// List returns records newest first
	List(ctx context.Context) ([]Record, error)
	// Delete reports whether a record was removed
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}

// NewID returns a short random record id
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:shortIDLength]
}
