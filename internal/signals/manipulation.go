package signals

import (
	"strings"

	"github.com/samber/lo"

	"github.com/theopenlane/spectra/internal/types"
)

const (
	maxScore       = 100
	indexPerPhrase = 25
)

// pressureCategory is one family of manipulation phrases and what each hit is worth
type pressureCategory struct {
	name    string
	weight  float64
	phrases []string
}

// pressureCategories are evaluated in order; flagged phrases keep that order
var pressureCategories = []pressureCategory{
	{name: "urgency", weight: 15, phrases: []string{"urgent", "immediately", "act now", "within 24 hours"}},
	{name: "fear", weight: 20, phrases: []string{"suspended", "blocked", "legal action", "security alert"}},
	{name: "authority", weight: 10, phrases: []string{"official", "admin", "support team", "security department"}},
	{name: "scarcity", weight: 15, phrases: []string{"limited time", "expires today", "only few hours"}},
}

// ManipulationResult is the psychological pressure found in a message body
type ManipulationResult struct {
	Score          float64                  `json:"score"`
	FlaggedPhrases []string                 `json:"flagged_phrases"`
	Index          types.PsychologicalIndex `json:"psychological_index"`
}

// Manipulation scores text for urgency, fear, authority and scarcity cues. Matching is
// case-insensitive substring containment
func Manipulation(text string) ManipulationResult {
	lower := strings.ToLower(text)

	var (
		score   float64
		flagged []string
		counts  = make(map[string]int, len(pressureCategories))
	)

	for _, cat := range pressureCategories {
		for _, phrase := range cat.phrases {
			if !strings.Contains(lower, phrase) {
				continue
			}

			counts[cat.name]++
			score += cat.weight
			flagged = append(flagged, phrase)
		}
	}

	return ManipulationResult{
		Score:          min(score, maxScore),
		FlaggedPhrases: lo.Uniq(flagged),
		Index: types.PsychologicalIndex{
			Urgency:   indexValue(counts["urgency"]),
			Fear:      indexValue(counts["fear"]),
			Authority: indexValue(counts["authority"]),
			Scarcity:  indexValue(counts["scarcity"]),
		},
	}
}

func indexValue(hits int) int {
	return min(hits*indexPerPhrase, maxScore)
}
