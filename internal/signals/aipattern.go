package signals

import (
	"strings"
	"unicode/utf8"
)

const (
	longSentenceChars   = 120
	longSentenceWeight  = 30
	greetingRepeatLimit = 1
	greetingWeight      = 20
	lineBreakLimit      = 10
	lineBreakWeight     = 20
)

// AIPattern scores stylistic traits common in bulk-generated mail: long sentences, a repeated
// "dear customer" greeting and many line breaks
func AIPattern(text string) float64 {
	sentences := strings.Split(text, ".")

	total := 0
	for _, s := range sentences {
		total += utf8.RuneCountInString(s)
	}

	var score float64

	if float64(total)/float64(len(sentences)) > longSentenceChars {
		score += longSentenceWeight
	}

	if strings.Count(strings.ToLower(text), "dear customer") > greetingRepeatLimit {
		score += greetingWeight
	}

	if strings.Count(text, "\n") > lineBreakLimit {
		score += lineBreakWeight
	}

	return min(score, maxScore)
}
