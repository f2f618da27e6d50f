package urlintel

import (
	"context"
	"strings"

	"github.com/theopenlane/spectra/internal/brand"
	"github.com/theopenlane/spectra/internal/domain"
	"github.com/theopenlane/spectra/internal/metrics"
	"github.com/theopenlane/spectra/internal/reputation"
	"github.com/theopenlane/spectra/internal/types"
)

// DefaultHighRiskTLDs are suffixes commonly abused for phishing
var DefaultHighRiskTLDs = []string{".top", ".xyz", ".tk", ".gq", ".ml"}

// Membership is an exact-match threat feed
type Membership interface {
	Exists(ctx context.Context, url string) bool
}

// Reputation is a cached third-party verdict source
type Reputation interface {
	Lookup(ctx context.Context, url string) (*reputation.Stats, bool)
}

// Engine scores single URLs with an ordered rule table
type Engine struct {
	feed       Membership
	reputation Reputation
	matcher    *brand.Matcher
	tlds       []string
	rules      []Rule
}

// Option configures an Engine
type Option func(*Engine)

// WithMembership sets the threat feed consulted before any other rule
func WithMembership(feed Membership) Option {
	return func(e *Engine) {
		if feed != nil {
			e.feed = feed
		}
	}
}

// WithReputation sets the third-party verdict source
func WithReputation(rep Reputation) Option {
	return func(e *Engine) {
		if rep != nil {
			e.reputation = rep
		}
	}
}

// WithMatcher sets the protected brand matcher
func WithMatcher(m *brand.Matcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithBrands replaces the protected brand list
func WithBrands(brands []string) Option {
	return func(e *Engine) {
		if len(brands) > 0 {
			e.matcher = brand.NewMatcher(brand.WithBrands(brands))
		}
	}
}

// WithHighRiskTLDs replaces the high-risk suffix list; entries without a leading dot get one
func WithHighRiskTLDs(tlds []string) Option {
	return func(e *Engine) {
		var cleaned []string

		for _, t := range tlds {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}

			if !strings.HasPrefix(t, ".") {
				t = "." + t
			}

			cleaned = append(cleaned, t)
		}

		if len(cleaned) > 0 {
			e.tlds = cleaned
		}
	}
}

// WithRules replaces the scoring table
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		if len(rules) > 0 {
			e.rules = rules
		}
	}
}

// New creates an Engine. Without a membership or reputation source those layers never fire
func New(opts ...Option) *Engine {
	e := &Engine{
		feed:       noFeed{},
		reputation: noReputation{},
		matcher:    brand.NewMatcher(),
		tlds:       append([]string(nil), DefaultHighRiskTLDs...),
		rules:      DefaultRules(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Matcher returns the engine's brand matcher
func (e *Engine) Matcher() *brand.Matcher {
	return e.matcher
}

// Signals gathers the facts the rule table is evaluated against. A feed hit decides the verdict on its own,
// so nothing else is gathered for a listed URL
func (e *Engine) Signals(ctx context.Context, rawURL string) *Signals {
	raw := strings.TrimSpace(rawURL)
	parts := domain.Normalize(raw)

	s := &Signals{
		URL:   raw,
		Lower: strings.ToLower(raw),
		Parts: parts,
	}

	if raw == "" {
		return s
	}

	s.Listed = e.feed.Exists(ctx, raw)
	if s.Listed {
		return s
	}

	s.ImpersonatedBrand, _ = e.matcher.Impersonation(parts)
	s.SpoofedBrand, _ = e.matcher.Spoofing(parts)

	for _, tld := range e.tlds {
		if strings.HasSuffix(parts.CleanDomain, tld) || strings.HasSuffix(parts.Host, tld) {
			s.HighRiskTLD = tld
			break
		}
	}

	if stats, ok := e.reputation.Lookup(ctx, raw); ok {
		s.Reputation = stats
	}

	return s
}

// Analyze scores one URL. It never fails; unavailable collaborators simply do not contribute
func (e *Engine) Analyze(ctx context.Context, rawURL string) types.URLFinding {
	s := e.Signals(ctx, rawURL)

	score, evidence, forced := Evaluate(e.rules, s)

	verdict := Band(score)
	if forced {
		verdict = types.VerdictMalicious
	}

	summary := reputation.Summarize(s.Reputation)

	metrics.URLFindingsTotal.WithLabelValues(string(verdict)).Inc()

	return types.URLFinding{
		URL:         s.URL,
		Score:       score,
		Verdict:     verdict,
		Evidence:    evidence,
		VTMalicious: summary.Malicious,
		VTTotal:     summary.Total,
	}
}

type noFeed struct{}

func (noFeed) Exists(context.Context, string) bool { return false }

type noReputation struct{}

func (noReputation) Lookup(context.Context, string) (*reputation.Stats, bool) { return nil, false }
