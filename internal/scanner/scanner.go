package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/theopenlane/spectra/internal/metrics"
	"github.com/theopenlane/spectra/internal/probe"
	"github.com/theopenlane/spectra/internal/reputation"
	"github.com/theopenlane/spectra/internal/signals"
	"github.com/theopenlane/spectra/internal/types"
)

// URLAnalyzer scores a single URL; satisfied by *urlintel.Engine
type URLAnalyzer interface {
	Analyze(ctx context.Context, rawURL string) types.URLFinding
}

// Enricher gathers technical context about one URL; satisfied by *probe.Enricher
type Enricher interface {
	Enrich(ctx context.Context, rawURL string) probe.Enrichment
}

// Request is one message to scan
type Request struct {
	Text   string   `json:"text"`
	Sender string   `json:"sender"`
	URLs   []string `json:"urls"`
}

// Scanner combines local text and URL-structure signals with external reputation into a
// single consensus score
type Scanner struct {
	engine   URLAnalyzer
	enricher Enricher
	options  *ScanOptions
}

// New creates a new scanner. A nil enricher reports probe defaults for every scan
func New(engine URLAnalyzer, enricher Enricher, opts ...ScanOption) *Scanner {
	options := DefaultScanOptions()
	for _, opt := range opts {
		opt(options)
	}

	if enricher == nil {
		enricher = probe.NewEnricher()
	}

	return &Scanner{
		engine:   engine,
		enricher: enricher,
		options:  options,
	}
}

// Scan produces the unified result for one message. The only error is ErrScanDeadline (or the
// caller's context error); every collaborator failure degrades to a default inside the result
func (s *Scanner) Scan(ctx context.Context, req Request) (*types.UnifiedScanResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.ScanTimeout)
	defer cancel()

	urls := dedupe(req.URLs)

	manipulation := signals.Manipulation(req.Text)
	brandText := signals.BrandText(req.Text, req.Sender)

	brandMatches := BrandMatches(s.options.Matcher, urls)
	logicFlags := LogicFlags(urls)

	local := LocalScore(len(brandMatches) > 0 || len(logicFlags) > 0, manipulation.Score, brandText)

	findings, err := s.analyze(ctx, urls)
	if err != nil {
		return nil, err
	}

	var (
		highestScore float64
		highestURL   *string
		maxVT        int
		vtTotal      = reputation.DefaultEngineTotal
		vtExternal   float64
	)

	for i := range findings {
		f := findings[i]

		if f.Score >= highestScore {
			highestScore = f.Score
			highestURL = &findings[i].URL
		}

		maxVT = max(maxVT, f.VTMalicious)
		vtTotal = max(vtTotal, f.VTTotal)
		vtExternal = max(vtExternal, VTRatioScore(f.VTMalicious, f.VTTotal))
	}

	var external float64
	if len(urls) > 0 {
		external = max(highestScore, vtExternal)
	}

	top := lo.FromPtr(highestURL)
	enrichment := s.enricher.Enrich(ctx, top)

	if err := deadline(ctx); err != nil {
		return nil, err
	}

	sslAge := SSLAgeScore(enrichment.TLS.Value.IsValid, enrichment.Whois.Value.AgeDays)

	unified, mode := fuse(fusionInput{
		local:        local,
		external:     external,
		sslAge:       sslAge,
		maxVT:        maxVT,
		sslValid:     enrichment.TLS.Value.IsValid,
		brandMatched: len(brandMatches) > 0,
	})

	verdict, confidence := band(unified, maxVT)

	var detected *string

	switch {
	case len(brandMatches) > 0:
		detected = lo.ToPtr(brandMatches[0])
	case brandText > 0:
		detected = lo.ToPtr(types.TextualBrandCue)
	}

	result := &types.UnifiedScanResult{
		UnifiedScore:       unified,
		LocalScore:         round2(local),
		ExternalScore:      round2(external),
		SSLAgeScore:        round2(sslAge),
		ConsensusMode:      mode,
		Verdict:            verdict,
		ConfidenceLevel:    confidence,
		DetectedBrand:      detected,
		BrandMatches:       brandMatches,
		LogicFlags:         logicFlags,
		FlaggedPhrases:     manipulation.FlaggedPhrases,
		PsychologicalIndex: manipulation.Index,
		VTMaliciousEngines: maxVT,
		VTTotalEngines:     vtTotal,
		HighestRiskURL:     highestURL,
		URLFindings:        findings,
		IntelligenceProfile: types.IntelligenceProfile{
			SSLStatus:    enrichment.TLS.Value,
			LocationData: enrichment.Geo.Value,
			ThreatArray:  threatArray(brandMatches, logicFlags, manipulation.FlaggedPhrases, maxVT, vtTotal),
			AdvancedTechnicalDetails: types.AdvancedTechnicalDetails{
				PageTitle:     enrichment.Redirect.Value.Title,
				DomainAgeDays: enrichment.Whois.Value.AgeDays,
				RedirectChain: lo.Ternary(enrichment.Redirect.Value.Chain == nil, []string{}, enrichment.Redirect.Value.Chain),
				RedirectHops:  enrichment.Redirect.Value.Hops,
				DNSRecords:    enrichment.DNS.Value,
				Whois:         enrichment.Whois.Value.Raw,
				FinalURL:      enrichment.Redirect.Value.FinalURL,
			},
		},
		ScannedAt: s.options.Now().UTC(),
	}

	metrics.ScansTotal.WithLabelValues(string(verdict)).Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())

	log.Debug().
		Float64("unified_score", unified).
		Str("mode", string(mode)).
		Int("urls", len(urls)).
		Dur("took", time.Since(start)).
		Msg("scan complete")

	return result, nil
}

// analyze runs the URL engine over urls with bounded concurrency, keeping input order
func (s *Scanner) analyze(ctx context.Context, urls []string) ([]types.URLFinding, error) {
	findings := make([]types.URLFinding, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options.MaxConcurrency)

	for i, u := range urls {
		g.Go(func() error {
			findings[i] = s.engine.Analyze(gctx, u)
			return nil
		})
	}

	_ = g.Wait()

	if err := deadline(ctx); err != nil {
		return nil, err
	}

	return findings, nil
}

// deadline maps an expired scan budget to ErrScanDeadline and passes caller cancellation through
func deadline(ctx context.Context) error {
	err := ctx.Err()

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return ErrScanDeadline
	default:
		return err
	}
}

// dedupe trims urls, drops empties and keeps the first occurrence of each
func dedupe(urls []string) []string {
	trimmed := lo.FilterMap(urls, func(u string, _ int) (string, bool) {
		u = strings.TrimSpace(u)
		return u, u != ""
	})

	return lo.Uniq(trimmed)
}

func threatArray(brands, flags, phrases []string, maxVT, vtTotal int) []string {
	threats := []string{}

	if len(brands) > 0 {
		threats = append(threats, "Brand Mimicry: "+brands[0])
	}

	threats = append(threats, flags...)

	for _, p := range phrases {
		threats = append(threats, "Manipulation Phrase: "+p)
	}

	if maxVT > 0 {
		threats = append(threats, fmt.Sprintf("VirusTotal: %d/%d engines flagged", maxVT, vtTotal))
	}

	return threats
}
