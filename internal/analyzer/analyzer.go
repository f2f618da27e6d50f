package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/theopenlane/spectra/internal/emailauth"
	"github.com/theopenlane/spectra/internal/history"
	"github.com/theopenlane/spectra/internal/scanner"
	"github.com/theopenlane/spectra/internal/signals"
	"github.com/theopenlane/spectra/internal/types"
)

// Scanner produces the unified scan a report is built around; satisfied by *scanner.Scanner
type Scanner interface {
	Scan(ctx context.Context, req scanner.Request) (*types.UnifiedScanResult, error)
}

// SenderAuth reads a sender domain's published policy; satisfied by *emailauth.Checker
type SenderAuth interface {
	Check(ctx context.Context, sender string) (emailauth.Result, error)
}

// Request is one message submitted for a full report
type Request struct {
	EmailText   string   `json:"email_text"`
	EmailHeader string   `json:"email_header"`
	URL         string   `json:"url"`
	URLs        []string `json:"urls"`
	SenderEmail string   `json:"sender_email"`
	// PrivateMode keeps the report out of history
	PrivateMode bool `json:"private_mode"`
}

// Breakdown is the score contributed by each layer before fusion
type Breakdown struct {
	ManipulationScore       float64 `json:"manipulation_score"`
	URLScore                float64 `json:"url_score"`
	AIGeneratedScore        float64 `json:"ai_generated_score"`
	BrandImpersonationScore float64 `json:"brand_impersonation_score"`
	HeaderScore             float64 `json:"header_score"`
}

// Report is the explainable single-message analysis
type Report struct {
	// ID is the history record id; empty in private mode
	ID                 string                   `json:"id,omitempty"`
	FinalRisk          float64                  `json:"final_risk"`
	Verdict            types.RiskVerdict        `json:"verdict"`
	ConfidenceLevel    types.Confidence         `json:"confidence_level"`
	ThreatCategory     string                   `json:"threat_category"`
	ReasoningSummary   string                   `json:"reasoning_summary"`
	Breakdown          Breakdown                `json:"breakdown"`
	PsychologicalIndex types.PsychologicalIndex `json:"psychological_index"`
	HighlightedPhrases []string                 `json:"highlighted_phrases"`
	DomainAgeDays      *int                     `json:"domain_age_days"`
	HeaderAnalysis     signals.HeaderDetails    `json:"header_analysis"`
	ThreatIntel        signals.IntelDetails     `json:"threat_intel"`
	SenderAuth         *emailauth.Result        `json:"sender_auth,omitempty"`
	AttackSimulation   []signals.SimulationStep `json:"attack_simulation"`
	Scan               *types.UnifiedScanResult `json:"scan"`
}

// Analyzer builds reports and records them to history
type Analyzer struct {
	scanner    Scanner
	senderAuth SenderAuth
	store      history.Store
	now        func() time.Time
	newID      func() string
}

// Option configures the Analyzer
type Option func(*Analyzer)

// WithSenderAuth enables SPF and DMARC checks of the sender domain
func WithSenderAuth(s SenderAuth) Option {
	return func(a *Analyzer) {
		a.senderAuth = s
	}
}

// WithStore records every non-private report
func WithStore(s history.Store) Option {
	return func(a *Analyzer) {
		a.store = s
	}
}

// WithClock overrides the record timestamp source
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIDGenerator overrides how record ids are minted
func WithIDGenerator(fn func() string) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// New creates an Analyzer around s
func New(s Scanner, opts ...Option) *Analyzer {
	a := &Analyzer{
		scanner: s,
		now:     time.Now,
		newID:   history.NewID,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze scores one message. Only a failed scan is returned as an error; sender policy and
// history failures are logged and leave the report intact
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	urls := lo.Filter(append([]string{req.URL}, req.URLs...), func(u string, _ int) bool {
		return strings.TrimSpace(u) != ""
	})

	scan, err := a.scanner.Scan(ctx, scanner.Request{Text: req.EmailText, Sender: req.SenderEmail, URLs: urls})
	if err != nil {
		return nil, err
	}

	manipulation := signals.Manipulation(req.EmailText)
	ai := signals.AIPattern(req.EmailText)
	brand := signals.BrandText(req.EmailText, req.SenderEmail)
	header, headerDetails := signals.Headers(req.EmailHeader)
	intel, intelDetails := signals.HeaderIntel(req.EmailHeader)

	urlScore := lo.MaxBy(scan.URLFindings, func(x, y types.URLFinding) bool { return x.Score > y.Score }).Score

	finalRisk, verdict, confidence := signals.FuseRisk(manipulation.Score, urlScore, ai, brand+header+intel)

	var domainAge *int
	if len(scan.URLFindings) > 0 {
		domainAge = scan.IntelligenceProfile.AdvancedTechnicalDetails.DomainAgeDays
	}

	layers := signals.LayerScores{
		Manipulation: manipulation.Score,
		URL:          urlScore,
		Brand:        brand,
		Header:       header,
		Phrases:      manipulation.FlaggedPhrases,
	}

	report := &Report{
		FinalRisk:        finalRisk,
		Verdict:          verdict,
		ConfidenceLevel:  confidence,
		ThreatCategory:   signals.Category(layers),
		ReasoningSummary: signals.ReasoningSummary(layers, domainAge),
		Breakdown: Breakdown{
			ManipulationScore:       manipulation.Score,
			URLScore:                urlScore,
			AIGeneratedScore:        ai,
			BrandImpersonationScore: brand,
			HeaderScore:             header,
		},
		PsychologicalIndex: manipulation.Index,
		HighlightedPhrases: manipulation.FlaggedPhrases,
		DomainAgeDays:      domainAge,
		HeaderAnalysis:     headerDetails,
		ThreatIntel:        intelDetails,
		SenderAuth:         a.checkSender(ctx, req.SenderEmail),
		AttackSimulation:   signals.AttackSimulation(finalRisk),
		Scan:               scan,
	}

	if !req.PrivateMode && a.store != nil {
		a.record(ctx, report)
	}

	return report, nil
}

func (a *Analyzer) checkSender(ctx context.Context, sender string) *emailauth.Result {
	if a.senderAuth == nil || strings.TrimSpace(sender) == "" {
		return nil
	}

	res, err := a.senderAuth.Check(ctx, sender)
	if err != nil {
		log.Debug().Err(err).Str("sender", sender).Msg("sender policy check failed")
		return nil
	}

	return &res
}

func (a *Analyzer) record(ctx context.Context, report *Report) {
	report.ID = a.newID()

	payload, err := json.Marshal(report)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode report for history")
	}

	rec := history.Record{
		ID:              report.ID,
		FinalRisk:       report.FinalRisk,
		Verdict:         string(report.Verdict),
		ConfidenceLevel: string(report.ConfidenceLevel),
		ThreatCategory:  report.ThreatCategory,
		Timestamp:       a.now().UTC(),
		Result:          payload,
	}

	if err := a.store.Save(ctx, rec); err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Msg("failed to record report")

		report.ID = ""
	}
}
