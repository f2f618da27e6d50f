package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/theopenlane/spectra/internal/analyzer"
	"github.com/theopenlane/spectra/internal/history"
	"github.com/theopenlane/spectra/internal/mailparse"
	"github.com/theopenlane/spectra/internal/scanner"
	"github.com/theopenlane/spectra/internal/severity"
	"github.com/theopenlane/spectra/internal/types"
)

// ScanRequest is one message submitted for a consensus scan. URLs are extracted from Text
// when none are given
type ScanRequest struct {
	Text           string   `json:"text"`
	Sender         string   `json:"sender"`
	URLs           []string `json:"urls"`
	ConversationID string   `json:"conversation_id"`
}

// ScanResult is the consensus scan with the per-link severity rollup of its findings
type ScanResult struct {
	*types.UnifiedScanResult

	MailSeverity   types.MailSeverityRollup `json:"mail_severity"`
	ConversationID string                   `json:"conversation_id,omitempty"`
	SlackNotified  bool                     `json:"slack_notified"`
}

// AnalyzeURLRequest asks for the engine finding of a single URL
type AnalyzeURLRequest struct {
	URL string `json:"url"`
}

// MailSeverityRequest carries findings to roll up
type MailSeverityRequest struct {
	URLFindings []types.URLFinding `json:"url_findings"`
}

// handleScan runs the consensus scanner over one message
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req ScanRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	urls := cleanURLs(req.URLs)
	if len(urls) == 0 {
		urls = mailparse.ExtractURLs(req.Text)
	}

	if strings.TrimSpace(req.Text) == "" && len(urls) == 0 {
		respondError(w, http.StatusBadRequest, errCodeValidation, ErrTextOrURLsRequired.Error())
		return
	}

	res, err := h.scanner.Scan(r.Context(), scanner.Request{
		Text:   req.Text,
		Sender: req.Sender,
		URLs:   urls,
	})
	if err != nil {
		respondScanError(w, err)
		return
	}

	out := ScanResult{
		UnifiedScanResult: res,
		MailSeverity:      severity.Aggregate(res.URLFindings),
		ConversationID:    strings.TrimSpace(req.ConversationID),
	}

	// the response is built either way; history and alerting run past a client disconnect
	ctx := context.WithoutCancel(r.Context())

	if out.ConversationID != "" && h.history != nil {
		h.recordScan(ctx, out)
	}

	if h.notifier != nil {
		sent, err := h.notifier.Notify(ctx, res)
		if err != nil {
			log.Warn().Err(err).Float64("score", res.UnifiedScore).Msg("failed to send scan alert")
		}

		out.SlackNotified = sent
	}

	respond(w, out)
}

func (h *Handler) recordScan(ctx context.Context, out ScanResult) {
	payload, err := json.Marshal(out)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", out.ConversationID).Msg("failed to encode scan for history")
		return
	}

	rec := history.Record{
		ID:              out.ConversationID,
		FinalRisk:       out.UnifiedScore,
		Verdict:         string(out.Verdict),
		ConfidenceLevel: string(out.ConfidenceLevel),
		ThreatCategory:  lo.FromPtr(out.DetectedBrand),
		Timestamp:       out.ScannedAt,
		Result:          payload,
	}

	if err := h.history.Save(ctx, rec); err != nil {
		log.Warn().Err(err).Str("conversation_id", rec.ID).Msg("failed to record scan")
	}
}

// handleAnalyzeURL returns the engine finding for one URL without enrichment
func (h *Handler) handleAnalyzeURL(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req AnalyzeURLRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		respondError(w, http.StatusBadRequest, errCodeValidation, ErrURLRequired.Error())
		return
	}

	respond(w, h.urls.Analyze(r.Context(), url))
}

// handleMailSeverity rolls supplied findings up to one message verdict
func (h *Handler) handleMailSeverity(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req MailSeverityRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	respond(w, severity.Aggregate(req.URLFindings))
}

// handleAnalyze builds the full explainable report for one message
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req analyzer.Request
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	if strings.TrimSpace(req.EmailText) == "" && strings.TrimSpace(req.URL) == "" && len(cleanURLs(req.URLs)) == 0 {
		respondError(w, http.StatusBadRequest, errCodeValidation, ErrAnalyzeInputRequired.Error())
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		respondScanError(w, err)
		return
	}

	respond(w, report)
}

func respondScanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scanner.ErrScanDeadline), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, http.StatusGatewayTimeout, errCodeTimeout, err.Error())
	default:
		log.Error().Err(err).Msg("scan failed")
		respondError(w, http.StatusInternalServerError, errCodeInternal, ErrScanFailed.Error())
	}
}

func cleanURLs(urls []string) []string {
	return lo.Compact(lo.Map(urls, func(u string, _ int) string {
		return strings.TrimSpace(u)
	}))
}
