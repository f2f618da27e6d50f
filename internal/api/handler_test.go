package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/spectra/internal/analyzer"
	"github.com/theopenlane/spectra/internal/intel"
	"github.com/theopenlane/spectra/internal/scanner"
	"github.com/theopenlane/spectra/internal/types"
)

var frozen = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeScanner struct {
	mu     sync.Mutex
	result *types.UnifiedScanResult
	err    error
	got    []scanner.Request
}

func (f *fakeScanner) Scan(_ context.Context, req scanner.Request) (*types.UnifiedScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.got = append(f.got, req)

	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

type fakeURLAnalyzer struct{}

func (fakeURLAnalyzer) Analyze(_ context.Context, rawURL string) types.URLFinding {
	return types.URLFinding{
		URL:      rawURL,
		Score:    62,
		Verdict:  types.VerdictMalicious,
		Evidence: []types.EvidenceItem{{Type: types.EvidenceStructural, Label: "IP-based host"}},
		VTTotal:  70,
	}
}

type fakeAnalyzer struct {
	report *analyzer.Report
	err    error
	got    analyzer.Request
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req analyzer.Request) (*analyzer.Report, error) {
	f.got = req
	return f.report, f.err
}

type fakeIntel struct {
	summary  intel.HydrationSummary
	err      error
	entries  map[string]intel.ThreatFeedEntry
	hydrated bool
}

func (f *fakeIntel) Hydrate(context.Context) (intel.HydrationSummary, error) {
	if f.err != nil {
		return intel.HydrationSummary{}, f.err
	}

	f.hydrated = true

	return f.summary, nil
}

func (f *fakeIntel) Check(url string) (intel.ThreatFeedEntry, bool, error) {
	if strings.TrimSpace(url) == "" {
		return intel.ThreatFeedEntry{}, false, intel.ErrEmptyURL
	}

	if !f.hydrated {
		return intel.ThreatFeedEntry{}, false, intel.ErrNotHydrated
	}

	entry, ok := f.entries[url]

	return entry, ok, nil
}

func (f *fakeIntel) Status() intel.Status {
	return intel.Status{Hydrated: f.hydrated, Entries: len(f.entries), Feeds: []string{"openphish"}}
}

type fakeNotifier struct {
	threshold float64
	err       error
	calls     int
}

func (f *fakeNotifier) Notify(_ context.Context, res *types.UnifiedScanResult) (bool, error) {
	f.calls++

	if res.UnifiedScore < f.threshold {
		return false, nil
	}

	if f.err != nil {
		return false, f.err
	}

	return true, nil
}

func scanResult(score float64, findings ...types.URLFinding) *types.UnifiedScanResult {
	res := &types.UnifiedScanResult{
		UnifiedScore:    score,
		Verdict:         types.RiskLow,
		ConfidenceLevel: types.ConfidenceLow,
		ConsensusMode:   types.ConsensusWeighted,
		URLFindings:     findings,
		ScannedAt:       frozen,
	}

	if score >= 70 {
		res.Verdict = types.RiskHigh
		res.ConfidenceLevel = types.ConfidenceHigh
		res.DetectedBrand = lo.ToPtr("paypal")
	}

	return res
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) Response[T] {
	t.Helper()

	var resp Response[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestHealth(t *testing.T) {
	router := NewRouter(RouterConfig{
		Intel: &fakeIntel{entries: map[string]intel.ThreatFeedEntry{}},
		Now:   func() time.Time { return frozen },
	})

	w := do(t, router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	require.True(t, resp.Success)
	assert.Equal(t, "healthy", resp.Data.Status)
	assert.Equal(t, "spectra", resp.Data.Service)
	assert.Equal(t, "2026-03-01T12:00:00Z", resp.Data.Timestamp)
	require.NotNil(t, resp.Data.Intel)
	assert.False(t, resp.Data.Intel.Hydrated)
}

func TestHealthWithoutIntel(t *testing.T) {
	w := do(t, NewRouter(RouterConfig{}), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Nil(t, resp.Data.Intel)
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "single object", body: `{"url":"http://a.example"}`},
		{name: "unknown field", body: `{"link":"http://a.example"}`, wantErr: true},
		{name: "trailing object", body: `{"url":"a"}{"url":"b"}`, wantErr: true},
		{name: "malformed", body: `{"url":`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			var dst AnalyzeURLRequest

			err := decodeJSONBody(req, &dst)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "http://a.example", dst.URL)
		})
	}
}
