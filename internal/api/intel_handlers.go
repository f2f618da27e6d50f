package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/theopenlane/spectra/internal/intel"
)

// IntelLookupRequest asks whether a URL is listed on a hydrated feed.
type IntelLookupRequest struct {
	URL string `json:"url"`
}

// IntelLookupResult is the feed membership of one URL.
type IntelLookupResult struct {
	// URL is the URL as submitted.
	URL string `json:"url"`
	// Listed reports whether any feed carries the URL.
	Listed bool `json:"listed"`
	// Entry is the feed record when listed.
	Entry *intel.ThreatFeedEntry `json:"entry,omitempty"`
}

// handleIntelHydrate triggers a fresh hydration of all configured feeds.
func (h *Handler) handleIntelHydrate(w http.ResponseWriter, r *http.Request) {
	if h.intel == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrIntelNotConfigured.Error())
		return
	}

	summary, err := h.intel.Hydrate(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		code := errCodeInternal

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
			code = errCodeTimeout
		}

		respondError(w, status, code, err.Error())
		return
	}

	respond(w, summary)
}

// handleIntelLookup checks one URL against the hydrated feeds.
func (h *Handler) handleIntelLookup(w http.ResponseWriter, r *http.Request) {
	if h.intel == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrIntelNotConfigured.Error())
		return
	}

	h.limitBody(w, r)

	var req IntelLookupRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	entry, listed, err := h.intel.Check(req.URL)
	if err != nil {
		switch {
		case errors.Is(err, intel.ErrEmptyURL):
			respondError(w, http.StatusBadRequest, errCodeValidation, err.Error())
		case errors.Is(err, intel.ErrNotHydrated):
			respondError(w, http.StatusConflict, errCodeConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error())
		}

		return
	}

	result := IntelLookupResult{URL: req.URL, Listed: listed}
	if listed {
		result.Entry = &entry
	}

	respond(w, result)
}
