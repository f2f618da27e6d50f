package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/theopenlane/spectra/internal/history"
)

// HistoryList is the stored history, newest first
type HistoryList struct {
	Records []history.Record `json:"records"`
	Count   int              `json:"count"`
}

// HistoryDeleted reports the outcome of a delete
type HistoryDeleted struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id,omitempty"`
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrHistoryNotConfigured.Error())
		return
	}

	records, err := h.history.List(r.Context())
	if err != nil {
		respondHistoryError(w, err)
		return
	}

	respond(w, HistoryList{Records: records, Count: len(records)})
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrHistoryNotConfigured.Error())
		return
	}

	if err := h.history.Clear(r.Context()); err != nil {
		respondHistoryError(w, err)
		return
	}

	respond(w, HistoryDeleted{Deleted: true})
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrHistoryNotConfigured.Error())
		return
	}

	rec, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondHistoryError(w, err)
		return
	}

	respond(w, rec)
}

func (h *Handler) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrHistoryNotConfigured.Error())
		return
	}

	id := chi.URLParam(r, "id")

	deleted, err := h.history.Delete(r.Context(), id)
	if err != nil {
		respondHistoryError(w, err)
		return
	}

	if !deleted {
		respondError(w, http.StatusNotFound, errCodeNotFound, ErrRecordNotFound.Error())
		return
	}

	respond(w, HistoryDeleted{Deleted: true, ID: id})
}

func respondHistoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound):
		respondError(w, http.StatusNotFound, errCodeNotFound, ErrRecordNotFound.Error())
	case errors.Is(err, history.ErrMissingID):
		respondError(w, http.StatusBadRequest, errCodeValidation, err.Error())
	default:
		log.Error().Err(err).Msg("history store failed")
		respondError(w, http.StatusInternalServerError, errCodeInternal, err.Error())
	}
}
