package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"pethotel/internal/documents"
	"pethotel/internal/models"

	"github.com/go-chi/chi/v5"
)

const maxDocumentSize = 1 << 20

func documentKey(r *http.Request) models.DocumentKey {
	return models.DocumentKey{Collection: chi.URLParam(r, "collection"), ID: chi.URLParam(r, "docID")}
}

func (s *HTTPServer) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Documents.Get(r.Context(), documentKey(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if data == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleSetDocument(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	pending, err := s.svc.Documents.Set(r.Context(), documentKey(r), data)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.respondPending(w, r, pending, json.RawMessage(data))
}

// respondPending answers 202 right away, or waits for the debounced write
// with ?wait=true and answers 200 once it is stored.
func (s *HTTPServer) respondPending(w http.ResponseWriter, r *http.Request, pending *documents.Pending, body any) {
	if !waitRequested(r) {
		writeJSON(w, http.StatusAccepted, body)
		return
	}
	if err := pending.Wait(r.Context()); err != nil {
		s.writeServiceError(w, r, fmt.Errorf("document write failed: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// handleDocumentEvents streams the document as server-sent events: the
// current value first, then every change until the client goes away.
func (s *HTTPServer) handleDocumentEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	key := documentKey(r)

	changes := make(chan []byte, 8)
	cancel, err := s.svc.Documents.Subscribe(r.Context(), key, func(data []byte) {
		select {
		case changes <- data:
		default:
			s.logger.Warn().Str("document", key.String()).Msg("Dropping document event for slow client")
		}
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer cancel()

	current, err := s.svc.Documents.Get(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if current == nil {
		current = []byte("null")
	}
	writeEvent(w, current)
	flusher.Flush()

	streamEvents(r.Context(), w, flusher, changes)
}

func streamEvents(ctx context.Context, w io.Writer, flusher http.Flusher, changes <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-changes:
			writeEvent(w, data)
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, data []byte) {
	_, _ = fmt.Fprintf(w, "event: document\ndata: %s\n\n", data)
}

func (s *HTTPServer) handleGetPricing(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Pricing.Snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "pricing not loaded")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) handleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	var body models.PricingConfig
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pending, err := s.svc.Pricing.Update(r.Context(), body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.respondPending(w, r, pending, s.svc.Pricing.Snapshot())
}

func (s *HTTPServer) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Settings.Get())
}

func (s *HTTPServer) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body models.GlobalConfig
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pending, err := s.svc.Settings.Update(r.Context(), body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.respondPending(w, r, pending, s.svc.Settings.Get())
}
