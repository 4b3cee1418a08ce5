package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pesatrack/internal/engine"
	"pesatrack/internal/storage"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	all, err := s.service.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	payloads := make([]transactionPayload, 0, len(all))
	for _, t := range all {
		payloads = append(payloads, toTransactionPayload(t))
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := payload.toTransaction()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.service.CreateTransaction(r.Context(), t); err != nil {
		slog.ErrorContext(r.Context(), "Create transaction error", "error", err, "id", t.ID)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	// Any stored write may change derived output.
	s.summaryCache.Purge()

	writeJSON(w, http.StatusCreated, toTransactionPayload(t))
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := s.service.GetTransaction(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Get transaction error", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "failed to load transaction")
			return
		}
		writeJSON(w, http.StatusOK, toTransactionPayload(t))
	case http.MethodDelete:
		err := s.service.DeleteTransaction(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Delete transaction error", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "failed to delete transaction")
			return
		}
		s.summaryCache.Purge()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toFilterPayloads(s.filters.Current()))
	case http.MethodPost:
		s.handleApplyFilters(w, r)
	case http.MethodDelete:
		s.handleRemoveFilters(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleApplyFilters(w http.ResponseWriter, r *http.Request) {
	incoming, err := decodeFilters(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	next := s.filters.Apply(incoming...)
	slog.InfoContext(r.Context(), "Filters reconciled",
		"incoming", len(incoming),
		"active", len(next))
	writeJSON(w, http.StatusOK, toFilterPayloads(next))
}

func (s *Server) handleRemoveFilters(w http.ResponseWriter, r *http.Request) {
	// An empty body clears the whole set.
	if r.ContentLength == 0 {
		s.filters.Clear()
		writeJSON(w, http.StatusOK, []filterPayload{})
		return
	}

	toRemove, err := decodeFilters(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	next := s.filters.Remove(toRemove...)
	writeJSON(w, http.StatusOK, toFilterPayloads(next))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	active := s.filters.Current()
	key := fingerprint(active)

	if bundle, ok := s.summaryCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Summary cache hit", "key", key)
		writeJSON(w, http.StatusOK, toSummaryPayload(bundle, active))
		return
	}

	all, err := s.service.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	bundle := engine.ComposeSampled(all, active, engine.DefaultPolicy, time.Now(), s.trendPoints)
	s.summaryCache.Set(key, bundle)

	slog.InfoContext(r.Context(), "Summary computed",
		"filters", len(active),
		"records", len(bundle.Transactions),
		"granularity", string(bundle.Period.Granularity))
	writeJSON(w, http.StatusOK, toSummaryPayload(bundle, active))
}

func decodeFilters(r *http.Request) ([]engine.Filter, error) {
	var payloads []filterPayload
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if len(payloads) == 0 {
		return nil, errors.New("no filters in request")
	}

	filters := make([]engine.Filter, 0, len(payloads))
	for i, p := range payloads {
		f, err := p.toFilter()
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func toFilterPayloads(set engine.FilterSet) []filterPayload {
	out := make([]filterPayload, 0, len(set))
	for _, f := range set {
		out = append(out, toFilterPayload(f))
	}
	return out
}
