package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/sloimpact/internal/alert"
	"github.com/roach88/sloimpact/internal/engine"
	"github.com/roach88/sloimpact/internal/issue"
	"github.com/roach88/sloimpact/internal/loader"
	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/store"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ImportResponse answers a model import.
type ImportResponse struct {
	ArchitectureID string               `json:"architecture_id"`
	SystemID       string               `json:"system_id"`
	Warnings       []model.CycleWarning `json:"warnings"`
}

// ChainEntry is one impact of a chain, head first.
type ChainEntry struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	CauseID  string `json:"cause_id,omitempty"`
}

// pinger is implemented by backends with a connection to check.
type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.backend.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	var a alert.Alert
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&a); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	AddLogField(r.Context(), "rule", a.SloID)

	report, err := s.alerts.Receive(r.Context(), a)
	if err != nil {
		status, code := alertStatus(err)
		s.writeError(w, r, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// alertStatus maps a Receive error to an HTTP status and error code.
func alertStatus(err error) (int, string) {
	switch {
	case errors.Is(err, alert.ErrInvalidAlert):
		return http.StatusBadRequest, "INVALID_ALERT"
	case errors.Is(err, alert.ErrUnknownRule), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case engine.IsInputError(err):
		return http.StatusUnprocessableEntity, string(engine.ErrCodeInvalidInput)
	case engine.IsQuotaError(err):
		return http.StatusUnprocessableEntity, string(engine.ErrCodeQuotaExceeded)
	case issue.IsCreationFailed(err), issue.IsLinkageFailed(err):
		return http.StatusBadGateway, "ISSUE_TRACKER_FAILED"
	}
	if code, ok := engine.CodeOf(err); ok {
		return http.StatusInternalServerError, string(code)
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func (s *Server) handleImportModel(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}

	doc, err := loader.Decode(data, loader.FormatFromContentType(r.Header.Get("Content-Type")))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "PARSE_FAILED", err)
		return
	}
	sys, warnings, err := loader.Build(doc)
	if err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, "INVALID_MODEL", err)
		return
	}
	if err := s.backend.SaveSystem(r.Context(), sys); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	AddLogField(r.Context(), "architecture", sys.Architecture.ID)

	writeJSON(w, http.StatusCreated, ImportResponse{
		ArchitectureID: sys.Architecture.ID,
		SystemID:       sys.ID,
		Warnings:       warnings,
	})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.ListSystems(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	sys, err := s.backend.FindSystemByArchitectureID(r.Context(), chi.URLParam(r, "architectureID"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sys)
}

func (s *Server) handleImpactChain(w http.ResponseWriter, r *http.Request) {
	chain, err := s.backend.ReadChain(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	out := make([]ChainEntry, len(chain))
	for i, imp := range chain {
		out[i] = ChainEntry{ID: imp.ID, Location: imp.Location.String(), CauseID: imp.CauseID}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	recs, err := s.backend.ListNotifications(r.Context(), r.URL.Query().Get("rule"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "NOT_FOUND", err)
		return
	}
	s.writeError(w, r, http.StatusInternalServerError, "STORE_FAILED", err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	AddError(r.Context(), err)
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: GetRequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
