package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type presetRequest struct {
	ClientName string            `json:"client_name"`
	RuleName   string            `json:"rule_name"`
	Headers    map[string]string `json:"headers"`
}

// handleListPresets returns all saved mapping presets.
func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, presets)
}

// handleCreatePreset saves a new mapping preset.
func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	preset, err := s.service.CreatePreset(r.Context(), req.ClientName, req.RuleName, req.Headers)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(preset)
}

// handleGetPreset returns one preset by id.
func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := s.service.GetPreset(r.Context(), chi.URLParam(r, "presetID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, preset)
}

// handleUpdatePreset replaces a preset's label and header map.
func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	preset, err := s.service.UpdatePreset(r.Context(), chi.URLParam(r, "presetID"), req.ClientName, req.RuleName, req.Headers)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, preset)
}

// handleDeletePreset removes a preset. Unknown ids are a no-op.
func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeletePreset(r.Context(), chi.URLParam(r, "presetID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"deleted"}`))
}
