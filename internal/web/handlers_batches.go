package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/reportstack/consolidator/internal/logging"
	authmw "github.com/reportstack/consolidator/internal/web/middleware"
)

// handleListBatches lists the batches currently in the master worksheet,
// in upload order.
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.service.ListBatches(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, batches)
}

// handleDeleteBatch removes all rows of one batch from the master
// worksheet. Unknown ids are a no-op.
func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	if err := s.service.DeleteBatch(r.Context(), batchID); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("batch deleted", "batch_id", batchID)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"deleted"}`))
}

// handleArchiveBatches moves the named batches from the master worksheet
// to the archive worksheet.
func (s *Server) handleArchiveBatches(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BatchIDs []string `json:"batch_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if len(req.BatchIDs) == 0 {
		badRequest(w, "no batches specified")
		return
	}

	if err := s.service.ArchiveBatches(r.Context(), req.BatchIDs); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("batches archived", "batch_ids", req.BatchIDs)
	writeJSON(w, map[string]any{"status": "archived", "batch_ids": req.BatchIDs})
}

// handleClearArchive empties the archive worksheet, keeping its headers.
func (s *Server) handleClearArchive(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearArchive(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"cleared"}`))
}

// handleExportBatch downloads one batch as CSV, projected onto the
// session's target schema.
func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	s.serveExport(w, r, []string{batchID}, batchID)
}

// handleExport downloads the union of the selected batches as one CSV.
// Batch ids come comma-separated in the ids query parameter.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		badRequest(w, "missing ids parameter")
		return
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		badRequest(w, "missing ids parameter")
		return
	}
	s.serveExport(w, r, ids, "combined_report")
}

func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, ids []string, baseName string) {
	fields := authmw.SessionFromContext(r.Context()).Schema.Fields()
	data, err := s.service.Export(r.Context(), ids, fields)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", baseName, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.Write(data)
}

// handleReset empties the master and archive worksheets.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reset(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Warn("hard reset",
		"by", authmw.SessionFromContext(r.Context()).User)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"reset"}`))
}
