package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/reportstack/consolidator/internal/core"
	"github.com/reportstack/consolidator/internal/logging"
	"github.com/reportstack/consolidator/internal/parse"
	authmw "github.com/reportstack/consolidator/internal/web/middleware"
)

// readUploadedFile extracts and parses the multipart "file" field. When
// ok is false the caller already got an error response.
func (s *Server) readUploadedFile(w http.ResponseWriter, r *http.Request) (core.Table, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		badRequest(w, "file too large or invalid form")
		return core.Table{}, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "no file provided")
		return core.Table{}, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "failed to read file")
		return core.Table{}, "", false
	}

	src, err := parse.File(header.Filename, data)
	if err != nil {
		badRequest(w, err.Error())
		return core.Table{}, "", false
	}
	return src, header.Filename, true
}

// handleInspectUpload parses an uploaded file and proposes a column
// mapping for it: preset exact matches first (when preset_id is given),
// then the substring heuristic, otherwise unmapped. The client lets the
// user override any assignment before confirming the real upload.
func (s *Server) handleInspectUpload(w http.ResponseWriter, r *http.Request) {
	src, filename, ok := s.readUploadedFile(w, r)
	if !ok {
		return
	}

	var preset *core.Preset
	if presetID := r.FormValue("preset_id"); presetID != "" {
		p, err := s.service.GetPreset(r.Context(), presetID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		preset = p
	}

	sess := authmw.SessionFromContext(r.Context())
	fields := sess.Schema.Fields()
	mapping := core.Resolve(fields, src.Columns, preset)

	writeJSON(w, map[string]any{
		"file_name":      filename,
		"source_columns": src.Columns,
		"fields":         fields,
		"mapping":        mapping,
		"rows":           len(src.Rows),
		"generation":     sess.Schema.Generation(),
	})
}

// handleUpload ingests an uploaded file using the confirmed mapping and
// appends it to the master worksheet as a new batch.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	src, filename, ok := s.readUploadedFile(w, r)
	if !ok {
		return
	}

	mapping := core.ColumnMapping{}
	if raw := r.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			badRequest(w, "invalid mapping format")
			return
		}
	}
	mapping.Revalidate(src.Columns)

	displayName := r.FormValue("display_name")
	if displayName == "" {
		displayName = filename
	}

	sess := authmw.SessionFromContext(r.Context())
	batch, err := s.service.Ingest(r.Context(), src, sess.Schema.Fields(), mapping, displayName, sess.User)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("batch ingested",
		"batch_id", batch.ID,
		"display_name", batch.DisplayName,
		"rows", batch.Rows,
		"uploaded_by", batch.UploadedBy,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(batch)
}
