package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	authmw "github.com/reportstack/consolidator/internal/web/middleware"
)

type schemaResponse struct {
	Fields     []string `json:"fields"`
	Generation uint64   `json:"generation"`
}

// handleGetSchema returns the session's current target schema. The
// generation counter lets clients notice when a resolved mapping has
// gone stale.
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schema := authmw.SessionFromContext(r.Context()).Schema
	writeJSON(w, schemaResponse{
		Fields:     schema.Fields(),
		Generation: schema.Generation(),
	})
}

// handleAddField appends a new target field.
func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "field name is required")
		return
	}

	schema := authmw.SessionFromContext(r.Context()).Schema
	if err := schema.AddField(req.Name); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, schemaResponse{Fields: schema.Fields(), Generation: schema.Generation()})
}

// handleRenameField renames the target field at the given position.
func (s *Server) handleRenameField(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		badRequest(w, "invalid field index")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "field name is required")
		return
	}

	schema := authmw.SessionFromContext(r.Context()).Schema
	if err := schema.RenameField(index, req.Name); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, schemaResponse{Fields: schema.Fields(), Generation: schema.Generation()})
}

// handleRemoveField removes a target field by name. Removing an absent
// field succeeds without changing anything.
func (s *Server) handleRemoveField(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		badRequest(w, "missing field name")
		return
	}

	schema := authmw.SessionFromContext(r.Context()).Schema
	schema.RemoveField(name)
	writeJSON(w, schemaResponse{Fields: schema.Fields(), Generation: schema.Generation()})
}
