package http

import (
	"net/http"
	"strings"

	"faturas/internal/core"
)

type mappingRequest struct {
	MappingID int64  `json:"mappingId"`
	Place     string `json:"place"`
	CleanName string `json:"cleanName"`
	Category  string `json:"category"`
}

// handleListPlaces lists merchant mappings, optionally filtered by status,
// for the dashboard's category-management screen.
func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	status := core.MappingStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	switch status {
	case "", core.StatusPending, core.StatusLabeled:
	default:
		errorJSON(w, http.StatusBadRequest, "status must be pending or labeled")
		return
	}

	mappings, err := s.mappings.MappingsByStatus(r.Context(), status)
	if err != nil {
		storageError(w, r, err, "list mappings")
		return
	}
	respondJSON(w, http.StatusOK, mappings)
}

// handleUpdateMapping edits a single merchant mapping, addressed by
// mapping id or, as a fallback, by raw place string. Editing by place
// creates the mapping when it does not exist yet.
func (s *Server) handleUpdateMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cleanName := sanitizeInput(req.CleanName)
	category := core.NormalizeCategory(sanitizeInput(req.Category))

	if req.MappingID > 0 {
		if err := s.mappings.UpdateMappingByID(r.Context(), req.MappingID, cleanName, category); err != nil {
			storageError(w, r, err, "update mapping")
			return
		}
		stored, err := s.mappings.MappingByID(r.Context(), req.MappingID)
		if err != nil {
			storageError(w, r, err, "load mapping")
			return
		}
		s.invalidateSummaries()
		respondJSON(w, http.StatusOK, stored)
		return
	}

	key := core.PlaceKey(req.Place)
	if key == "" {
		errorJSON(w, http.StatusBadRequest, "mappingId or place is required")
		return
	}

	if err := s.mappings.UpsertMappingByPlace(r.Context(), req.Place, cleanName, category); err != nil {
		storageError(w, r, err, "upsert mapping")
		return
	}
	byKey, err := s.mappings.MappingsForKeys(r.Context(), []string{key})
	if err != nil {
		storageError(w, r, err, "load mapping")
		return
	}
	stored, ok := byKey[key]
	if !ok {
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, stored)
}
