package http

import (
	"net/http"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.ListCategories(r.Context())
	if err != nil {
		storageError(w, r, err, "list categories")
		return
	}
	respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.categories.CreateCategory(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		storageError(w, r, err, "create category")
		return
	}

	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.categories.UpdateCategory(r.Context(), id, sanitizeInput(req.Name))
	if err != nil {
		storageError(w, r, err, "update category")
		return
	}

	s.invalidateSummaries()
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := s.categories.DeleteCategory(r.Context(), id); err != nil {
		storageError(w, r, err, "delete category")
		return
	}

	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}
