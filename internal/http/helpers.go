package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"faturas/internal/core"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// errorJSON writes a JSON error body with the given status.
func errorJSON(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// storageError maps repository errors to HTTP responses without leaking
// internals for unexpected failures.
func storageError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrDuplicateCode):
		errorJSON(w, http.StatusConflict, "a category with this code already exists")
	case errors.Is(err, core.ErrEmptyName):
		errorJSON(w, http.StatusBadRequest, "name is required")
	case errors.Is(err, core.ErrEmptyCode):
		errorJSON(w, http.StatusBadRequest, "name must contain at least one letter or digit")
	default:
		slog.ErrorContext(r.Context(), "Storage operation failed",
			"operation", op, "error", err, "url", r.URL.Path)
		errorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a request body into v, reporting malformed or
// oversized payloads.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// pathID parses the {id} path value as an int64.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
}

// queryYear extracts the year query parameter, trimmed; empty when absent.
func queryYear(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("year"))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
