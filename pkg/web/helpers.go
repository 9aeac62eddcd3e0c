package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// ParseUUIDParam extracts and validates a UUID path parameter.
// Returns the parsed value and a boolean indicating success.
func ParseUUIDParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", name, raw))
		return uuid.UUID{}, false
	}
	return id, true
}

// ParseIntParam extracts a non-negative integer path parameter.
// Returns the parsed value and a boolean indicating success.
func ParseIntParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (int32, bool) {
	raw := r.PathValue(name)
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || value < 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", name, raw))
		return 0, false
	}
	return int32(value), true
}
