package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/slotboard/slotboard/internal/repository"
	"github.com/slotboard/slotboard/internal/schedule"
	"github.com/slotboard/slotboard/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writeEngineError maps engine rejections to status codes. Conflict
// responses carry the conflicting slot list for diagnostic display.
func writeEngineError(w http.ResponseWriter, err error) {
	var conflictErr *schedule.ConflictError
	var zoneErr *schedule.ZoneError

	switch {
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     "slot overlaps existing slots",
			"conflicts": conflictErr.Conflicts,
		})
	case errors.As(err, &zoneErr):
		writeError(w, http.StatusBadRequest, "unknown timezone: "+zoneErr.Zone)
	case errors.Is(err, schedule.ErrInvalidSlotShape),
		errors.Is(err, schedule.ErrMissingRecurrenceBound),
		errors.Is(err, schedule.ErrNonexistentLocalTime):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot not found")
	case errors.Is(err, service.ErrNotSlotOwner):
		writeError(w, http.StatusForbidden, "slot belongs to another user")
	case errors.Is(err, repository.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
