package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/seed"
)

type SeedHandler struct {
	seeder *seed.Seeder
	logger *zap.Logger
}

func NewSeedHandler(seeder *seed.Seeder, logger *zap.Logger) *SeedHandler {
	return &SeedHandler{seeder: seeder, logger: logger}
}

type reseedRequest struct {
	Start model.Date `json:"start,omitempty"`
	Days  int        `json:"days,omitempty"`
}

// Reseed regenerates the synthetic demo slots. Defaults to a window
// starting today; an empty body is accepted.
func (h *SeedHandler) Reseed(w http.ResponseWriter, r *http.Request) {
	req := reseedRequest{Days: 19}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}
	if req.Start.IsZero() {
		req.Start = model.DateOf(time.Now().UTC())
	}
	if req.Days < 1 {
		req.Days = 19
	}

	created, err := h.seeder.Reseed(r.Context(), req.Start, req.Days)
	if err != nil {
		h.logger.Error("Reseed failed", zap.Error(err))
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}
