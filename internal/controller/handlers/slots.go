package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/service"
)

type SlotHandler struct {
	slots  *service.SlotService
	logger *zap.Logger
}

func NewSlotHandler(slots *service.SlotService, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{slots: slots, logger: logger}
}

type createSlotRequest struct {
	OwnerID    string                `json:"owner_id"`
	OwnerName  string                `json:"owner_name"`
	Date       model.Date            `json:"date"`
	StartTime  model.TimeOfDay       `json:"start_time"`
	EndTime    model.TimeOfDay       `json:"end_time"`
	Timezone   string                `json:"timezone"`
	Recurrence *model.RecurrenceRule `json:"recurrence,omitempty"`
}

// Create persists a slot, expanded through its recurrence rule when one is
// given. Responds 201 with the whole created batch, or 409 with the
// conflicting slots.
func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	if req.Timezone == "" {
		writeError(w, http.StatusBadRequest, "timezone is required")
		return
	}

	rule := model.RecurrenceRule{Frequency: model.FrequencyNone}
	if req.Recurrence != nil {
		freq, err := model.ParseFrequency(string(req.Recurrence.Frequency))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rule = model.RecurrenceRule{Frequency: freq, Until: req.Recurrence.Until}
	}

	draft := model.SlotDraft{
		OwnerID:   req.OwnerID,
		OwnerName: req.OwnerName,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Timezone:  req.Timezone,
		Origin:    model.SlotOriginUser,
	}

	created, err := h.slots.CreateSlots(r.Context(), draft, rule)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if created == nil {
		created = []model.Slot{}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"slots": created})
}

// Calendar returns every slot projected into the requested display
// timezone, with presentation hints for the viewer.
func (h *SlotHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		tz = "UTC"
	}
	viewer := r.URL.Query().Get("viewer")

	entries, err := h.slots.CalendarView(r.Context(), viewer, tz)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if entries == nil {
		entries = []service.CalendarEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"slots": entries})
}

func (h *SlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	slot, err := h.slots.GetSlot(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

type updateSlotRequest struct {
	OwnerID string          `json:"owner_id"`
	Patch   model.SlotPatch `json:"patch"`
}

// Update applies an owner edit to date, times or timezone in place.
func (h *SlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	updated, err := h.slots.UpdateSlot(r.Context(), req.OwnerID, id, req.Patch)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	if err := h.slots.DeleteSlot(r.Context(), owner, id); err != nil {
		writeEngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear removes all of one owner's real slots, leaving demo slots alone.
func (h *SlotHandler) Clear(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	removed, err := h.slots.ClearOwnerSlots(r.Context(), owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
