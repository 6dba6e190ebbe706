package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wicaksana/logbook/internal/model"
	"github.com/wicaksana/logbook/internal/month"
	"github.com/wicaksana/logbook/internal/realtime"
	"github.com/wicaksana/logbook/internal/store"
)

// RecordHandler serves the /api/backups resource.
type RecordHandler struct {
	records *store.RecordStore
	hub     *realtime.Hub
	logger  *slog.Logger
}

func NewRecordHandler(rs *store.RecordStore, hub *realtime.Hub, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{records: rs, hub: hub, logger: logger}
}

func (h *RecordHandler) broadcast(action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(realtime.RecordEvent(action, id))
	}
}

// recordRequest deliberately has no month field: month is derived from the
// date on every create and update, so a client-supplied value is ignored.
type recordRequest struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	BackupNumber string `json:"backupNumber"`
	Performer    string `json:"performer"`
}

// validate trims the payload in place and returns the derived month, or an
// empty month and a client-facing message when the payload is unusable.
func (req *recordRequest) validate() (string, string) {
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.BackupNumber = strings.TrimSpace(req.BackupNumber)
	req.Performer = strings.TrimSpace(req.Performer)

	switch {
	case req.Date == "":
		return "", "date is required"
	case req.Time == "":
		return "", "time is required"
	case req.BackupNumber == "":
		return "", "backupNumber is required"
	case req.Performer == "":
		return "", "performer is required"
	}

	m, err := month.FromDate(req.Date)
	if err != nil {
		return "", "date must be an ISO-8601 date"
	}
	return m, ""
}

func (req *recordRequest) input() model.RecordInput {
	return model.RecordInput{
		Date:         req.Date,
		Time:         req.Time,
		BackupNumber: req.BackupNumber,
		Performer:    req.Performer,
	}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List()
	if err != nil {
		h.logger.Error("list records", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backup records"})
		return
	}
	if records == nil {
		records = []model.BackupRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	m, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	rec, err := h.records.Create(req.input(), m)
	if err != nil {
		h.logger.Error("create record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create backup record"})
		return
	}

	h.broadcast("created", rec.ID)

	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.records.GetByID(id)
	if err != nil {
		h.logger.Error("get record", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get backup record"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	m, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	rec, err := h.records.Update(id, req.input(), m)
	if err != nil {
		h.logger.Error("update record", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update backup record"})
		return
	}

	h.broadcast("updated", id)

	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.records.Delete(id)
	if err != nil {
		h.logger.Error("delete record", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete backup record"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
		return
	}

	h.broadcast("deleted", id)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Record deleted successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
