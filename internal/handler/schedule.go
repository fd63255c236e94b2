package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/catzoCode/catzoteam-project/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

// ScheduleHandler covers the work roster.
type ScheduleHandler struct {
	Repo repository.ScheduleRepository
}

func (h ScheduleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/schedules", h.list)
	r.Get("/schedules/mine", h.mine)
}

func (h ScheduleHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/schedules", h.upsert)
	r.Delete("/schedules", h.delete)
}

func (h ScheduleHandler) list(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	staffID, _ := strconv.ParseInt(r.URL.Query().Get("staff_id"), 10, 64)
	items, err := h.Repo.ListRange(r.Context(), staffID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleListPayload(items))
}

func (h ScheduleHandler) mine(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	items, err := h.Repo.ListRange(r.Context(), user.ID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleListPayload(items))
}

func (h ScheduleHandler) upsert(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		StaffID   int64  `json:"staff_id"`
		Date      string `json:"date"`
		Shift     string `json:"shift"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Branch    string `json:"branch"`
		Notes     string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.StaffID == 0 {
		writeError(w, http.StatusBadRequest, "staff_id is required")
		return
	}
	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	s, err := h.Repo.Upsert(r.Context(), repository.UpsertScheduleInput{
		StaffID:   req.StaffID,
		Date:      day,
		Shift:     domain.ShiftType(req.Shift),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Branch:    req.Branch,
		Notes:     req.Notes,
		CreatedBy: user.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedulePayload(s))
}

func (h ScheduleHandler) delete(w http.ResponseWriter, r *http.Request) {
	staffID, _ := strconv.ParseInt(r.URL.Query().Get("staff_id"), 10, 64)
	if staffID == 0 {
		writeError(w, http.StatusBadRequest, "staff_id is required")
		return
	}
	day, err := parseDateQuery(r, "date")
	if err != nil || day == nil {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	if err := h.Repo.Delete(r.Context(), staffID, *day); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "schedule removed"})
}

func (h ScheduleHandler) rangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from")
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to")
		return time.Time{}, time.Time{}, false
	}
	// Default window is the current week.
	now := time.Now()
	if from == nil {
		start := now.AddDate(0, 0, -int(now.Weekday()))
		from = &start
	}
	if to == nil {
		end := from.AddDate(0, 0, 6)
		to = &end
	}
	if from.After(*to) {
		writeError(w, http.StatusBadRequest, "from must be before to")
		return time.Time{}, time.Time{}, false
	}
	return *from, *to, true
}

func scheduleListPayload(items []domain.Schedule) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, schedulePayload(&items[i]))
	}
	return out
}

func schedulePayload(s *domain.Schedule) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"staff_id":   s.StaffID,
		"date":       s.Date.Format(dateLayout),
		"shift":      string(s.Shift),
		"start_time": s.StartTime,
		"end_time":   s.EndTime,
		"branch":     s.Branch,
		"notes":      s.Notes,
	}
}
