package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/catzoCode/catzoteam-project/internal/server/authctx"
	"github.com/catzoCode/catzoteam-project/internal/service"
	"github.com/go-chi/chi/v5"
)

// WarningHandler covers warning letters for below-threshold months.
type WarningHandler struct {
	Service service.WarningService
}

func (h WarningHandler) RegisterRoutes(r chi.Router) {
	r.Get("/warnings/mine", h.mine)
	r.Post("/warnings/{id}/acknowledge", h.acknowledge)
}

func (h WarningHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/warnings/candidates", h.candidates)
	r.Post("/warnings", h.issue)
	r.Get("/warnings/staff/{id}", h.forStaff)
}

func (h WarningHandler) mine(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Service.ListForStaff(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, warningListPayload(items))
}

func (h WarningHandler) acknowledge(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Service.Acknowledge(r.Context(), id, user.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "warning acknowledged"})
}

func (h WarningHandler) candidates(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	items, err := h.Service.Candidates(r.Context(), month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, c := range items {
		out = append(out, map[string]any{
			"staff_id":     c.StaffID,
			"staff_name":   c.StaffName,
			"branch":       c.Branch,
			"month":        c.Month.Format(monthLayout),
			"total_points": c.TotalPoints,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h WarningHandler) issue(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		StaffID     int64  `json:"staff_id"`
		Month       string `json:"month"`
		Reason      string `json:"reason"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.StaffID == 0 {
		writeError(w, http.StatusBadRequest, "staff_id is required")
		return
	}
	month, err := time.Parse(monthLayout, req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	letter, err := h.Service.Issue(r.Context(), repository.IssueWarningInput{
		StaffID:     req.StaffID,
		Month:       month,
		Reason:      req.Reason,
		Description: req.Description,
		IssuedBy:    user.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, warningPayload(letter))
}

func (h WarningHandler) forStaff(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	items, err := h.Service.ListForStaff(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, warningListPayload(items))
}

func warningListPayload(items []domain.WarningLetter) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, warningPayload(&items[i]))
	}
	return out
}

func warningPayload(l *domain.WarningLetter) map[string]any {
	payload := map[string]any{
		"id":              l.ID,
		"staff_id":        l.StaffID,
		"month":           l.Month.Format(monthLayout),
		"reason":          l.Reason,
		"points_achieved": l.PointsAchieved,
		"description":     l.Description,
		"issued_at":       l.IssuedAt.Format(time.RFC3339),
		"acknowledged":    l.Acknowledged,
	}
	if l.IssuedBy != nil {
		payload["issued_by"] = *l.IssuedBy
	}
	if l.AcknowledgedAt != nil {
		payload["acknowledged_at"] = l.AcknowledgedAt.Format(time.RFC3339)
	}
	return payload
}
