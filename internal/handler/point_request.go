package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/catzoCode/catzoteam-project/internal/server/authctx"
	"github.com/catzoCode/catzoteam-project/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// PointRequestHandler covers manual point claims for off-system work.
type PointRequestHandler struct {
	Service service.PointRequestService
}

func (h PointRequestHandler) RegisterRoutes(r chi.Router) {
	r.Post("/point-requests", h.create)
	r.Get("/point-requests/mine", h.mine)
	r.Get("/point-requests/{id}", h.get)
}

func (h PointRequestHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/point-requests", h.list)
	r.Post("/point-requests/{id}/approve", h.approve)
	r.Post("/point-requests/{id}/reject", h.reject)
}

func (h PointRequestHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		TaskTypeID      *int64 `json:"task_type_id"`
		PointsRequested string `json:"points_requested"`
		DateCompleted   string `json:"date_completed"`
		Reason          string `json:"reason"`
		ReasonDetails   string `json:"reason_details"`
		ProofRef        string `json:"proof_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	points, err := decimal.NewFromString(req.PointsRequested)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid points_requested")
		return
	}
	completed, err := time.Parse(dateLayout, req.DateCompleted)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date_completed")
		return
	}
	pr, err := h.Service.Create(r.Context(), repository.CreatePointRequestInput{
		StaffID:         user.ID,
		TaskTypeID:      req.TaskTypeID,
		PointsRequested: points,
		DateCompleted:   completed,
		Reason:          req.Reason,
		ReasonDetails:   req.ReasonDetails,
		ProofRef:        req.ProofRef,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pointRequestPayload(pr))
}

func (h PointRequestHandler) mine(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Service.List(r.Context(), user.ID, domain.ApprovalStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pointRequestListPayload(items))
}

func (h PointRequestHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), 0, domain.ApprovalStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pointRequestListPayload(items))
}

func (h PointRequestHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	pr, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pointRequestPayload(pr))
}

func (h PointRequestHandler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h PointRequestHandler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

func (h PointRequestHandler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, managerID int64, notes string) (*domain.PointRequest, error)) {
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
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	pr, err := fn(r.Context(), id, user.ID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pointRequestPayload(pr))
}

func pointRequestListPayload(items []domain.PointRequest) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, pointRequestPayload(&items[i]))
	}
	return out
}

func pointRequestPayload(pr *domain.PointRequest) map[string]any {
	payload := map[string]any{
		"id":               pr.ID,
		"request_code":     pr.RequestCode,
		"staff_id":         pr.StaffID,
		"points_requested": pr.PointsRequested,
		"date_completed":   pr.DateCompleted.Format(dateLayout),
		"reason":           pr.Reason,
		"reason_details":   pr.ReasonDetails,
		"proof_ref":        pr.ProofRef,
		"status":           string(pr.Status),
		"created_at":       pr.CreatedAt.Format(time.RFC3339),
	}
	if pr.TaskTypeID != nil {
		payload["task_type_id"] = *pr.TaskTypeID
	}
	if pr.DecidedAt != nil {
		payload["decided_by"] = pr.DecidedBy
		payload["decided_at"] = pr.DecidedAt.Format(time.RFC3339)
		payload["manager_notes"] = pr.ManagerNotes
	}
	if pr.PointsAwardedAt != nil {
		payload["points_awarded"] = pr.PointsAwarded
		payload["points_awarded_at"] = pr.PointsAwardedAt.Format(time.RFC3339)
	}
	return payload
}
