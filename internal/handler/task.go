package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/catzoCode/catzoteam-project/internal/server/authctx"
	"github.com/catzoCode/catzoteam-project/internal/service"
	"github.com/go-chi/chi/v5"
)

// TaskHandler covers the working side of packages: the bench queue, the
// lifecycle moves and manager review.
type TaskHandler struct {
	Service service.TaskService
}

func (h TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tasks", h.list)
	r.Get("/tasks/mine", h.mine)
	r.Get("/tasks/{id}", h.get)
	r.Post("/tasks/{id}/start", h.start)
	r.Post("/tasks/{id}/submit", h.submit)
}

func (h TaskHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/tasks/{id}/assign", h.assign)
	r.Post("/tasks/{id}/approve", h.approve)
	r.Post("/tasks/{id}/reject", h.reject)
	r.Post("/tasks/{id}/cancel", h.cancel)
}

func (h TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	staffID, _ := strconv.ParseInt(r.URL.Query().Get("staff_id"), 10, 64)
	tasks, err := h.Service.List(r.Context(), repository.TaskFilter{
		AssignedStaff: staffID,
		Status:        domain.TaskStatus(r.URL.Query().Get("status")),
		Date:          date,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskListPayload(tasks))
}

func (h TaskHandler) mine(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	tasks, err := h.Service.List(r.Context(), repository.TaskFilter{
		AssignedStaff: user.ID,
		Status:        domain.TaskStatus(r.URL.Query().Get("status")),
		Date:          date,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskListPayload(tasks))
}

func (h TaskHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	task, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskPayload(task))
}

func (h TaskHandler) assign(w http.ResponseWriter, r *http.Request) {
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
		StaffID int64 `json:"staff_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StaffID == 0 {
		writeError(w, http.StatusBadRequest, "staff_id is required")
		return
	}
	task, err := h.Service.Assign(r.Context(), id, req.StaffID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskPayload(task))
}

func (h TaskHandler) start(w http.ResponseWriter, r *http.Request) {
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
	task, err := h.Service.Start(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskPayload(task))
}

func (h TaskHandler) submit(w http.ResponseWriter, r *http.Request) {
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
		Notes     string `json:"notes"`
		ProofRefs string `json:"proof_refs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	task, err := h.Service.Submit(r.Context(), id, user.ID, req.Notes, req.ProofRefs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskPayload(task))
}

func (h TaskHandler) approve(w http.ResponseWriter, r *http.Request) {
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
	task, err := h.Service.Approve(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskPayload(task))
}

func (h TaskHandler) reject(w http.ResponseWriter, r *http.Request) {
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
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	task, err := h.Service.Reject(r.Context(), id, user.ID, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskPayload(task))
}

func (h TaskHandler) cancel(w http.ResponseWriter, r *http.Request) {
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
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	task, err := h.Service.Cancel(r.Context(), id, user.ID, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskPayload(task))
}

func taskListPayload(tasks []domain.Task) []map[string]any {
	out := make([]map[string]any, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskPayload(&tasks[i]))
	}
	return out
}

func taskPayload(t *domain.Task) map[string]any {
	payload := map[string]any{
		"id":             t.ID,
		"task_code":      t.TaskCode,
		"package_id":     t.PackageID,
		"task_type_id":   t.TaskTypeID,
		"task_type_name": t.TaskTypeName,
		"points":         t.Points,
		"scheduled_date": t.ScheduledDate.Format(dateLayout),
		"scheduled_time": t.ScheduledTime,
		"status":         string(t.Status),
		"notes":          t.Notes,
	}
	if t.AssignedStaff != nil {
		payload["assigned_staff"] = *t.AssignedStaff
	}
	if t.StartedAt != nil {
		payload["started_at"] = t.StartedAt.Format(time.RFC3339)
	}
	if t.CompletedAt != nil {
		payload["completed_at"] = t.CompletedAt.Format(time.RFC3339)
	}
	return payload
}
