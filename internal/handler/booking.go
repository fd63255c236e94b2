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

// BookingHandler covers package intake and the Type C arrival queue.
type BookingHandler struct {
	Service service.BookingService
	Tasks   service.TaskService
	Branch  string
}

func (h BookingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/bookings", h.create)
	r.Get("/bookings", h.list)
	r.Get("/bookings/{id}", h.get)
	r.Get("/bookings/{id}/tasks", h.listTasks)
}

// RegisterManagerRoutes mounts the arrival decisions.
func (h BookingHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/bookings/arrival-queue", h.arrivalQueue)
	r.Post("/bookings/{id}/confirm-arrival", h.confirmArrival)
	r.Post("/bookings/{id}/no-show", h.markNoShow)
}

func (h BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		CatID            int64   `json:"cat_id"`
		BookingType      string  `json:"booking_type"`
		ServiceTypeIDs   []int64 `json:"service_type_ids"`
		ScheduledDate    string  `json:"scheduled_date"`
		ScheduledTime    string  `json:"scheduled_time"`
		Notes            string  `json:"notes"`
		PaymentProofRef  string  `json:"payment_proof_ref"`
		ComboOwnershipID *int64  `json:"combo_ownership_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var sched *time.Time
	if req.ScheduledDate != "" {
		parsed, err := time.Parse(dateLayout, req.ScheduledDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid scheduled_date")
			return
		}
		sched = &parsed
	}
	branch := user.Branch
	if branch == "" {
		branch = h.Branch
	}
	pkg, err := h.Service.CreateBooking(r.Context(), service.CreateBookingInput{
		CatID:            req.CatID,
		CreatedBy:        user.ID,
		Branch:           branch,
		BookingType:      domain.BookingType(req.BookingType),
		ServiceTypeIDs:   req.ServiceTypeIDs,
		ScheduledDate:    sched,
		ScheduledTime:    req.ScheduledTime,
		Notes:            req.Notes,
		PaymentProofRef:  req.PaymentProofRef,
		ComboOwnershipID: req.ComboOwnershipID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, packagePayload(pkg))
}

func (h BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	pkgs, err := h.Service.ListPackages(r.Context(), repository.PackageFilter{
		Branch:        r.URL.Query().Get("branch"),
		Status:        domain.PackageStatus(r.URL.Query().Get("status")),
		BookingType:   domain.BookingType(r.URL.Query().Get("booking_type")),
		ArrivalStatus: domain.ArrivalStatus(r.URL.Query().Get("arrival_status")),
		Date:          date,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packageListPayload(pkgs))
}

func (h BookingHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	pkg, err := h.Service.GetPackage(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packagePayload(pkg))
}

func (h BookingHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	tasks, err := h.Tasks.List(r.Context(), repository.TaskFilter{PackageID: id})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskListPayload(tasks))
}

func (h BookingHandler) arrivalQueue(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.Service.ArrivalQueue(r.Context(), r.URL.Query().Get("branch"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packageListPayload(pkgs))
}

func (h BookingHandler) confirmArrival(w http.ResponseWriter, r *http.Request) {
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
	pkg, err := h.Service.ConfirmArrival(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packagePayload(pkg))
}

func (h BookingHandler) markNoShow(w http.ResponseWriter, r *http.Request) {
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
	pkg, err := h.Service.MarkNoShow(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packagePayload(pkg))
}

func packageListPayload(pkgs []domain.TaskPackage) []map[string]any {
	out := make([]map[string]any, 0, len(pkgs))
	for i := range pkgs {
		out = append(out, packagePayload(&pkgs[i]))
	}
	return out
}

func packagePayload(p *domain.TaskPackage) map[string]any {
	payload := map[string]any{
		"id":             p.ID,
		"package_code":   p.PackageCode,
		"cat_id":         p.CatID,
		"created_by":     p.CreatedBy,
		"branch":         p.Branch,
		"status":         string(p.Status),
		"booking_type":   string(p.BookingType),
		"total_points":   p.TotalPoints,
		"notes":          p.Notes,
		"arrival_status": string(p.ArrivalStatus),
		"points_awarded": p.PointsAwarded,
		"created_at":     p.CreatedAt.Format(time.RFC3339),
	}
	if p.ScheduledDate != nil {
		payload["scheduled_date"] = p.ScheduledDate.Format(dateLayout)
	}
	if p.PaymentProofRef != "" {
		payload["payment_proof_ref"] = p.PaymentProofRef
	}
	if p.ComboOwnershipID != nil {
		payload["combo_ownership_id"] = *p.ComboOwnershipID
		payload["combo_session_number"] = p.ComboSessionNumber
	}
	if p.ArrivalConfirmedAt != nil {
		payload["arrival_confirmed_at"] = p.ArrivalConfirmedAt.Format(time.RFC3339)
		payload["confirmed_by"] = p.ConfirmedBy
	}
	if p.PointsAwardedAt != nil {
		payload["points_awarded_at"] = p.PointsAwardedAt.Format(time.RFC3339)
	}
	return payload
}
