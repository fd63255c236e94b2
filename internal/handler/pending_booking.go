package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/server/authctx"
	"github.com/catzoCode/catzoteam-project/internal/service"
	"github.com/go-chi/chi/v5"
)

// PendingBookingHandler covers unpaid pre-bookings and their conversion.
type PendingBookingHandler struct {
	Service service.PendingBookingService
	Expiry  service.ExpiryService
	Branch  string
}

func (h PendingBookingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/pending-bookings", h.create)
	r.Get("/pending-bookings", h.list)
	r.Get("/pending-bookings/{id}", h.get)
}

func (h PendingBookingHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/pending-bookings/{id}/confirm", h.confirm)
	r.Post("/pending-bookings/{id}/cancel", h.cancel)
	r.Post("/pending-bookings/expire-due", h.expireDue)
}

func (h PendingBookingHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		CatID          int64   `json:"cat_id"`
		ServiceTypeIDs []int64 `json:"service_type_ids"`
		ScheduledDate  string  `json:"scheduled_date"`
		ScheduledTime  string  `json:"scheduled_time"`
		Notes          string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	sched, err := time.Parse(dateLayout, req.ScheduledDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scheduled_date")
		return
	}
	branch := user.Branch
	if branch == "" {
		branch = h.Branch
	}
	b, err := h.Service.CreatePendingBooking(r.Context(), service.CreatePendingBookingInput{
		CatID:          req.CatID,
		ServiceTypeIDs: req.ServiceTypeIDs,
		ScheduledDate:  sched,
		ScheduledTime:  req.ScheduledTime,
		Notes:          req.Notes,
		Branch:         branch,
		CreatedBy:      user.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pendingPayload(b))
}

func (h PendingBookingHandler) list(w http.ResponseWriter, r *http.Request) {
	status := domain.PendingBookingStatus(r.URL.Query().Get("status"))
	items, err := h.Service.List(r.Context(), status, r.URL.Query().Get("branch"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, pendingPayload(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h PendingBookingHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	b, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pendingPayload(b))
}

func (h PendingBookingHandler) confirm(w http.ResponseWriter, r *http.Request) {
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
		PaymentProofRef string `json:"payment_proof_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	pkg, err := h.Service.Confirm(r.Context(), id, user.ID, req.PaymentProofRef)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packagePayload(pkg))
}

func (h PendingBookingHandler) cancel(w http.ResponseWriter, r *http.Request) {
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
	b, err := h.Service.Cancel(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pendingPayload(b))
}

// expireDue triggers the sweep on demand, alongside the background timer.
func (h PendingBookingHandler) expireDue(w http.ResponseWriter, r *http.Request) {
	count, err := h.Expiry.RunSweep(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"expired": count})
}

func pendingPayload(b *domain.PendingBooking) map[string]any {
	payload := map[string]any{
		"id":               b.ID,
		"booking_code":     b.BookingCode,
		"customer_id":      b.CustomerID,
		"cat_id":           b.CatID,
		"service_type_ids": b.ServiceTypeIDs,
		"total_points":     b.TotalPoints,
		"scheduled_date":   b.ScheduledDate.Format(dateLayout),
		"scheduled_time":   b.ScheduledTime,
		"status":           string(b.Status),
		"branch":           b.Branch,
		"created_by":       b.CreatedBy,
		"created_at":       b.CreatedAt.Format(time.RFC3339),
	}
	if b.ConfirmedAt != nil {
		payload["confirmed_at"] = b.ConfirmedAt.Format(time.RFC3339)
		payload["confirmed_by"] = b.ConfirmedBy
	}
	if b.ExpiredAt != nil {
		payload["expired_at"] = b.ExpiredAt.Format(time.RFC3339)
	}
	if b.ConvertedTo != nil {
		payload["converted_to"] = *b.ConvertedTo
	}
	return payload
}
