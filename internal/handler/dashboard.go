package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/go-chi/chi/v5"
)

// DashboardHandler serves the manager's branch-day summary and the audit trail.
type DashboardHandler struct {
	Repo     repository.DashboardRepository
	Activity repository.ActivityLogRepository
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.summary)
	r.Get("/dashboard/activity", h.activity)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	day, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	at := time.Now()
	if day != nil {
		at = *day
	}
	s, err := h.Repo.DaySummary(r.Context(), at, r.URL.Query().Get("branch"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":                s.Date.Format(dateLayout),
		"branch":              s.Branch,
		"packages_by_type":    s.PackagesByType,
		"arrivals_pending":    s.ArrivalsPending,
		"unpaid_pre_bookings": s.UnpaidPreBookings,
		"tasks_open":          s.TasksOpen,
		"tasks_completed":     s.TasksCompleted,
		"team_points":         s.TeamPoints,
	})
}

func (h DashboardHandler) activity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.Activity.ListRecent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, l := range items {
		out = append(out, map[string]any{
			"id":        l.ID,
			"actor_id":  l.ActorID,
			"action":    l.Action,
			"entity":    l.Entity,
			"entity_id": l.EntityID,
			"detail":    l.Detail,
			"logged_at": l.LoggedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
