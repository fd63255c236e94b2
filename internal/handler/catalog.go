package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves the orderable service catalog.
type CatalogHandler struct {
	Repo repository.CatalogRepository
}

func (h CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog/groups", h.listGroups)
	r.Get("/catalog/types", h.listTypes)
}

// RegisterAdminRoutes mounts catalog management for managers.
func (h CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/catalog/types", h.upsertType)
	r.Delete("/catalog/types/{id}", h.deactivateType)
}

func (h CatalogHandler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Repo.ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, map[string]any{
			"id":         g.ID,
			"group_code": g.GroupCode,
			"name":       g.Name,
			"sort_order": g.SortOrder,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h CatalogHandler) listTypes(w http.ResponseWriter, r *http.Request) {
	groupID, _ := strconv.ParseInt(r.URL.Query().Get("group_id"), 10, 64)
	types, err := h.Repo.ListTypes(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(types))
	for i := range types {
		out = append(out, taskTypePayload(&types[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h CatalogHandler) upsertType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TypeCode      string `json:"type_code"`
		GroupID       int64  `json:"group_id"`
		Name          string `json:"name"`
		Points        int    `json:"points"`
		Price         *int64 `json:"price"`
		ComboSessions int    `json:"combo_sessions"`
		SortOrder     int    `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.TypeCode == "" || req.Name == "" || req.GroupID == 0 {
		writeError(w, http.StatusBadRequest, "type_code, name and group_id are required")
		return
	}
	if req.Points < 0 || req.ComboSessions < 0 {
		writeError(w, http.StatusBadRequest, "points and combo_sessions cannot be negative")
		return
	}
	t, err := h.Repo.UpsertType(r.Context(), repository.UpsertTypeInput{
		TypeCode:      req.TypeCode,
		GroupID:       req.GroupID,
		Name:          req.Name,
		Points:        req.Points,
		Price:         req.Price,
		ComboSessions: req.ComboSessions,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskTypePayload(t))
}

func (h CatalogHandler) deactivateType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.DeactivateType(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "type deactivated"})
}

func taskTypePayload(t *domain.TaskType) map[string]any {
	return map[string]any{
		"id":             t.ID,
		"type_code":      t.TypeCode,
		"group_id":       t.GroupID,
		"name":           t.Name,
		"points":         t.Points,
		"price":          t.Price,
		"combo_sessions": t.ComboSessions,
		"sort_order":     t.SortOrder,
	}
}
