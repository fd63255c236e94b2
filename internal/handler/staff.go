package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/catzoCode/catzoteam-project/internal/service"
	"github.com/go-chi/chi/v5"
)

// StaffHandler covers admin-side account management.
type StaffHandler struct {
	Repo repository.StaffRepository
	Auth *service.AuthService
}

func (h StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/staff", h.list)
	r.Post("/staff", h.create)
	r.Get("/staff/{id}", h.get)
	r.Put("/staff/{id}", h.update)
	r.Delete("/staff/{id}", h.deactivate)
}

func (h StaffHandler) list(w http.ResponseWriter, r *http.Request) {
	branch := r.URL.Query().Get("branch")
	role := domain.UserRole(r.URL.Query().Get("role"))
	staff, err := h.Repo.List(r.Context(), branch, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(staff))
	for i := range staff {
		out = append(out, staffPayload(&staff[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h StaffHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Branch   string `json:"branch"`
		Role     string `json:"role"`
		Password string `json:"password"`
		JoinDate string `json:"join_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "name, email and a password of 8+ characters are required")
		return
	}
	var joined time.Time
	if req.JoinDate != "" {
		var err error
		joined, err = time.Parse(dateLayout, req.JoinDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid join_date")
			return
		}
	}
	staff, err := h.Auth.RegisterStaff(r.Context(), service.RegisterStaffInput{
		Name:     req.Name,
		Email:    strings.ToLower(req.Email),
		Phone:    req.Phone,
		Branch:   req.Branch,
		Role:     domain.UserRole(req.Role),
		Password: req.Password,
		JoinDate: joined,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, staffPayload(staff))
}

func (h StaffHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	staff, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staffPayload(staff))
}

func (h StaffHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Name   string `json:"name"`
		Phone  string `json:"phone"`
		Branch string `json:"branch"`
		Role   string `json:"role"`
		Active *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	staff, err := h.Repo.Update(r.Context(), repository.UpdateStaffInput{
		ID:     id,
		Name:   req.Name,
		Phone:  req.Phone,
		Branch: req.Branch,
		Role:   domain.UserRole(req.Role),
		Active: active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staffPayload(staff))
}

func (h StaffHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Deactivate(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "staff deactivated"})
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
