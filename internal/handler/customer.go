package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/catzoCode/catzoteam-project/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

// CustomerHandler covers the customer and cat registry used at intake.
type CustomerHandler struct {
	Repo repository.CustomerRepository
}

func (h CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/customers", h.search)
	r.Post("/customers", h.create)
	r.Get("/customers/{id}", h.get)
	r.Get("/customers/{id}/cats", h.listCats)
	r.Post("/cats", h.createCat)
	r.Get("/cats/{id}", h.getCat)
}

func (h CustomerHandler) search(w http.ResponseWriter, r *http.Request) {
	// A phone query hits the unique index directly for the intake flow.
	if phone := r.URL.Query().Get("phone"); phone != "" {
		c, err := h.Repo.GetByPhone(r.Context(), phone)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{customerPayload(c)})
		return
	}
	customers, err := h.Repo.Search(r.Context(), r.URL.Query().Get("q"), 50)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(customers))
	for i := range customers {
		out = append(out, customerPayload(&customers[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h CustomerHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}
	c, err := h.Repo.Create(r.Context(), repository.CreateCustomerInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		RegisteredBy: user.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerPayload(c))
}

func (h CustomerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	c, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerPayload(c))
}

func (h CustomerHandler) listCats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	cats, err := h.Repo.ListCats(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(cats))
	for i := range cats {
		out = append(out, catPayload(&cats[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h CustomerHandler) createCat(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name         string `json:"name"`
		OwnerID      int64  `json:"owner_id"`
		Breed        string `json:"breed"`
		Gender       string `json:"gender"`
		Age          int    `json:"age"`
		MedicalNotes string `json:"medical_notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.OwnerID == 0 {
		writeError(w, http.StatusBadRequest, "name and owner_id are required")
		return
	}
	cat, err := h.Repo.CreateCat(r.Context(), repository.CreateCatInput{
		Name:         req.Name,
		OwnerID:      req.OwnerID,
		Breed:        req.Breed,
		Gender:       req.Gender,
		Age:          req.Age,
		MedicalNotes: req.MedicalNotes,
		RegisteredBy: user.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, catPayload(cat))
}

func (h CustomerHandler) getCat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	cat, err := h.Repo.GetCat(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catPayload(cat))
}

func customerPayload(c *domain.Customer) map[string]any {
	return map[string]any{
		"id":            c.ID,
		"customer_code": c.CustomerCode,
		"name":          c.Name,
		"phone":         c.Phone,
		"email":         c.Email,
		"address":       c.Address,
		"created_at":    c.CreatedAt.Format(time.RFC3339),
	}
}

func catPayload(c *domain.Cat) map[string]any {
	return map[string]any{
		"id":            c.ID,
		"cat_code":      c.CatCode,
		"name":          c.Name,
		"owner_id":      c.OwnerID,
		"breed":         c.Breed,
		"gender":        c.Gender,
		"age":           c.Age,
		"medical_notes": c.MedicalNotes,
		"active":        c.Active,
	}
}
