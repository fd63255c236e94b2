package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/go-chi/chi/v5"
)

// ComboHandler exposes purchased session packages.
type ComboHandler struct {
	Repo repository.ComboRepository
}

func (h ComboHandler) RegisterRoutes(r chi.Router) {
	r.Get("/combos", h.list)
	r.Get("/combos/{id}", h.get)
	r.Get("/combos/{id}/history", h.history)
}

func (h ComboHandler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") != "false"

	if code := r.URL.Query().Get("code"); code != "" {
		c, err := h.Repo.GetByCode(r.Context(), code)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{comboPayload(c)})
		return
	}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		combos, err := h.Repo.ListForCustomer(r.Context(), id, activeOnly)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, comboListPayload(combos))
		return
	}
	if v := r.URL.Query().Get("cat_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cat_id")
			return
		}
		combos, err := h.Repo.ListForCat(r.Context(), id, activeOnly)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, comboListPayload(combos))
		return
	}
	writeError(w, http.StatusBadRequest, "customer_id, cat_id or code is required")
}

func (h ComboHandler) get(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, comboPayload(c))
}

func (h ComboHandler) history(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	pkgs, err := h.Repo.RedemptionHistory(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packageListPayload(pkgs))
}

func comboListPayload(combos []domain.ComboPackageOwnership) []map[string]any {
	out := make([]map[string]any, 0, len(combos))
	for i := range combos {
		out = append(out, comboPayload(&combos[i]))
	}
	return out
}

func comboPayload(c *domain.ComboPackageOwnership) map[string]any {
	payload := map[string]any{
		"id":                 c.ID,
		"ownership_code":     c.OwnershipCode,
		"customer_id":        c.CustomerID,
		"cat_id":             c.CatID,
		"combo_task_type_id": c.ComboTaskTypeID,
		"total_sessions":     c.TotalSessions,
		"sessions_used":      c.SessionsUsed,
		"sessions_remaining": c.SessionsRemaining,
		"active":             c.Active,
		"fully_used":         c.FullyUsed,
		"purchased_at":       c.PurchasedAt.Format(time.RFC3339),
	}
	if c.ExpiresAt != nil {
		payload["expires_at"] = c.ExpiresAt.Format(dateLayout)
	}
	return payload
}
