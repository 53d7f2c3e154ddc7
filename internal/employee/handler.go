package employee

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/mystore/product-catalog/internal/auth"
	"github.com/mystore/product-catalog/internal/transport"
	"github.com/mystore/product-catalog/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var dto CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(user.ID, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    created,
		"message": "Employee created. Credentials have been emailed.",
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Role:   strings.TrimSpace(r.URL.Query().Get("role")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if raw := r.URL.Query().Get("isActive"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			q.IsActive = &v
		}
	}

	employees, err := h.Service.List(q)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    employees,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.employeeID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	found, err := h.Service.Get(id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    found,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.employeeID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(id, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    updated,
	})
}

func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.employeeID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	updated, err := h.Service.ToggleStatus(id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    updated,
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := h.employeeID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	if err := h.Service.ResetPassword(id); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "A new password has been emailed to the employee.",
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.employeeID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Employee deactivated",
	})
}

func (h *Handler) employeeID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
