package product

import (
	"encoding/json"
	"net/http"
	"strconv"

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
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.productID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid product id")
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

// List serves the public catalog. Deleted rows never appear here.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())
	q.IncludeDeleted = false

	result, err := h.Service.List(q)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// ListDeleted serves the recycle bin, gated on view_deleted_products.
func (h *Handler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())
	q.IncludeDeleted = true

	result, err := h.Service.List(q)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := h.productID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(user.ID, user.Role, id, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    updated,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := h.productID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.Service.Delete(user.ID, user.Role, id); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Product deleted",
	})
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := h.productID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	restored, err := h.Service.Restore(user.ID, user.Role, id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    restored,
	})
}

func (h *Handler) productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
