package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/validation"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Post("/api/v1/users", h.createUser)
	router.Get("/api/v1/roles", h.listRoles)
	router.Post("/api/v1/roles", h.createRole)
	router.Get("/api/v1/permissions", h.listPermissions)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}

	respond(w, http.StatusCreated, user)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.Roles(r.Context())
	if err != nil {
		fail(w, err)
		return
	}

	respond(w, http.StatusOK, roles)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.CreateRole(r.Context(), req); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.Permissions(r.Context())
	if err != nil {
		fail(w, err)
		return
	}

	respond(w, http.StatusOK, perms)
}

func fail(w http.ResponseWriter, err error) {
	if validation.IsFieldError(err) {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	status := http.StatusBadGateway
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && !apiErr.Transport() {
		status = apiErr.Status
	}
	respond(w, status, map[string]string{"error": apiclient.Message(err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
