package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/service"
)

type AuthHandler struct {
	Service *service.AuthService
	Users   repository.UserRepository
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/google", h.loginGoogle)
	r.Post("/auth/refresh", h.refresh)
}

// RegisterStaffRoutes mounts staff management; callers gate it to managers.
func (h AuthHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/staff", h.listStaff)
	r.Post("/staff", h.createStaff)
}

func (h AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required,max=200"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Service.Register(r.Context(), service.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
	})
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeAuthResponse(w, http.StatusCreated, res)
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Service.Login(r.Context(), service.LoginInput{
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
	})
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeAuthResponse(w, http.StatusOK, res)
}

func (h AuthHandler) loginGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken" validate:"required"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Service.LoginWithGoogle(r.Context(), service.GoogleLoginInput{
		IDToken: req.IDToken,
		Email:   strings.ToLower(req.Email),
		Name:    req.Name,
	})
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeAuthResponse(w, http.StatusOK, res)
}

func (h AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Service.Refresh(r.Context(), service.RefreshInput{RefreshToken: req.RefreshToken})
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeAuthResponse(w, http.StatusOK, res)
}

func (h AuthHandler) listStaff(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.Users.ListStaff(r.Context(), user.OwnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, u := range items {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h AuthHandler) createStaff(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name     string `json:"name" validate:"required,max=200"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"omitempty,oneof=staff manager"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.Service.CreateStaff(r.Context(), user.OwnerID, service.StaffInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(req.Email),
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(*created))
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeServiceError(w, err)
	}
}

func toUserResponse(u domain.User) map[string]any {
	return map[string]any{
		"id":       strconv.FormatInt(u.ID, 10),
		"name":     u.Name,
		"email":    u.Email,
		"role":     string(u.Role),
		"isGoogle": u.IsGoogle,
	}
}

func writeAuthResponse(w http.ResponseWriter, status int, res *service.AuthResult) {
	writeJSON(w, status, map[string]any{
		"token":        res.AccessToken,
		"refreshToken": res.RefreshToken,
		"expiresAt":    res.ExpiresAt.UTC().Format(time.RFC3339),
		"user":         toUserResponse(res.User),
	})
}
