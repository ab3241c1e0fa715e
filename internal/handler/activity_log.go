package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
)

type ActivityLogHandler struct {
	Repo repository.ActivityLogRepository
}

func (h ActivityLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/activity", h.list)
	r.Post("/activity", h.create)
}

// create records a manual note in the audit trail.
func (h ActivityLogHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Title   string `json:"title" validate:"required,max=200"`
		Message string `json:"message" validate:"required"`
		Type    string `json:"type" validate:"omitempty,oneof=info warning error"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	typ := domain.LogInfo
	if req.Type != "" {
		typ = domain.ActivityLogType(req.Type)
	}
	id, err := h.Repo.Create(r.Context(), user.OwnerID, repository.CreateActivityLogInput{
		Title:     req.Title,
		Message:   req.Message,
		Actor:     actorOf(user).Name,
		Type:      typ,
		Timestamp: time.Now(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id})
}

func (h ActivityLogHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.Repo.List(r.Context(), user.OwnerID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, l := range items {
		resp = append(resp, map[string]any{
			"id":        l.ID,
			"title":     l.Title,
			"message":   l.Message,
			"actor":     l.Actor,
			"type":      string(l.Type),
			"timestamp": l.LoggedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
