package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/handler"
)

func TestRouterGatesByRole(t *testing.T) {
	cfg := testCfg
	cfg.RateLimitPerMin = 1000
	router := NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), Handlers{Home: handler.HomeHandler{Env: "test"}})

	get := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("/", ""))
	assert.Equal(t, http.StatusOK, get("/openapi.yaml", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/settings", ""))

	owner := int64(3)
	staff := tokensFor(t, &domain.User{ID: 9, OwnerID: &owner, Role: domain.RoleStaff})
	require.NotEmpty(t, staff.AccessToken)
	assert.Equal(t, http.StatusForbidden, get("/settings", staff.AccessToken))
	assert.Equal(t, http.StatusForbidden, get("/reports/monthly", staff.AccessToken))
}
