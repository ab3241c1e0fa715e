package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailorbooks-backend/internal/config"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/server/authctx"
	"tailorbooks-backend/internal/service"
)

var testCfg = config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour, RefreshTokenTTL: 24 * time.Hour}

func protected(roles ...domain.UserRole) http.Handler {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(testCfg.JWTSecret))
	r.Use(RequireRole(roles...))
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		u := authctx.FromContext(r.Context())
		w.Header().Set("X-Owner", strconv.FormatInt(u.OwnerID, 10))
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func tokensFor(t *testing.T, u *domain.User) *service.AuthResult {
	t.Helper()
	res, err := service.IssueTokens(testCfg, u, time.Now())
	require.NoError(t, err)
	return res
}

func call(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	owner := int64(3)
	staff := tokensFor(t, &domain.User{ID: 9, OwnerID: &owner, Name: "Kemi", Role: domain.RoleStaff})
	manager := tokensFor(t, &domain.User{ID: 3, Name: "Amaka", Role: domain.RoleManager})

	rec := call(protected(domain.RoleStaff, domain.RoleManager), staff.AccessToken)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-Owner"), "staff act on their owner's books")

	rec = call(protected(domain.RoleManager), manager.AccessToken)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-Owner"))

	assert.Equal(t, http.StatusUnauthorized, call(protected(), "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(protected(), "not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, call(protected(), staff.RefreshToken).Code, "refresh tokens cannot call the api")
	assert.Equal(t, http.StatusForbidden, call(protected(domain.RoleManager, domain.RoleAdmin), staff.AccessToken).Code)
}

func TestRequireRoleWithoutUser(t *testing.T) {
	h := RequireRole(domain.RoleStaff)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
