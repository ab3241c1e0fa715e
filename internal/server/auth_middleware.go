package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/server/authctx"
	"tailorbooks-backend/internal/service"
)

// AuthMiddleware validates the bearer access token and sets the current user in context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := service.ParseToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil || claims["token_type"] != "access" {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			sub, _ := claims["sub"].(string)
			id, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid subject")
				return
			}
			owner := id
			if raw, ok := claims["owner"].(string); ok && raw != "" {
				owner, err = strconv.ParseInt(raw, 10, 64)
				if err != nil {
					writeAuthError(w, http.StatusUnauthorized, "invalid owner")
					return
				}
			}
			name, _ := claims["name"].(string)
			email, _ := claims["email"].(string)
			roleStr, _ := claims["role"].(string)
			ctx := authctx.WithCurrentUser(r.Context(), authctx.CurrentUser{
				ID:      id,
				OwnerID: owner,
				Name:    name,
				Email:   email,
				Role:    domain.UserRole(roleStr),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole ensures the user has one of the allowed roles.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := authctx.FromContext(r.Context())
			if u == nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[u.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": message,
		"data":    nil,
		"error":   map[string]any{"code": status, "status": http.StatusText(status)},
	})
}
