// middleware/admin_auth.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jury-dashboard/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
)

// AdminSessionName is the cookie the dashboard keeps its own login in.
const AdminSessionName = "admin_session"

type adminKey struct{}

// AdminFromContext returns the admin attached by AdminAuth.
func AdminFromContext(ctx context.Context) (models.Admin, bool) {
	a, ok := ctx.Value(adminKey{}).(models.Admin)
	return a, ok
}

func WithAdmin(ctx context.Context, a models.Admin) context.Context {
	return context.WithValue(ctx, adminKey{}, a)
}

func isAdminRole(role string) bool {
	return role == "admin" || role == "super_admin"
}

// AdminAuth accepts either an authenticated admin session or an admin bearer
// token signed with jwtSecret.
func AdminAuth(store sessions.Store, jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := store.Get(r, AdminSessionName)

			var admin models.Admin
			if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}

				tokenParts := strings.Split(authHeader, " ")
				if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
					http.Error(w, "Invalid token format", http.StatusUnauthorized)
					return
				}

				claims, err := ValidateAdminToken(tokenParts[1], jwtSecret)
				if err != nil {
					http.Error(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				admin = models.Admin{
					ID:       fmt.Sprintf("%v", claims["admin_id"]),
					Username: fmt.Sprintf("%v", claims["username"]),
					Role:     fmt.Sprintf("%v", claims["role"]),
				}
			} else {
				role, _ := session.Values["role"].(string)
				if !isAdminRole(role) {
					http.Error(w, "Admin role required", http.StatusForbidden)
					return
				}
				username, _ := session.Values["username"].(string)
				admin = models.Admin{
					ID:       fmt.Sprintf("%v", session.Values["admin_id"]),
					Username: username,
					Role:     role,
				}
			}

			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
		})
	}
}

// IssueAdminToken signs an HS256 token for the admin, valid for ttl.
func IssueAdminToken(a models.AdminAccount, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": a.ID,
		"username": a.Username,
		"role":     a.Role,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

func ValidateAdminToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	role, _ := claims["role"].(string)
	if !isAdminRole(role) {
		return nil, errors.New("admin role required")
	}
	return claims, nil
}
