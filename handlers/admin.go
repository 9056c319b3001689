// handlers/admin.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"jury-dashboard/database"
	"jury-dashboard/middleware"
	"jury-dashboard/models"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminSessionTTL = time.Hour

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminStore is the part of the admin repository the login flow needs.
type AdminStore interface {
	FindActive(ctx context.Context, login string) (models.AdminAccount, error)
	TouchLastLogin(ctx context.Context, id int) error
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// AdminLoginPage renders the login form.
func AdminLoginPage(tmpl *template.Template, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := models.ProjectsPageData{Title: "Admin Login - Jury"}
		if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
			log.Error("render login page", zap.Error(err))
		}
	}
}

func AdminLogin(admins AdminStore, store sessions.Store, jwtSecret []byte, log *zap.Logger) http.HandlerFunc {
	invalid := map[string]interface{}{
		"success": false,
		"message": "Invalid username or password",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		admin, err := admins.FindActive(r.Context(), req.Username)
		if errors.Is(err, database.ErrAdminNotFound) {
			writeJSON(w, http.StatusUnauthorized, invalid)
			return
		}
		if err != nil {
			log.Error("admin lookup failed", zap.Error(err))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
			writeJSON(w, http.StatusUnauthorized, invalid)
			return
		}

		session, _ := store.Get(r, middleware.AdminSessionName)
		session.Values["authenticated"] = true
		session.Values["admin_id"] = admin.ID
		session.Values["username"] = admin.Username
		session.Values["role"] = admin.Role
		session.Options.MaxAge = int(adminSessionTTL.Seconds())
		session.Options.HttpOnly = true
		session.Options.SameSite = http.SameSiteLaxMode
		if err := session.Save(r, w); err != nil {
			log.Error("save admin session", zap.Error(err))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		token, err := middleware.IssueAdminToken(admin, jwtSecret, adminSessionTTL)
		if err != nil {
			log.Error("sign admin token", zap.Error(err))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		if err := admins.TouchLastLogin(r.Context(), admin.ID); err != nil {
			log.Warn("update last login", zap.Int("admin_id", admin.ID), zap.Error(err))
		}
		log.Info("admin logged in", zap.String("username", admin.Username))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"access_token": token,
			"user": map[string]interface{}{
				"id":       admin.ID,
				"username": admin.Username,
				"role":     admin.Role,
			},
		})
	}
}

func AdminLogout(store sessions.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := store.Get(r, middleware.AdminSessionName)
		session.Values["authenticated"] = false
		session.Options.MaxAge = -1
		session.Save(r, w)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Logged out",
		})
	}
}
