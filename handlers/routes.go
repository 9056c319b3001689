package handlers

import (
	"net/http"

	"jury-dashboard/config"
	"jury-dashboard/middleware"
	"jury-dashboard/panel"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Deps struct {
	Config   config.Config
	Log      *zap.Logger
	Admins   AdminStore
	Sessions sessions.Store
	Stats    panel.StatsSource
}

// NewRouter wires every dashboard route and wraps the result in CORS.
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	jwtSecret := []byte(d.Config.AdminJWTSecret)

	r := mux.NewRouter()
	r.Use(middleware.Logger(log))

	r.HandleFunc("/healthz", Healthz).Methods("GET")
	r.Handle("/", http.RedirectHandler("/admin/projects", http.StatusFound)).Methods("GET")

	admin := r.PathPrefix("/admin").Subrouter()

	// Public admin routes
	admin.HandleFunc("/login", AdminLoginPage(parsePage("login.html"), log)).Methods("GET")
	admin.HandleFunc("/login", AdminLogin(d.Admins, d.Sessions, jwtSecret, log)).Methods("POST")

	// Protected admin routes
	adminProtected := admin.PathPrefix("/").Subrouter()
	adminProtected.Use(middleware.AdminAuth(d.Sessions, jwtSecret))

	adminProtected.HandleFunc("/projects", ProjectsPage(parsePage("projects.html"), log)).Methods("GET")

	mounts := middleware.NewRateLimiter(d.Config.MountRatePerSecond, d.Config.MountBurst)
	upgrader := newUpgrader(d.Config.CORSAllowedOrigins)
	adminProtected.Handle("/ws/project-stats",
		mounts.Limit(ProjectStatsSocket(d.Stats, upgrader, log))).Methods("GET")

	adminAPI := adminProtected.PathPrefix("/api").Subrouter()
	adminAPI.Handle("/project-stats", mounts.Limit(ProjectStatsAPI(d.Stats, log))).Methods("GET")
	adminAPI.HandleFunc("/logout", AdminLogout(d.Sessions)).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   d.Config.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}
