package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"jury-dashboard/middleware"
	"jury-dashboard/models"
	"jury-dashboard/panel"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteWait = 10 * time.Second

// forwardCookies returns the viewer's credentials for the jury backend.
// The dashboard's own session cookie stays here.
func forwardCookies(r *http.Request) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range r.Cookies() {
		if c.Name == middleware.AdminSessionName {
			continue
		}
		out = append(out, c)
	}
	return out
}

func initialView() models.PanelView {
	return models.PanelView{
		Status:  models.PanelLoading,
		Widgets: panel.Widgets(models.ZeroProjectStats()),
	}
}

// ProjectsPage renders the panel's first frame. The page script then opens
// the websocket that mounts the panel.
func ProjectsPage(tmpl *template.Template, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, _ := middleware.AdminFromContext(r.Context())
		data := models.ProjectsPageData{
			Title:  "Projects - Jury Admin",
			Active: "projects",
			Admin:  admin,
			Panel:  initialView(),
		}
		if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
			log.Error("render projects page", zap.Error(err))
		}
	}
}

// ProjectStatsAPI mounts a panel for the duration of the request and
// returns its settled view.
func ProjectStatsAPI(source panel.StatsSource, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := panel.New(source, log)
		if err := p.Mount(r.Context(), forwardCookies(r)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer p.Unmount()

		if err := p.Wait(r.Context()); err != nil && r.Context().Err() != nil {
			return
		}

		view := p.View()
		status := http.StatusOK
		if view.Status == models.PanelFailed {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, view)
	}
}

func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed[origin] {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}

// writeFrame sends one panel view with a write deadline.
func writeFrame(conn *websocket.Conn, v models.PanelView) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// ProjectStatsSocket is the live panel: the connection is the mount. The
// initial zero frame is sent right away, the settled frame once the fetch
// completes, and closing the connection unmounts the panel.
func ProjectStatsSocket(source panel.StatsSource, upgrader *websocket.Upgrader, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookies := forwardCookies(r)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		p := panel.New(source, log)
		send := func(v models.PanelView) error {
			return writeFrame(conn, v)
		}

		if err := send(p.View()); err != nil {
			return
		}
		if err := p.Mount(ctx, cookies); err != nil {
			return
		}
		defer p.Unmount()

		select {
		case <-p.Done():
			if err := send(p.View()); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
		<-ctx.Done()
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
