package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"jury-dashboard/database"
	"jury-dashboard/handlers"
	"jury-dashboard/middleware"
	"jury-dashboard/panel"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.InitDB(ctx, db); err != nil {
		return err
	}
	log.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:   cfg,
		Log:      log,
		Admins:   database.NewAdminRepository(db),
		Sessions: store,
		Stats:    panel.NewFetcher(cfg.JuryURL, cfg.StatsFetchTimeout, cfg.StatsStrict),
	})

	srv := &http.Server{
		Handler:     router,
		Addr:        cfg.ListenAddr,
		ReadTimeout: 15 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("dashboard listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("jury_url", cfg.JuryURL),
			zap.Bool("strict_stats", cfg.StatsStrict),
			zap.String("session_cookie", middleware.AdminSessionName),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
