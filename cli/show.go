package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"jury-dashboard/models"
	"jury-dashboard/panel"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	showCookies []string
	showJSON    bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Mount the project statistics panel once and print it",
	Long: `Fetch /project/stats from the jury backend and print the three stats.

Backend credentials are passed as cookies.

Example:
  jury-dashboard show --cookie jury_admin=abc123`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringArrayVar(&showCookies, "cookie", nil, "cookie to send to the backend, as name=value (repeatable)")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the settled view as JSON")
}

func parseCookies(raw []string) ([]*http.Cookie, error) {
	var out []*http.Cookie
	for _, r := range raw {
		cs, err := http.ParseCookie(r)
		if err != nil {
			return nil, fmt.Errorf("invalid --cookie %q: %w", r, err)
		}
		out = append(out, cs...)
	}
	return out, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	defer log.Sync()

	cookies, err := parseCookies(showCookies)
	if err != nil {
		return err
	}

	p := panel.New(panel.NewFetcher(cfg.JuryURL, cfg.StatsFetchTimeout, cfg.StatsStrict), log)
	interactive := !showJSON && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		if err := panel.RenderText(os.Stdout, p.View()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.StatsFetchTimeout)
	defer cancel()
	if err := p.Mount(ctx, cookies); err != nil {
		return err
	}
	defer p.Unmount()
	fetchErr := p.Wait(ctx)

	view := p.View()
	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return err
		}
	} else if err := panel.RenderText(os.Stdout, view); err != nil {
		return err
	}

	if view.Status != models.PanelReady {
		return fetchErr
	}
	return nil
}
