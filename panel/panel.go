// Package panel implements the project statistics panel: one instance per
// viewer, one fetch per mount, state replaced wholesale when the fetch
// settles.
package panel

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"jury-dashboard/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Panel struct {
	id     string
	source StatsSource
	log    *zap.Logger

	mu        sync.Mutex
	stats     models.ProjectStats
	status    models.PanelStatus
	err       error
	mounted   bool
	unmounted bool
	cancel    context.CancelFunc
	done      chan struct{}
	doneOnce  sync.Once
}

func New(source StatsSource, log *zap.Logger) *Panel {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Panel{
		id:     id,
		source: source,
		log:    log.With(zap.String("panel_id", id)),
		stats:  models.ZeroProjectStats(),
		status: models.PanelLoading,
		done:   make(chan struct{}),
	}
}

func (p *Panel) ID() string { return p.id }

// Mount starts the panel's single fetch. The fetch is cancelled when ctx is
// done or Unmount is called.
func (p *Panel) Mount(ctx context.Context, cookies []*http.Cookie) error {
	p.mu.Lock()
	if p.mounted || p.unmounted {
		p.mu.Unlock()
		return ErrAlreadyMounted
	}
	p.mounted = true
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	p.log.Debug("panel mounted")
	go p.load(ctx, cookies)
	return nil
}

func (p *Panel) load(ctx context.Context, cookies []*http.Cookie) {
	defer p.finish()

	stats, err := p.source.FetchStats(ctx, cookies)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unmounted {
		p.log.Debug("dropping stats that settled after unmount", zap.Error(err))
		return
	}
	if err != nil {
		p.status = models.PanelFailed
		p.err = err
		p.log.Warn("project stats unavailable", zap.Error(err))
		return
	}
	p.stats = stats
	p.status = models.PanelReady
}

func (p *Panel) finish() {
	p.doneOnce.Do(func() { close(p.done) })
}

// Unmount cancels an in-flight fetch. A result arriving afterwards is ignored.
func (p *Panel) Unmount() {
	p.mu.Lock()
	if p.unmounted {
		p.mu.Unlock()
		return
	}
	p.unmounted = true
	if p.status == models.PanelLoading {
		p.status = models.PanelUnmounted
	}
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.finish()
	p.log.Debug("panel unmounted")
}

// Done is closed once the fetch has settled or the panel is unmounted.
func (p *Panel) Done() <-chan struct{} { return p.done }

// Wait blocks until Done or ctx expires and returns the fetch error, if any.
func (p *Panel) Wait(ctx context.Context) error {
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Panel) Stats() models.ProjectStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// View renders the current state.
func (p *Panel) View() models.PanelView {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := models.PanelView{
		ID:      p.id,
		Status:  p.status,
		Widgets: Widgets(p.stats),
	}
	if p.err != nil {
		view.Error = describe(p.err)
	}
	return view
}

func describe(err error) string {
	switch {
	case errors.Is(err, ErrUnreachable):
		return "stats unavailable: backend unreachable"
	case errors.Is(err, ErrBadStatus):
		return "stats unavailable: " + err.Error()
	case errors.Is(err, ErrMalformed):
		return "stats unavailable: malformed response"
	case errors.Is(err, ErrInvalidShape):
		return "stats unavailable: unexpected response shape"
	default:
		return "stats unavailable"
	}
}
