package panel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jury-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchStats(ctx context.Context, cookies []*http.Cookie) (models.ProjectStats, error) {
	args := m.Called(ctx, cookies)
	return args.Get(0).(models.ProjectStats), args.Error(1)
}

func values(view models.PanelView) []string {
	out := make([]string, 0, len(view.Widgets))
	for _, w := range view.Widgets {
		out = append(out, w.Value)
	}
	return out
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestPanelInitialRender(t *testing.T) {
	p := New(new(mockSource), nil)

	view := p.View()
	assert.Equal(t, models.PanelLoading, view.Status)
	assert.Equal(t, []string{"0", "0", "0"}, values(view))
	assert.Equal(t, LabelActiveProjects, view.Widgets[0].Name)
	assert.Equal(t, LabelAverageVotes, view.Widgets[1].Name)
	assert.Equal(t, LabelAverageSeen, view.Widgets[2].Name)
}

func TestPanelRendersFetchedStats(t *testing.T) {
	src := new(mockSource)
	src.On("FetchStats", mock.Anything, mock.Anything).Return(models.ProjectStats{
		Num:      models.Stat("42"),
		AvgVotes: models.Stat("3.5"),
		AvgSeen:  models.Stat("7.2"),
	}, nil).Once()

	p := New(src, nil)
	require.NoError(t, p.Mount(context.Background(), nil))
	require.NoError(t, p.Wait(waitCtx(t)))

	view := p.View()
	assert.Equal(t, models.PanelReady, view.Status)
	assert.Equal(t, []string{"42", "3.5", "7.2"}, values(view))
	src.AssertExpectations(t)
}

func TestPanelMissingFieldsRenderPlaceholders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"num": 5}`))
	}))
	defer srv.Close()

	p := New(NewFetcher(srv.URL, time.Second, false), nil)
	require.NoError(t, p.Mount(context.Background(), nil))
	require.NoError(t, p.Wait(waitCtx(t)))

	view := p.View()
	assert.Equal(t, []string{"5", Placeholder, Placeholder}, values(view))
	assert.True(t, view.Widgets[0].Numeric)
	assert.False(t, view.Widgets[1].Numeric)
}

func TestPanelOneRequestPerMount(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"num": 1, "avg_votes": 1, "avg_seen": 1}`))
	}))
	defer srv.Close()
	f := NewFetcher(srv.URL, time.Second, false)

	p := New(f, nil)
	require.NoError(t, p.Mount(context.Background(), nil))
	assert.ErrorIs(t, p.Mount(context.Background(), nil), ErrAlreadyMounted)
	require.NoError(t, p.Wait(waitCtx(t)))
	p.Unmount()
	assert.EqualValues(t, 1, calls.Load())

	again := New(f, nil)
	require.NoError(t, again.Mount(context.Background(), nil))
	require.NoError(t, again.Wait(waitCtx(t)))
	assert.EqualValues(t, 2, calls.Load())
}

func TestPanelFailureKeepsZeros(t *testing.T) {
	src := new(mockSource)
	src.On("FetchStats", mock.Anything, mock.Anything).Return(models.ProjectStats{}, ErrUnreachable)

	p := New(src, nil)
	require.NoError(t, p.Mount(context.Background(), nil))
	assert.ErrorIs(t, p.Wait(waitCtx(t)), ErrUnreachable)

	view := p.View()
	assert.Equal(t, models.PanelFailed, view.Status)
	assert.Equal(t, []string{"0", "0", "0"}, values(view))
	assert.Contains(t, view.Error, "stats unavailable")
}

func TestPanelUnmountBeforeResolve(t *testing.T) {
	release := make(chan struct{})
	src := new(mockSource)
	src.On("FetchStats", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(models.ProjectStats{Num: models.Stat("9"), AvgVotes: models.Stat("9"), AvgSeen: models.Stat("9")}, nil)

	p := New(src, nil)
	require.NoError(t, p.Mount(context.Background(), nil))
	p.Unmount()
	<-p.Done()

	close(release)
	// the late result must be dropped without touching state
	time.Sleep(50 * time.Millisecond)

	view := p.View()
	assert.Equal(t, models.PanelUnmounted, view.Status)
	assert.Equal(t, []string{"0", "0", "0"}, values(view))
	assert.NotPanics(t, p.Unmount)
}

func TestPanelUnmountCancelsRequest(t *testing.T) {
	cancelled := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(cancelled)
	}))
	defer srv.Close()

	p := New(NewFetcher(srv.URL, 5*time.Second, false), nil)
	require.NoError(t, p.Mount(context.Background(), nil))
	time.Sleep(50 * time.Millisecond)
	p.Unmount()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("request was not cancelled on unmount")
	}
}
