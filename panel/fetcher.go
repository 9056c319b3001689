package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"jury-dashboard/models"

	"github.com/go-playground/validator/v10"
)

const statsPath = "/project/stats"

var (
	ErrUnreachable    = errors.New("stats backend unreachable")
	ErrBadStatus      = errors.New("stats backend returned non-success status")
	ErrMalformed      = errors.New("stats response is not a JSON object")
	ErrInvalidShape   = errors.New("stats response has invalid shape")
	ErrAlreadyMounted = errors.New("panel already mounted")
)

// StatusError reports the HTTP status of a rejected stats response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stats backend returned %d %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error { return ErrBadStatus }

// StatsSource loads project statistics on behalf of one viewer.
type StatsSource interface {
	FetchStats(ctx context.Context, cookies []*http.Cookie) (models.ProjectStats, error)
}

// Fetcher reads /project/stats from the jury backend.
//
// In lenient mode any JSON object is accepted whatever the status code, and
// fields that are missing or not numeric simply stay invalid. Strict mode
// rejects non-2xx responses and validates the payload.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
	Strict  bool

	validate *validator.Validate
}

func NewFetcher(baseURL string, timeout time.Duration, strict bool) *Fetcher {
	return &Fetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   &http.Client{Timeout: timeout},
		Strict:   strict,
		validate: newStatsValidator(),
	}
}

func newStatsValidator() *validator.Validate {
	v := validator.New()
	// A StatValue validates as a *float64 so that "required" accepts 0 and
	// rejects missing or non-numeric fields.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		var missing *float64
		sv, ok := field.Interface().(models.StatValue)
		if !ok || !sv.Valid {
			return missing
		}
		f, err := sv.Number.Float64()
		if err != nil {
			return missing
		}
		return &f
	}, models.StatValue{})
	v.RegisterValidation("integral", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 {
			return false
		}
		return f.Float() == math.Trunc(f.Float())
	})
	return v
}

// FetchStats issues one GET request carrying the viewer's cookies.
func (f *Fetcher) FetchStats(ctx context.Context, cookies []*http.Cookie) (models.ProjectStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+statsPath, nil)
	if err != nil {
		return models.ProjectStats{}, fmt.Errorf("build stats request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.ProjectStats{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if f.Strict && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return models.ProjectStats{}, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ProjectStats{}, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}

	stats, err := decodeStats(body)
	if err != nil {
		return models.ProjectStats{}, err
	}

	if f.Strict {
		v := f.validate
		if v == nil {
			v = newStatsValidator()
		}
		if err := v.Struct(stats); err != nil {
			return models.ProjectStats{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
		}
	}
	return stats, nil
}

func decodeStats(body []byte) (models.ProjectStats, error) {
	var stats models.ProjectStats
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return stats, ErrMalformed
	}
	// Keys are matched exactly; encoding/json would also accept "NUM".
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for key, dst := range map[string]*models.StatValue{
		"num":       &stats.Num,
		"avg_votes": &stats.AvgVotes,
		"avg_seen":  &stats.AvgSeen,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := dst.UnmarshalJSON(raw); err != nil {
			return stats, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
		}
	}
	return stats, nil
}
