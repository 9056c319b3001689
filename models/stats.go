package models

import (
	"bytes"
	"encoding/json"
)

// StatValue holds one statistic exactly as the backend sent it.
// Valid is false when the field was missing, null or not a JSON number.
type StatValue struct {
	Number json.Number
	Valid  bool
}

// Stat returns a valid StatValue for the given number text.
func Stat(n string) StatValue {
	return StatValue{Number: json.Number(n), Valid: true}
}

func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' || data[0] == '{' || data[0] == '[' ||
		bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		*v = StatValue{}
		return nil
	}
	*v = Stat(string(data))
	return nil
}

func (v StatValue) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(v.Number), nil
}

// ProjectStats is the payload of GET /project/stats.
type ProjectStats struct {
	Num      StatValue `json:"num" validate:"required,gte=0,integral"`
	AvgVotes StatValue `json:"avg_votes" validate:"required,gte=0"`
	AvgSeen  StatValue `json:"avg_seen" validate:"required,gte=0"`
}

// ZeroProjectStats is the state of a panel before its fetch settles.
func ZeroProjectStats() ProjectStats {
	return ProjectStats{Num: Stat("0"), AvgVotes: Stat("0"), AvgSeen: Stat("0")}
}

type PanelStatus string

const (
	PanelLoading   PanelStatus = "loading"
	PanelReady     PanelStatus = "ready"
	PanelFailed    PanelStatus = "failed"
	PanelUnmounted PanelStatus = "unmounted"
)

type StatWidget struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Numeric bool   `json:"numeric"`
}

type PanelView struct {
	ID      string       `json:"id"`
	Status  PanelStatus  `json:"status"`
	Error   string       `json:"error,omitempty"`
	Widgets []StatWidget `json:"widgets"`
}
