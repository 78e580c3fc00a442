package models

import (
	"time"
)

// CitySummary holds the cross-station statistics for one city at the latest
// observed timestamp. Std is 0 when fewer than two samples contributed.
type CitySummary struct {
	City    string  `json:"city"`
	Mean    float64 `json:"mean"`
	Max     float64 `json:"max"`
	Std     float64 `json:"std"`
	Samples int     `json:"samples"`
	Grade   string  `json:"grade"`
}

// Snapshot is the single-timestamp cross-city summary table.
type Snapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Cities    []CitySummary `json:"cities"`
}

// GradePM25 maps a concentration to the Korean PM2.5 grade bands
func GradePM25(v float64) string {
	switch {
	case v <= 15:
		return "good"
	case v <= 35:
		return "moderate"
	case v <= 75:
		return "unhealthy"
	default:
		return "very-unhealthy"
	}
}
