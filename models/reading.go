package models

import (
	"time"
)

// Reading is a single parsed measurement from one monitoring station.
// Rows whose timestamp or value fail to parse upstream never become Readings.
type Reading struct {
	Station   string    `json:"station"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// CityReading is one row of a city-level hourly series: the arithmetic mean
// of all station readings sharing the same timestamp, labeled with the city.
type CityReading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	City      string    `json:"city"`
}
