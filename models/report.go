package models

import (
	"encoding/json"
	"time"
)

// StationResult records the outcome of a single station fetch, so partial
// failures stay visible instead of being silently dropped from aggregation.
type StationResult struct {
	Station string
	Rows    int
	Err     error
}

// Failed reports whether the station fetch returned an error
func (r StationResult) Failed() bool {
	return r.Err != nil
}

// MarshalJSON renders the fetch error as its message string
func (r StationResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Station string `json:"station"`
		Rows    int    `json:"rows"`
		Error   string `json:"error,omitempty"`
	}{
		Station: r.Station,
		Rows:    r.Rows,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// ProvinceReport is the per-city aggregation outcome: the directory lookup
// result plus one StationResult per sampled station.
type ProvinceReport struct {
	Province     string
	City         string
	DirectoryErr error
	Stations     []StationResult
	Rows         int
}

// FailedStations returns how many station fetches errored
func (r ProvinceReport) FailedStations() int {
	n := 0
	for _, s := range r.Stations {
		if s.Failed() {
			n++
		}
	}
	return n
}

// MarshalJSON renders the directory error as its message string
func (r ProvinceReport) MarshalJSON() ([]byte, error) {
	out := struct {
		Province      string          `json:"province"`
		City          string          `json:"city"`
		DirectoryErr  string          `json:"directoryError,omitempty"`
		Stations      []StationResult `json:"stations"`
		Rows          int             `json:"rows"`
		FailedFetches int             `json:"failedFetches"`
	}{
		Province:      r.Province,
		City:          r.City,
		Stations:      r.Stations,
		Rows:          r.Rows,
		FailedFetches: r.FailedStations(),
	}
	if r.DirectoryErr != nil {
		out.DirectoryErr = r.DirectoryErr.Error()
	}
	return json.Marshal(out)
}

// LoadReport describes one full load cycle across all configured cities.
// The cycle ID ties log lines and the served report to the same run.
type LoadReport struct {
	CycleID   string           `json:"cycleId"`
	Started   time.Time        `json:"started"`
	Elapsed   time.Duration    `json:"elapsed"`
	Provinces []ProvinceReport `json:"provinces"`
}

// TotalRows sums the aggregated row counts over all provinces
func (r LoadReport) TotalRows() int {
	n := 0
	for _, p := range r.Provinces {
		n += p.Rows
	}
	return n
}
