package models

import (
	"fmt"
)

// Pollutant identifies one of the measured substances exposed by the
// AirKorea real-time measurement API.
type Pollutant string

const (
	PM25 Pollutant = "pm25"
	PM10 Pollutant = "pm10"
	O3   Pollutant = "o3"
	NO2  Pollutant = "no2"
)

// AllPollutants returns the supported pollutant keys
func AllPollutants() []Pollutant {
	return []Pollutant{PM25, PM10, O3, NO2}
}

// ParsePollutant converts a user-supplied string into a Pollutant
func ParsePollutant(s string) (Pollutant, error) {
	for _, p := range AllPollutants() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown pollutant: %q", s)
}

// ValueField returns the upstream JSON field carrying this pollutant's
// concentration, e.g. "pm25Value" for PM25.
func (p Pollutant) ValueField() string {
	return string(p) + "Value"
}

// Term is the lookback span requested from the upstream API for a single
// station's history, using the API's own dataTerm vocabulary.
type Term string

const (
	TermDaily   Term = "DAILY"
	TermMonth   Term = "MONTH"
	TermQuarter Term = "3MONTH"
)
