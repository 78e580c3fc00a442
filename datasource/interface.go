package datasource

import (
	"context"

	"airquality-service/models"
)

// StationDirectory resolves the monitoring stations of a province
type StationDirectory interface {
	// ListStations returns the unique station names reporting in a province
	ListStations(ctx context.Context, province string) ([]string, error)

	// Name returns the directory's name
	Name() string
}

// SeriesSource fetches one station's recent readings for a pollutant
type SeriesSource interface {
	// StationSeries returns the parsed (timestamp, value) rows for a station
	// over the given lookback term
	StationSeries(ctx context.Context, station string, term models.Term, pollutant models.Pollutant) ([]models.Reading, error)

	// Name returns the source's name
	Name() string
}

// Client combines both upstream roles; the AirKorea service exposes the
// station directory and the per-station history under one credential.
type Client interface {
	StationDirectory
	SeriesSource
}
