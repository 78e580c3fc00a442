package aggregate

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"airquality-service/datasource"
	"airquality-service/models"
)

// Loader runs the city aggregator over every configured province and
// concatenates the results into one multi-city table.
type Loader struct {
	aggregator *CityAggregator
	cities     []datasource.CityMapping
}

// NewLoader creates a loader over the configured province mappings
func NewLoader(aggregator *CityAggregator, cities []datasource.CityMapping) *Loader {
	return &Loader{
		aggregator: aggregator,
		cities:     cities,
	}
}

// LoadAll aggregates every configured city sequentially and returns the
// row-wise concatenation of their series, empty cities included. The report
// carries one ProvinceReport per city under a fresh cycle ID.
func (l *Loader) LoadAll(ctx context.Context, pollutant models.Pollutant, windowHours int) ([]models.CityReading, models.LoadReport) {
	report := models.LoadReport{
		CycleID: uuid.NewString(),
		Started: time.Now(),
	}

	combined := make([]models.CityReading, 0)
	for _, city := range l.cities {
		rows, provinceReport := l.aggregator.Aggregate(ctx, city.Province, city.Label, pollutant, windowHours)
		combined = append(combined, rows...)
		report.Provinces = append(report.Provinces, provinceReport)
	}
	report.Elapsed = time.Since(report.Started)

	log.WithFields(log.Fields{
		"cycle":     report.CycleID,
		"pollutant": string(pollutant),
		"hours":     windowHours,
		"rows":      len(combined),
		"elapsed":   report.Elapsed.Round(time.Millisecond).String(),
	}).Info("load cycle complete")

	return combined, report
}

// Cities returns the configured province mappings
func (l *Loader) Cities() []datasource.CityMapping {
	return l.cities
}
