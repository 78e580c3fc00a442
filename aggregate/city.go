package aggregate

import (
	"context"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	log "github.com/sirupsen/logrus"

	"airquality-service/datasource"
	"airquality-service/models"
)

// tsLayout is the sortable key format used to group readings by hour.
// Lexicographic order on this layout equals chronological order.
const tsLayout = "2006-01-02 15:04"

// CityAggregator turns the per-station series of one province into a single
// city-level hourly average restricted to a trailing window.
type CityAggregator struct {
	directory   datasource.StationDirectory
	source      datasource.SeriesSource
	maxStations int
	term        models.Term
}

// NewCityAggregator creates an aggregator sampling at most maxStations
// stations per province
func NewCityAggregator(client datasource.Client, maxStations int) *CityAggregator {
	return &CityAggregator{
		directory:   client,
		source:      client,
		maxStations: maxStations,
		term:        models.TermMonth,
	}
}

// Aggregate builds the hourly city series for one province.
//
// Station fetch failures are tolerated per station: the failed station
// contributes nothing, the outcome is recorded in the report, and the rest
// of the stations are still aggregated. Only the returned report carries
// failure information; the series itself is always well formed, possibly
// with zero rows.
func (a *CityAggregator) Aggregate(ctx context.Context, province, city string, pollutant models.Pollutant, windowHours int) ([]models.CityReading, models.ProvinceReport) {
	report := models.ProvinceReport{Province: province, City: city}

	stations, err := a.directory.ListStations(ctx, province)
	if err != nil {
		report.DirectoryErr = err
		log.WithFields(log.Fields{
			"province": province,
			"city":     city,
		}).Warnf("station directory fetch failed: %v", err)
		return []models.CityReading{}, report
	}

	// First N of the sorted directory listing, no ranking
	if len(stations) > a.maxStations {
		stations = stations[:a.maxStations]
	}

	var readings []models.Reading
	for _, station := range stations {
		rows, err := a.source.StationSeries(ctx, station, a.term, pollutant)
		if err != nil {
			report.Stations = append(report.Stations, models.StationResult{Station: station, Err: err})
			log.WithFields(log.Fields{
				"province": province,
				"station":  station,
			}).Warnf("station series fetch failed: %v", err)
			continue
		}
		report.Stations = append(report.Stations, models.StationResult{Station: station, Rows: len(rows)})
		readings = append(readings, rows...)
	}

	if len(readings) == 0 {
		return []models.CityReading{}, report
	}

	result := hourlyMean(readings, windowHours, city)
	report.Rows = len(result)
	return result, report
}

// hourlyMean windows the concatenated station readings to the trailing
// windowHours (anchored at the latest observed timestamp) and averages the
// stations sharing each timestamp.
func hourlyMean(readings []models.Reading, windowHours int, city string) []models.CityReading {
	tmax := readings[0].Timestamp
	for _, r := range readings[1:] {
		if r.Timestamp.After(tmax) {
			tmax = r.Timestamp
		}
	}
	cutoff := tmax.Add(-time.Duration(windowHours) * time.Hour)

	keys := make([]string, 0, len(readings))
	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		keys = append(keys, r.Timestamp.Format(tsLayout))
		values = append(values, r.Value)
	}

	df := dataframe.New(
		series.New(keys, series.String, "ts"),
		series.New(values, series.Float, "value"),
	)
	df = df.Filter(dataframe.F{
		Colname:    "ts",
		Comparator: series.GreaterEq,
		Comparando: cutoff.Format(tsLayout),
	})
	if df.Err != nil || df.Nrow() == 0 {
		if df.Err != nil {
			log.Warnf("window filter failed: %v", df.Err)
		}
		return []models.CityReading{}
	}

	hourly := df.GroupBy("ts").Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_MEAN},
		[]string{"value"},
	)
	if hourly.Err != nil {
		log.Warnf("hourly aggregation failed: %v", hourly.Err)
		return []models.CityReading{}
	}
	hourly = hourly.Arrange(dataframe.Sort("ts"))

	timestamps := hourly.Col("ts").Records()
	means := hourly.Col("value_MEAN").Float()

	result := make([]models.CityReading, 0, len(timestamps))
	for i, key := range timestamps {
		ts, err := time.Parse(tsLayout, key)
		if err != nil {
			continue
		}
		result = append(result, models.CityReading{
			Timestamp: ts,
			Value:     means[i],
			City:      city,
		})
	}
	return result
}
