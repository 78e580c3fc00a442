package aggregate

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	log "github.com/sirupsen/logrus"

	"airquality-service/models"
)

// Summarize builds the single-timestamp cross-city summary: for the latest
// timestamp present in the combined series, per-city mean, max and standard
// deviation of the value. Returns false when the series is empty.
func Summarize(rows []models.CityReading) (models.Snapshot, bool) {
	if len(rows) == 0 {
		return models.Snapshot{}, false
	}

	latest := rows[0].Timestamp
	for _, r := range rows[1:] {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}

	cities := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Timestamp.Equal(latest) {
			cities = append(cities, r.City)
			values = append(values, r.Value)
		}
	}

	df := dataframe.New(
		series.New(cities, series.String, "city"),
		series.New(values, series.Float, "value"),
	)
	stats := df.GroupBy("city").Aggregation(
		[]dataframe.AggregationType{
			dataframe.Aggregation_MEAN,
			dataframe.Aggregation_MAX,
			dataframe.Aggregation_STD,
			dataframe.Aggregation_COUNT,
		},
		[]string{"value", "value", "value", "value"},
	)
	if stats.Err != nil {
		log.Warnf("snapshot aggregation failed: %v", stats.Err)
		return models.Snapshot{}, false
	}
	stats = stats.Arrange(dataframe.Sort("city"))

	labels := stats.Col("city").Records()
	means := stats.Col("value_MEAN").Float()
	maxes := stats.Col("value_MAX").Float()
	stds := stats.Col("value_STD").Float()
	counts := stats.Col("value_COUNT").Float()

	snapshot := models.Snapshot{Timestamp: latest}
	for i := range labels {
		samples := int(counts[i])
		std := stds[i]
		// Sample std over a single value is undefined; keep the JSON finite
		if samples < 2 || math.IsNaN(std) {
			std = 0
		}
		snapshot.Cities = append(snapshot.Cities, models.CitySummary{
			City:    labels[i],
			Mean:    round2(means[i]),
			Max:     round2(maxes[i]),
			Std:     round2(std),
			Samples: samples,
			Grade:   models.GradePM25(means[i]),
		})
	}

	return snapshot, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
