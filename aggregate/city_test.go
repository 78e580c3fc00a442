package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"airquality-service/models"
)

// fakeClient serves canned station directories and series for aggregator
// tests, recording which stations were fetched.
type fakeClient struct {
	stations     []string
	stationsErr  error
	series       map[string][]models.Reading
	seriesErr    map[string]error
	fetchedFrom  []string
	listRequests int
}

func (f *fakeClient) ListStations(ctx context.Context, province string) ([]string, error) {
	f.listRequests++
	if f.stationsErr != nil {
		return nil, f.stationsErr
	}
	return f.stations, nil
}

func (f *fakeClient) StationSeries(ctx context.Context, station string, term models.Term, pollutant models.Pollutant) ([]models.Reading, error) {
	f.fetchedFrom = append(f.fetchedFrom, station)
	if err, ok := f.seriesErr[station]; ok {
		return nil, err
	}
	return f.series[station], nil
}

func (f *fakeClient) Name() string {
	return "Fake"
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(tsLayout, value)
	if err != nil {
		t.Fatalf("Bad test timestamp %q: %v", value, err)
	}
	return parsed
}

func readings(station string, points map[string]float64, t *testing.T) []models.Reading {
	t.Helper()
	rows := make([]models.Reading, 0, len(points))
	for key, value := range points {
		rows = append(rows, models.Reading{Station: station, Timestamp: ts(t, key), Value: value})
	}
	return rows
}

func TestAggregatePartialFailure(t *testing.T) {
	// Station A reports T0..T2, B reports T1..T2, C fails entirely
	client := &fakeClient{
		stations: []string{"A", "B", "C"},
		series: map[string][]models.Reading{
			"A": readings("A", map[string]float64{
				"2024-03-01 10:00": 10,
				"2024-03-01 11:00": 20,
				"2024-03-01 12:00": 30,
			}, t),
			"B": readings("B", map[string]float64{
				"2024-03-01 11:00": 40,
				"2024-03-01 12:00": 50,
			}, t),
		},
		seriesErr: map[string]error{
			"C": errors.New("connection refused"),
		},
	}

	aggregator := NewCityAggregator(client, 6)
	series, report := aggregator.Aggregate(context.Background(), "서울", "Seoul", models.PM25, 48)

	if len(series) != 3 {
		t.Fatalf("Expected 3 aggregated timestamps, got %d: %v", len(series), series)
	}

	expected := []struct {
		ts    string
		value float64
	}{
		{"2024-03-01 10:00", 10}, // A only
		{"2024-03-01 11:00", 30}, // mean(20, 40)
		{"2024-03-01 12:00", 40}, // mean(30, 50)
	}
	for i, want := range expected {
		if !series[i].Timestamp.Equal(ts(t, want.ts)) {
			t.Errorf("Row %d: expected timestamp %s, got %s", i, want.ts, series[i].Timestamp)
		}
		if series[i].Value != want.value {
			t.Errorf("Row %d: expected value %v, got %v", i, want.value, series[i].Value)
		}
		if series[i].City != "Seoul" {
			t.Errorf("Row %d: expected city Seoul, got %s", i, series[i].City)
		}
	}

	// The failed station is reported, not silently discarded
	if len(report.Stations) != 3 {
		t.Fatalf("Expected 3 station results, got %d", len(report.Stations))
	}
	if report.FailedStations() != 1 {
		t.Errorf("Expected 1 failed station, got %d", report.FailedStations())
	}
	for _, result := range report.Stations {
		if result.Station == "C" && !result.Failed() {
			t.Error("Expected station C to be reported as failed")
		}
		if result.Station == "A" && result.Rows != 3 {
			t.Errorf("Expected station A to report 3 rows, got %d", result.Rows)
		}
	}
	if report.Rows != 3 {
		t.Errorf("Expected report to count 3 aggregated rows, got %d", report.Rows)
	}
}

func TestAggregateWindowFilter(t *testing.T) {
	// One reading falls outside the 24h window anchored at the latest
	// timestamp; the cutoff boundary itself is kept
	client := &fakeClient{
		stations: []string{"A"},
		series: map[string][]models.Reading{
			"A": readings("A", map[string]float64{
				"2024-03-01 10:00": 1,  // cutoff - 1h, dropped
				"2024-03-01 11:00": 2,  // exactly at cutoff, kept
				"2024-03-02 11:00": 3,  // tmax
			}, t),
		},
	}

	aggregator := NewCityAggregator(client, 6)
	series, _ := aggregator.Aggregate(context.Background(), "서울", "Seoul", models.PM25, 24)

	if len(series) != 2 {
		t.Fatalf("Expected 2 rows inside the window, got %d: %v", len(series), series)
	}
	if series[0].Value != 2 || series[1].Value != 3 {
		t.Errorf("Unexpected windowed values: %v", series)
	}

	cutoff := ts(t, "2024-03-01 11:00")
	for _, row := range series {
		if row.Timestamp.Before(cutoff) {
			t.Errorf("Row %v is outside the window", row)
		}
	}
}

func TestAggregateDirectoryFailure(t *testing.T) {
	client := &fakeClient{stationsErr: errors.New("dns failure")}

	aggregator := NewCityAggregator(client, 6)
	series, report := aggregator.Aggregate(context.Background(), "서울", "Seoul", models.PM25, 48)

	if series == nil {
		t.Fatal("Expected zero-row series, got nil")
	}
	if len(series) != 0 {
		t.Errorf("Expected 0 rows, got %d", len(series))
	}
	if report.DirectoryErr == nil {
		t.Error("Expected directory error in report")
	}
	if len(client.fetchedFrom) != 0 {
		t.Errorf("Expected no station fetches after directory failure, got %v", client.fetchedFrom)
	}
}

func TestAggregateAllStationsFail(t *testing.T) {
	client := &fakeClient{
		stations: []string{"A", "B"},
		seriesErr: map[string]error{
			"A": errors.New("timeout"),
			"B": errors.New("timeout"),
		},
	}

	aggregator := NewCityAggregator(client, 6)
	series, report := aggregator.Aggregate(context.Background(), "서울", "Seoul", models.PM25, 48)

	if series == nil {
		t.Fatal("Expected zero-row series, got nil")
	}
	if len(series) != 0 {
		t.Errorf("Expected 0 rows, got %d", len(series))
	}
	if report.FailedStations() != 2 {
		t.Errorf("Expected 2 failed stations, got %d", report.FailedStations())
	}
}

func TestAggregateMaxStationsTruncation(t *testing.T) {
	client := &fakeClient{
		stations: []string{"A", "B", "C", "D"},
		series: map[string][]models.Reading{
			"A": readings("A", map[string]float64{"2024-03-01 10:00": 1}, t),
			"B": readings("B", map[string]float64{"2024-03-01 10:00": 2}, t),
			"C": readings("C", map[string]float64{"2024-03-01 10:00": 100}, t),
			"D": readings("D", map[string]float64{"2024-03-01 10:00": 100}, t),
		},
	}

	aggregator := NewCityAggregator(client, 2)
	series, _ := aggregator.Aggregate(context.Background(), "서울", "Seoul", models.PM25, 48)

	// Only the first two stations contribute
	if len(client.fetchedFrom) != 2 {
		t.Fatalf("Expected fetches from 2 stations, got %v", client.fetchedFrom)
	}
	if client.fetchedFrom[0] != "A" || client.fetchedFrom[1] != "B" {
		t.Errorf("Expected fetches from A and B, got %v", client.fetchedFrom)
	}
	if len(series) != 1 || series[0].Value != 1.5 {
		t.Errorf("Expected single row with mean 1.5, got %v", series)
	}
}
