package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"airquality-service/aggregate"
	"airquality-service/datasource"
	"airquality-service/models"
)

// Manual pipeline check: runs one load cycle against the live AirKorea API
// and prints the combined table plus the snapshot summary.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	pollutantFlag := flag.String("pollutant", "", "Pollutant to load (default from config)")
	hours := flag.Int("hours", 0, "Window hours (default from config)")
	flag.Parse()

	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	serviceKey := os.Getenv("AIRKOREA_SERVICE_KEY")
	if serviceKey == "" {
		log.Fatal("AIRKOREA_SERVICE_KEY is not set")
	}

	pollutant := config.DefaultPollutant
	if *pollutantFlag != "" {
		pollutant, err = models.ParsePollutant(*pollutantFlag)
		if err != nil {
			log.Fatalf("Invalid pollutant: %v", err)
		}
	}
	if *hours == 0 {
		*hours = config.WindowHours
	}
	if !datasource.ValidWindowHours(*hours) {
		log.Fatalf("Invalid window hours: %d", *hours)
	}

	client := datasource.NewAirKoreaClient(serviceKey)
	aggregator := aggregate.NewCityAggregator(client, config.MaxStations)
	loader := aggregate.NewLoader(aggregator, config.Cities)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	series, report := loader.LoadAll(ctx, pollutant, *hours)

	fmt.Printf("Cycle %s: %d rows in %s\n\n", report.CycleID, len(series), report.Elapsed.Round(time.Millisecond))
	for _, province := range report.Provinces {
		status := fmt.Sprintf("%d rows, %d/%d stations failed",
			province.Rows, province.FailedStations(), len(province.Stations))
		if province.DirectoryErr != nil {
			status = fmt.Sprintf("directory error: %v", province.DirectoryErr)
		}
		fmt.Printf("  %-10s (%s): %s\n", province.City, province.Province, status)
	}

	if len(series) == 0 {
		fmt.Println("\nNo data available")
		os.Exit(1)
	}

	fmt.Printf("\n%-20s %10s  %s\n", "TIMESTAMP", string(pollutant), "CITY")
	for _, row := range series {
		fmt.Printf("%-20s %10.2f  %s\n", row.Timestamp.Format("2006-01-02 15:04"), row.Value, row.City)
	}

	if snapshot, ok := aggregate.Summarize(series); ok {
		fmt.Printf("\nSnapshot at %s:\n", snapshot.Timestamp.Format("2006-01-02 15:04"))
		for _, city := range snapshot.Cities {
			fmt.Printf("  %-10s mean=%.2f max=%.2f std=%.2f grade=%s\n",
				city.City, city.Mean, city.Max, city.Std, city.Grade)
		}
	}
}
