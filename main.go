package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"

	"airquality-service/aggregate"
	"airquality-service/api"
	"airquality-service/datasource"
	"airquality-service/refresher"
)

const (
	serviceKeyEnvVar = "AIRKOREA_SERVICE_KEY"
	logLevelEnvVar   = "LOG_LEVEL"
	defaultLogLevel  = "INFO"
)

// initLogger parses the log level string and configures logrus
func initLogger(logLevel string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	customFormatter := &logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}
	logrus.SetFormatter(customFormatter)
	logrus.SetLevel(level)
	return nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	logLevel := os.Getenv(logLevelEnvVar)
	if logLevel == "" {
		logLevel = defaultLogLevel
	}
	if err := initLogger(logLevel); err != nil {
		fmt.Printf("error initializing logger: %v\n", err)
		os.Exit(1)
	}

	// Parse command line arguments
	port := flag.Int("port", 0, "Port to run the server on (0 = config value)")
	updateInterval := flag.Duration("update", 0, "Refresh interval override (0 = config value)")
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable API rate limiting")
	flag.Parse()

	// Load configuration
	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	serviceKey := os.Getenv(serviceKeyEnvVar)
	if serviceKey == "" {
		log.Fatalf("%s is not set", serviceKeyEnvVar)
	}
	config.ServiceKey = serviceKey

	if *port == 0 {
		*port = config.Port
	}

	// Create the upstream client
	var upstream datasource.Client = datasource.NewAirKoreaClient(serviceKey)
	if *enableRateLimiting {
		// The public data portal enforces a per-key daily quota; keep the
		// fetch loop well under it
		upstream = datasource.NewRateLimitedClient(upstream, 5.0, 5)
		log.Info("Applied rate limiting to AirKorea client")
	}

	// Wire the pipeline: aggregator -> loader -> store/server
	aggregator := aggregate.NewCityAggregator(upstream, config.MaxStations)
	loader := aggregate.NewLoader(aggregator, config.Cities)
	store := api.NewStore()
	server := api.NewServer(store, loader, config, *port)

	interval := config.RefreshInterval()
	if *updateInterval > 0 {
		interval = *updateInterval
	}
	updater := refresher.New(loader, store, interval, config.DefaultPollutant, config.WindowHours)

	// Start the background refresher
	stopRefresher := updater.Start(context.Background())

	// Start the API server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("Server stopped: %v", err)
		}
	}()

	// Wait for shutdown signal
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdownChan
	log.Infof("Shutting down due to %s signal", sig)

	stopRefresher()

	// Give in-flight responses a moment to drain
	time.Sleep(100 * time.Millisecond)
	log.Info("Shutdown complete")
}
