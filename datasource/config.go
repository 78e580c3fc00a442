package datasource

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"airquality-service/models"
)

const (
	// Window bounds for the trailing display span, in hours
	MinWindowHours  = 24
	MaxWindowHours  = 168
	WindowStepHours = 24
)

// CityMapping ties a province (sido) name, as the upstream API spells it,
// to the display label used in the aggregated output.
type CityMapping struct {
	Province string `yaml:"province" json:"province"`
	Label    string `yaml:"label" json:"label"`
}

// Config represents the application configuration. The service key is not
// part of the file; it is read from the environment and attached by main.
type Config struct {
	// Province to city-label mappings aggregated on every load cycle
	Cities []CityMapping `yaml:"cities"`

	// Pollutant keys selectable through the API
	Pollutants []models.Pollutant `yaml:"pollutants"`

	// Pollutant loaded by the background refresher
	DefaultPollutant models.Pollutant `yaml:"defaultPollutant"`

	// Trailing window applied to the aggregated series
	WindowHours int `yaml:"windowHours"`

	// Stations sampled per city (first N of the directory listing)
	MaxStations int `yaml:"maxStations"`

	// HTTP listen port
	Port int `yaml:"port"`

	// Minutes between background load cycles
	RefreshMinutes int `yaml:"refreshMinutes"`

	// AirKorea service credential, from the environment
	ServiceKey string `yaml:"-"`
}

// DefaultConfig creates a default configuration: the four monitored
// provinces, all pollutants, a 48 hour window and 6 stations per city.
func DefaultConfig() *Config {
	return &Config{
		Cities: []CityMapping{
			{Province: "서울", Label: "Seoul"},
			{Province: "인천", Label: "Incheon"},
			{Province: "대전", Label: "Daejeon"},
			{Province: "부산", Label: "Busan"},
		},
		Pollutants:       models.AllPollutants(),
		DefaultPollutant: models.PM25,
		WindowHours:      48,
		MaxStations:      6,
		Port:             8080,
		RefreshMinutes:   10,
	}
}

// LoadConfig loads configuration from a YAML file, applying defaults for
// omitted fields, and validates the result
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the enumerations and bounds
func (c *Config) Validate() error {
	if len(c.Cities) == 0 {
		return fmt.Errorf("no cities configured")
	}
	for _, city := range c.Cities {
		if city.Province == "" || city.Label == "" {
			return fmt.Errorf("city mapping needs both province and label, got %+v", city)
		}
	}

	if len(c.Pollutants) == 0 {
		return fmt.Errorf("no pollutants configured")
	}
	for _, p := range c.Pollutants {
		if _, err := models.ParsePollutant(string(p)); err != nil {
			return err
		}
	}
	if !c.HasPollutant(c.DefaultPollutant) {
		return fmt.Errorf("default pollutant %q is not in the configured set", c.DefaultPollutant)
	}

	if !ValidWindowHours(c.WindowHours) {
		return fmt.Errorf("window hours must be %d-%d in steps of %d, got %d",
			MinWindowHours, MaxWindowHours, WindowStepHours, c.WindowHours)
	}

	if c.MaxStations < 1 {
		return fmt.Errorf("max stations must be at least 1, got %d", c.MaxStations)
	}

	if c.RefreshMinutes < 1 {
		return fmt.Errorf("refresh minutes must be at least 1, got %d", c.RefreshMinutes)
	}

	return nil
}

// HasPollutant reports whether the pollutant is in the configured set
func (c *Config) HasPollutant(p models.Pollutant) bool {
	for _, candidate := range c.Pollutants {
		if candidate == p {
			return true
		}
	}
	return false
}

// Labels returns the configured city display labels in order
func (c *Config) Labels() []string {
	labels := make([]string, 0, len(c.Cities))
	for _, city := range c.Cities {
		labels = append(labels, city.Label)
	}
	return labels
}

// RefreshInterval returns the background refresh period
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMinutes) * time.Minute
}

// ValidWindowHours reports whether hours is a selectable window size
func ValidWindowHours(hours int) bool {
	return hours >= MinWindowHours && hours <= MaxWindowHours && hours%WindowStepHours == 0
}
