package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"airquality-service/aggregate"
	"airquality-service/datasource"
	"airquality-service/models"
)

// Server serves the aggregated series and snapshot to the presentation
// layer as JSON.
type Server struct {
	store  *Store
	loader *aggregate.Loader
	config *datasource.Config
	server *http.Server
}

// NewServer creates a new API server
func NewServer(store *Store, loader *aggregate.Loader, config *datasource.Config, port int) *Server {
	mux := http.NewServeMux()

	server := &Server{
		store:  store,
		loader: loader,
		config: config,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/api/series", server.handleGetSeries)
	mux.HandleFunc("/api/summary", server.handleGetSummary)
	mux.HandleFunc("/api/cities", server.handleGetCities)
	mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server
}

// Start begins the API server
func (s *Server) Start() error {
	log.Infof("Starting API server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// handleGetSeries serves the combined multi-city time series. Optional
// pollutant and hours query parameters select a view; when they differ from
// the last refreshed cycle the pipeline is re-run on demand, mirroring the
// dashboard's reload-per-interaction lifecycle.
func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pollutant := s.config.DefaultPollutant
	if raw := r.URL.Query().Get("pollutant"); raw != "" {
		parsed, err := models.ParsePollutant(raw)
		if err != nil || !s.config.HasPollutant(parsed) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported pollutant: %s", raw))
			return
		}
		pollutant = parsed
	}

	hours := s.config.WindowHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || !datasource.ValidWindowHours(parsed) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported window hours: %s", raw))
			return
		}
		hours = parsed
	}

	result, exists := s.store.Latest()
	if !exists || result.Pollutant != pollutant || result.WindowHours != hours {
		// On-demand load for parameters the background cycle did not cover
		result = s.loadNow(r.Context(), pollutant, hours)
	}

	w.Header().Set("Content-Type", "application/json")

	if result.Empty() {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "data unavailable",
			"report": result.Report,
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// handleGetSummary serves the latest-timestamp cross-city statistics
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	result, exists := s.store.Latest()
	if !exists || !result.HasSnapshot {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "data unavailable",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"pollutant":   result.Pollutant,
		"windowHours": result.WindowHours,
		"snapshot":    result.Snapshot,
		"updated":     result.Updated,
	})
}

// handleGetCities returns the configured city labels
func (s *Server) handleGetCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	labels := s.config.Labels()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cities": labels,
		"count":  len(labels),
	})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if result, exists := s.store.Latest(); exists {
		response["lastCycle"] = result.Report.CycleID
		response["lastUpdated"] = result.Updated.Format(time.RFC3339)
		response["rows"] = len(result.Series)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loadNow runs one synchronous pipeline cycle and stores its result
func (s *Server) loadNow(ctx context.Context, pollutant models.Pollutant, hours int) Result {
	series, report := s.loader.LoadAll(ctx, pollutant, hours)

	result := Result{
		Pollutant:   pollutant,
		WindowHours: hours,
		Series:      series,
		Report:      report,
		Updated:     time.Now(),
	}
	if snapshot, ok := aggregate.Summarize(series); ok {
		result.Snapshot = snapshot
		result.HasSnapshot = true
	}

	s.store.SetResult(result)
	return result
}

// writeError sends a JSON error body with the given status
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
