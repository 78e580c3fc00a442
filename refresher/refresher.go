package refresher

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"airquality-service/aggregate"
	"airquality-service/api"
	"airquality-service/models"
)

// Sink receives each completed load cycle's result
type Sink interface {
	SetResult(result api.Result)
}

// Refresher periodically re-runs the full load pipeline and writes the
// result into the sink. The pipeline itself stays sequential; this is the
// only background goroutine besides the HTTP server.
type Refresher struct {
	loader      *aggregate.Loader
	sink        Sink
	interval    time.Duration
	pollutant   models.Pollutant
	windowHours int
}

// New creates a refresher loading the given pollutant and window
func New(loader *aggregate.Loader, sink Sink, interval time.Duration, pollutant models.Pollutant, windowHours int) *Refresher {
	return &Refresher{
		loader:      loader,
		sink:        sink,
		interval:    interval,
		pollutant:   pollutant,
		windowHours: windowHours,
	}
}

// Start begins periodic refreshing, with an immediate first load.
// The returned function stops the loop and waits for it to finish.
func (r *Refresher) Start(ctx context.Context) func() {
	runCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.runOnce(runCtx)

		for {
			select {
			case <-ticker.C:
				r.runOnce(runCtx)
			case <-runCtx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// runOnce executes a single load cycle and publishes the result
func (r *Refresher) runOnce(ctx context.Context) {
	series, report := r.loader.LoadAll(ctx, r.pollutant, r.windowHours)

	result := api.Result{
		Pollutant:   r.pollutant,
		WindowHours: r.windowHours,
		Series:      series,
		Report:      report,
		Updated:     time.Now(),
	}
	if snapshot, ok := aggregate.Summarize(series); ok {
		result.Snapshot = snapshot
		result.HasSnapshot = true
	} else {
		log.WithField("cycle", report.CycleID).Warn("load cycle produced no data")
	}

	r.sink.SetResult(result)
}
