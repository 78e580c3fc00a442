package api

import (
	"sync"
	"time"

	"airquality-service/models"
)

// Result is everything one load cycle produced: the combined multi-city
// series, its snapshot summary, and the per-province fetch report.
type Result struct {
	Pollutant   models.Pollutant     `json:"pollutant"`
	WindowHours int                  `json:"windowHours"`
	Series      []models.CityReading `json:"series"`
	Snapshot    models.Snapshot      `json:"snapshot"`
	HasSnapshot bool                 `json:"-"`
	Report      models.LoadReport    `json:"report"`
	Updated     time.Time            `json:"updated"`
}

// Empty reports whether the cycle produced no rows at all
func (r Result) Empty() bool {
	return len(r.Series) == 0
}

// Store holds the latest load cycle's result. Each cycle replaces the
// previous one wholesale; nothing persists across cycles.
type Store struct {
	latest *Result
	mutex  sync.RWMutex
}

// NewStore creates a new in-memory result store
func NewStore() *Store {
	return &Store{}
}

// SetResult replaces the stored result with the given cycle's output
func (s *Store) SetResult(result Result) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.latest = &result
}

// Latest returns the most recent result, if any cycle has completed
func (s *Store) Latest() (Result, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.latest == nil {
		return Result{}, false
	}
	return *s.latest, true
}
