package datasource

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"airquality-service/models"
)

// RateLimitedClient wraps a Client with rate limiting. Both the directory
// and the series endpoints draw from the same upstream quota, so a single
// limiter covers both.
type RateLimitedClient struct {
	client  Client
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedClient creates a new rate limited client
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedClient(client Client, rps float64, burst int) *RateLimitedClient {
	return &RateLimitedClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", client.Name()),
	}
}

// ListStations resolves a province's stations, respecting rate limits
func (r *RateLimitedClient) ListStations(ctx context.Context, province string) ([]string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait canceled")
	}
	return r.client.ListStations(ctx, province)
}

// StationSeries fetches a station's series, respecting rate limits
func (r *RateLimitedClient) StationSeries(ctx context.Context, station string, term models.Term, pollutant models.Pollutant) ([]models.Reading, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait canceled")
	}
	return r.client.StationSeries(ctx, station, term, pollutant)
}

// Name returns the client name
func (r *RateLimitedClient) Name() string {
	return r.name
}

// Verify that the rate limited wrapper still satisfies both roles
var (
	_ StationDirectory = (*RateLimitedClient)(nil)
	_ SeriesSource     = (*RateLimitedClient)(nil)
	_ Client           = (*RateLimitedClient)(nil)
)
