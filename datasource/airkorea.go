package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"airquality-service/models"
)

const (
	airKoreaBaseURL = "https://apis.data.go.kr/B552584/ArpltnInforInqireSvc"

	// Upstream timestamps look like "2024-01-02 13:00". Midnight is reported
	// as hour 24, which does not parse; such rows are dropped.
	dataTimeLayout = "2006-01-02 15:04"

	// Only the first page is ever requested; provinces with more than
	// pageSize stations are truncated upstream.
	pageSize = 100
)

// AirKoreaClient implements both StationDirectory and SeriesSource against
// the AirKorea ArpltnInforInqireSvc endpoints.
type AirKoreaClient struct {
	serviceKey string
	baseURL    string
	httpClient *http.Client
}

// NewAirKoreaClient creates a new AirKorea API client
func NewAirKoreaClient(serviceKey string) *AirKoreaClient {
	return &AirKoreaClient{
		serviceKey: serviceKey,
		baseURL:    airKoreaBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the client name
func (c *AirKoreaClient) Name() string {
	return "AirKorea"
}

// baseParams returns the query parameters every endpoint requires
func (c *AirKoreaClient) baseParams() url.Values {
	params := url.Values{}
	params.Add("serviceKey", c.serviceKey)
	params.Add("returnType", "json")
	params.Add("numOfRows", strconv.Itoa(pageSize))
	params.Add("pageNo", "1")
	params.Add("ver", "1.3")
	return params
}

// ListStations returns the unique, sorted station names currently reporting
// in a province. A response without an items list yields an empty set; only
// transport failures and non-200 statuses are errors.
func (c *AirKoreaClient) ListStations(ctx context.Context, province string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/getCtprvnRltmMesureDnsty", c.baseURL)
	params := c.baseParams()
	params.Add("sidoName", province)

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, errors.Wrapf(err, "listing stations for province %s", province)
	}

	var payload struct {
		Response struct {
			Body struct {
				Items []struct {
					StationName string `json:"stationName"`
				} `json:"items"`
			} `json:"body"`
		} `json:"response"`
	}

	// A malformed body is treated the same as a missing items list
	if err := json.Unmarshal(body, &payload); err != nil {
		return []string{}, nil
	}

	seen := make(map[string]bool)
	stations := make([]string, 0, len(payload.Response.Body.Items))
	for _, item := range payload.Response.Body.Items {
		if item.StationName == "" || seen[item.StationName] {
			continue
		}
		seen[item.StationName] = true
		stations = append(stations, item.StationName)
	}
	sort.Strings(stations)

	return stations, nil
}

// StationSeries returns the parsed (timestamp, value) rows for one station
// over the given lookback term. Rows whose timestamp or value fail to parse
// are dropped; an empty or malformed payload yields a zero-row result.
func (c *AirKoreaClient) StationSeries(ctx context.Context, station string, term models.Term, pollutant models.Pollutant) ([]models.Reading, error) {
	endpoint := fmt.Sprintf("%s/getMsrstnAcctoRltmMesureDnsty", c.baseURL)
	params := c.baseParams()
	params.Add("stationName", station)
	params.Add("dataTerm", string(term))

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching series for station %s", station)
	}

	var parsed struct {
		Response struct {
			Body struct {
				Items []struct {
					DataTime string `json:"dataTime"`
					PM25     string `json:"pm25Value"`
					PM10     string `json:"pm10Value"`
					O3       string `json:"o3Value"`
					NO2      string `json:"no2Value"`
				} `json:"items"`
			} `json:"body"`
		} `json:"response"`
	}

	readings := make([]models.Reading, 0, pageSize)
	if err := json.Unmarshal(body, &parsed); err != nil {
		return readings, nil
	}

	for _, item := range parsed.Response.Body.Items {
		var raw string
		switch pollutant {
		case models.PM25:
			raw = item.PM25
		case models.PM10:
			raw = item.PM10
		case models.O3:
			raw = item.O3
		case models.NO2:
			raw = item.NO2
		default:
			continue
		}

		ts, err := time.Parse(dataTimeLayout, item.DataTime)
		if err != nil {
			continue
		}

		// Missing values arrive as "-" or ""
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		readings = append(readings, models.Reading{
			Station:   station,
			Timestamp: ts,
			Value:     v,
		})
	}

	return readings, nil
}

// get executes a GET request and returns the response body
func (c *AirKoreaClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Verify the client satisfies both upstream roles
var _ Client = (*AirKoreaClient)(nil)
