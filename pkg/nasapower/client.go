// Package nasapower fetches daily agro-meteorological readings from the
// NASA POWER API (https://power.larc.nasa.gov).
package nasapower

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const (
	// DefaultBaseURL is the production NASA POWER endpoint
	DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

	// fillValue marks a missing measurement in POWER responses
	fillValue = -999.0

	// parameters requested for the agroclimatology community
	requestParameters = "T2M,T2M_MIN,T2M_MAX,RH2M,PRECTOTCORR,WS2M,ALLSKY_SFC_SW_DWN,GWETTOP"
)

// Config holds the NASA POWER client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is an HTTP client for the NASA POWER daily point API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a NASA POWER client. A zero Config uses the production
// endpoint with a 30 second timeout.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// DailyReading is one day of readings at a point. Metrics the API reports
// as fill values are nil.
type DailyReading struct {
	Date           time.Time
	Temperature    *float64
	TemperatureMin *float64
	TemperatureMax *float64
	Humidity       *float64
	Precipitation  *float64
	WindSpeed      *float64
	SolarRadiation *float64
	SoilMoisture   *float64
}

type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// FetchDaily retrieves daily readings for a coordinate over [start, end],
// both inclusive. Dates are interpreted as UTC calendar days.
func (c *Client) FetchDaily(ctx context.Context, latitude, longitude float64, start, end time.Time) ([]DailyReading, error) {
	query := url.Values{}
	query.Set("parameters", requestParameters)
	query.Set("community", "AG")
	query.Set("latitude", fmt.Sprintf("%.4f", latitude))
	query.Set("longitude", fmt.Sprintf("%.4f", longitude))
	query.Set("start", start.Format("20060102"))
	query.Set("end", end.Format("20060102"))
	query.Set("format", "JSON")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build NASA POWER request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("NASA POWER request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NASA POWER returned status %d", resp.StatusCode)
	}

	var payload powerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode NASA POWER response: %w", err)
	}

	return readingsFromParameters(payload.Properties.Parameter)
}

// readingsFromParameters pivots the per-parameter date maps into one reading
// per day, sorted by date
func readingsFromParameters(parameters map[string]map[string]float64) ([]DailyReading, error) {
	byDate := make(map[string]*DailyReading)

	assign := func(parameter string, reading *DailyReading, value float64) {
		v := value
		switch parameter {
		case "T2M":
			reading.Temperature = &v
		case "T2M_MIN":
			reading.TemperatureMin = &v
		case "T2M_MAX":
			reading.TemperatureMax = &v
		case "RH2M":
			reading.Humidity = &v
		case "PRECTOTCORR":
			reading.Precipitation = &v
		case "WS2M":
			reading.WindSpeed = &v
		case "ALLSKY_SFC_SW_DWN":
			reading.SolarRadiation = &v
		case "GWETTOP":
			reading.SoilMoisture = &v
		}
	}

	for parameter, values := range parameters {
		for dateKey, value := range values {
			if value == fillValue {
				continue
			}
			reading, ok := byDate[dateKey]
			if !ok {
				date, err := time.Parse("20060102", dateKey)
				if err != nil {
					return nil, fmt.Errorf("unexpected date key %q in NASA POWER response: %w", dateKey, err)
				}
				reading = &DailyReading{Date: date}
				byDate[dateKey] = reading
			}
			assign(parameter, reading, value)
		}
	}

	readings := make([]DailyReading, 0, len(byDate))
	for _, reading := range byDate {
		readings = append(readings, *reading)
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Date.Before(readings[j].Date)
	})

	return readings, nil
}
