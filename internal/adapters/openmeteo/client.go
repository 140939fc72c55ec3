// Package openmeteo fetches current surface weather from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const currentFields = "temperature_2m,wind_speed_10m,wind_direction_10m,pressure_msl"

// Client implements ports.WeatherProvider.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client. An empty baseURL selects the public endpoint.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type forecastResponse struct {
	Current struct {
		Time             string   `json:"time"`
		Temperature2m    *float64 `json:"temperature_2m"`
		WindSpeed10m     *float64 `json:"wind_speed_10m"`
		WindDirection10m *float64 `json:"wind_direction_10m"`
		PressureMSL      *float64 `json:"pressure_msl"`
	} `json:"current"`
}

// Current returns the latest observation at (lat, lon). Wind speed is requested in m/s.
// Fields the API omits stay nil.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*domain.WeatherObservation, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", "GMT")
	u := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, c.baseURL)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	obs := &domain.WeatherObservation{
		Location:         domain.GeoPoint{Lat: lat, Lon: lon},
		TemperatureC:     body.Current.Temperature2m,
		PressureHPa:      body.Current.PressureMSL,
		WindSpeed:        body.Current.WindSpeed10m,
		WindDirectionDeg: body.Current.WindDirection10m,
		ObservedAt:       time.Now().UTC(),
	}
	// Open-Meteo reports minutes without seconds or zone, e.g. "2024-05-01T12:15".
	if t, err := time.Parse("2006-01-02T15:04", body.Current.Time); err == nil {
		obs.ObservedAt = t.UTC()
	}
	return obs, nil
}
