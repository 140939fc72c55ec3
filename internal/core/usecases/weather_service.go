package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/ports"
	"github.com/samirrijal/safetyfan/internal/pkg/metrics"
)

// DefaultWeatherCacheTTL matches the upstream model refresh of roughly ten minutes.
const DefaultWeatherCacheTTL = 600

// WeatherService fetches surface weather and fills firing solutions with it.
type WeatherService struct {
	provider ports.WeatherProvider
	cache    ports.CacheService
	ttl      int
}

// NewWeatherService creates a new WeatherService. cache may be nil.
func NewWeatherService(provider ports.WeatherProvider, cache ports.CacheService, ttlSeconds int) *WeatherService {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultWeatherCacheTTL
	}
	return &WeatherService{provider: provider, cache: cache, ttl: ttlSeconds}
}

// Current returns the observation at (lat, lon). Nearby requests share a cache
// entry: coordinates are keyed at three decimals (~100 m).
func (s *WeatherService) Current(ctx context.Context, lat, lon float64) (*domain.WeatherObservation, error) {
	if !(domain.GeoPoint{Lat: lat, Lon: lon}).Valid() {
		return nil, fmt.Errorf("weather location (%v, %v): %w", lat, lon, domain.ErrInvalidInput)
	}

	cacheKey := fmt.Sprintf("weather:%.3f:%.3f", lat, lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var obs domain.WeatherObservation
			if err := json.Unmarshal(data, &obs); err == nil {
				metrics.CacheHits.WithLabelValues("weather").Inc()
				return &obs, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("weather").Inc()
	}

	obs, err := s.provider.Current(ctx, lat, lon)
	if err != nil {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	metrics.WeatherFetches.WithLabelValues("ok").Inc()

	if s.cache != nil {
		if data, err := json.Marshal(obs); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.ttl); err != nil {
				slog.WarnContext(ctx, "cache weather", "error", err)
			}
		}
	}
	return obs, nil
}

// ApplyTo overwrites the solution's wind with the current observation at its origin.
// Fields the provider did not report keep their previous values; MetScale is never touched.
func (s *WeatherService) ApplyTo(ctx context.Context, sol *domain.FiringSolution) (*domain.WeatherObservation, error) {
	obs, err := s.Current(ctx, sol.Origin.Lat, sol.Origin.Lon)
	if err != nil {
		return nil, err
	}
	if obs.WindDirectionDeg != nil {
		sol.Wind.DirectionDeg = *obs.WindDirectionDeg
	}
	if obs.WindSpeed != nil {
		sol.Wind.Speed = *obs.WindSpeed
	}
	return obs, nil
}
