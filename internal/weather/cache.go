package weather

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Fetcher retrieves a weather snapshot for a coordinate.
// Satisfied by *Client.
type Fetcher interface {
	Snapshot(ctx context.Context, lat, lon float64, credential string) (*Snapshot, error)
}

// TelemetryWriter records fetched observations as time series.
// Satisfied by *influxdb.Client; nil disables recording.
type TelemetryWriter interface {
	WriteWeatherObservation(coordinate string, temperature, humidity, windSpeed, cloudiness float64)
}

// Service wraps a Fetcher with a short-TTL per-coordinate cache.
//
// Devices sharing a location (same lat/lon pair) reuse one upstream fetch
// within the TTL window, which keeps a full evaluation pass from hammering
// the weather provider. Entries are keyed by the exact coordinate pair;
// nearby-but-different coordinates fetch independently.
//
// All methods are safe for concurrent use.
type Service struct {
	fetcher   Fetcher
	ttl       time.Duration
	telemetry TelemetryWriter

	cache   map[string]cacheEntry
	cacheMu sync.RWMutex
}

type cacheEntry struct {
	snapshot *Snapshot
	storedAt time.Time
}

// NewService creates a caching weather service.
// ttl <= 0 disables caching entirely.
func NewService(fetcher Fetcher, ttl time.Duration) *Service {
	return &Service{
		fetcher: fetcher,
		ttl:     ttl,
		cache:   make(map[string]cacheEntry),
	}
}

// SetTelemetry enables time-series recording of fetched observations.
func (s *Service) SetTelemetry(telemetry TelemetryWriter) {
	s.telemetry = telemetry
}

// Snapshot returns current conditions for a coordinate, served from cache
// when a fresh entry exists. Only upstream fetches are recorded as
// telemetry; cache hits are not new observations.
func (s *Service) Snapshot(ctx context.Context, lat, lon float64, credential string) (*Snapshot, error) {
	key := coordinateKey(lat, lon)

	if s.ttl > 0 {
		s.cacheMu.RLock()
		entry, ok := s.cache[key]
		s.cacheMu.RUnlock()

		if ok && time.Since(entry.storedAt) < s.ttl {
			return entry.snapshot, nil
		}
	}

	snapshot, err := s.fetcher.Snapshot(ctx, lat, lon, credential)
	if err != nil {
		return nil, err
	}

	if s.telemetry != nil {
		s.telemetry.WriteWeatherObservation(key,
			snapshot.Temperature, float64(snapshot.Humidity),
			snapshot.WindSpeed, float64(snapshot.Cloudiness))
	}

	if s.ttl > 0 {
		s.cacheMu.Lock()
		s.cache[key] = cacheEntry{snapshot: snapshot, storedAt: time.Now()}
		s.cacheMu.Unlock()
	}

	return snapshot, nil
}

// Purge drops all cached entries.
func (s *Service) Purge() {
	s.cacheMu.Lock()
	s.cache = make(map[string]cacheEntry)
	s.cacheMu.Unlock()
}

// coordinateKey builds the cache key for a coordinate pair.
func coordinateKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}
