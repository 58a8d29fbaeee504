package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// bearerPrefix is the scheme prefix stripped from forwarded credentials.
const bearerPrefix = "Bearer "

// Logger defines the logging interface used by the weather client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Client fetches weather snapshots from the upstream weather service.
//
// The upstream speaks the OpenWeatherMap current-conditions format and
// authenticates requests with a bearer token. The caller's credential is
// threaded through explicitly per request rather than held by the client,
// so one client instance serves all callers.
type Client struct {
	baseURL string
	http    *http.Client
	logger  Logger
}

// NewClient creates a weather client for the given base URL.
//
// Parameters:
//   - baseURL: Upstream endpoint, e.g. "http://weather.local/api/v1/weather"
//   - timeout: Per-request timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// Snapshot fetches current weather conditions for a coordinate.
//
// The credential is the caller's Authorization header value; the scheme
// prefix is stripped and the bare token forwarded upstream.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - lat, lon: Coordinate to observe
//   - credential: Bearer credential to forward (with or without "Bearer " prefix)
//
// Returns:
//   - *Snapshot: Parsed observation
//   - error: ErrUnauthorized, ErrFetchFailed, or ErrMalformedResponse
func (c *Client) Snapshot(ctx context.Context, lat, lon float64, credential string) (*Snapshot, error) {
	reqURL := fmt.Sprintf("%s?lat=%s&lon=%s",
		c.baseURL,
		url.QueryEscape(strconv.FormatFloat(lat, 'f', -1, 64)),
		url.QueryEscape(strconv.FormatFloat(lon, 'f', -1, 64)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrFetchFailed, err)
	}

	token := strings.TrimPrefix(credential, bearerPrefix)
	req.Header.Set("Authorization", bearerPrefix+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: upstream returned %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: upstream returned %d", ErrFetchFailed, resp.StatusCode)
	}

	var payload conditionsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	snapshot := payload.toSnapshot()
	c.logger.Debug("weather snapshot fetched",
		"lat", lat,
		"lon", lon,
		"temperature", snapshot.Temperature,
		"conditions", len(snapshot.WeatherIDs),
	)
	return snapshot, nil
}

// conditionsPayload is the upstream current-conditions JSON shape
// (OpenWeatherMap format).
type conditionsPayload struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// toSnapshot converts the wire payload into a Snapshot.
func (p *conditionsPayload) toSnapshot() *Snapshot {
	s := &Snapshot{
		Latitude:    p.Coord.Lat,
		Longitude:   p.Coord.Lon,
		Temperature: p.Main.Temp,
		Humidity:    p.Main.Humidity,
		WindSpeed:   p.Wind.Speed,
		Cloudiness:  p.Clouds.All,
		Sunrise:     time.Unix(p.Sys.Sunrise, 0).UTC(),
		Sunset:      time.Unix(p.Sys.Sunset, 0).UTC(),
		FetchedAt:   time.Now().UTC(),
	}

	for _, w := range p.Weather {
		s.WeatherIDs = append(s.WeatherIDs, w.ID)
		s.WeatherDescriptions = append(s.WeatherDescriptions, w.Description)
	}
	return s
}
