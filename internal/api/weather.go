package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nimbushome/nimbus-core/internal/weather"
)

// handleGetWeather returns the weather snapshot for a coordinate.
//
// The caller's bearer token is forwarded to the upstream weather service,
// so upstream authorisation failures surface as 401 here.
func (s *Server) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	if s.weather == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeBadGateway, "weather service not configured")
		return
	}

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		writeBadRequest(w, "lat must be a number")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		writeBadRequest(w, "lon must be a number")
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeBadRequest(w, "coordinate out of range")
		return
	}

	snap, err := s.weather.Snapshot(r.Context(), lat, lon, r.Header.Get("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrUnauthorized):
			writeUnauthorized(w, "weather service rejected the credential")
		case errors.Is(err, weather.ErrMalformedResponse):
			writeError(w, http.StatusBadGateway, ErrCodeBadGateway, "weather service returned malformed data")
		default:
			s.logger.Error("fetching weather", "lat", lat, "lon", lon, "error", err)
			writeError(w, http.StatusBadGateway, ErrCodeBadGateway, "weather service unavailable")
		}
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
