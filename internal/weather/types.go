package weather

import "time"

// Snapshot is one weather observation for a coordinate.
//
// Fields mirror the upstream provider's current-conditions payload:
// scalar readings plus the list of condition codes and descriptions
// active at observation time (a location can have several, e.g. rain
// and mist simultaneously).
type Snapshot struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Temperature in degrees Celsius.
	Temperature float64 `json:"temperature"`

	// Humidity in percent (0-100).
	Humidity int `json:"humidity"`

	// WindSpeed in metres per second.
	WindSpeed float64 `json:"wind_speed"`

	// Cloudiness in percent (0-100).
	Cloudiness int `json:"cloudiness"`

	// Sunrise and Sunset are the observed times for the location's day.
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`

	// WeatherIDs are the active condition codes (e.g. 500 = light rain).
	WeatherIDs []int `json:"weather_ids"`

	// WeatherDescriptions are the active condition descriptions
	// (e.g. "light rain", "mist").
	WeatherDescriptions []string `json:"weather_descriptions"`

	// FetchedAt is when this snapshot was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}
