// Package weather fetches current-conditions snapshots for device
// coordinates.
//
// Client speaks the upstream provider's OpenWeatherMap-format JSON and
// forwards the caller's bearer credential per request. Service adds a
// short-TTL cache keyed by coordinate pair so an evaluation pass over
// co-located devices costs one upstream fetch.
package weather
