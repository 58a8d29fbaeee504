package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteStatusChange records an applied device status transition.
//
// One point per transition, scenario-driven or manual. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: The device whose status changed
//   - oldStatus: Status before the transition
//   - newStatus: Status after the transition
//   - cause: Human-readable rule summary or "manual change"
func (c *Client) WriteStatusChange(deviceID, oldStatus, newStatus, cause string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"status_changes",
		map[string]string{
			"device_id":  deviceID,
			"new_status": newStatus,
		},
		map[string]interface{}{
			"old_status": oldStatus,
			"cause":      cause,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteWeatherObservation records a fetched weather snapshot for a coordinate.
//
// Coordinates are formatted by the caller (typically "51.5074,-0.1278") to
// keep tag cardinality bounded to device locations.
func (c *Client) WriteWeatherObservation(coordinate string, temperature, humidity, windSpeed, cloudiness float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"weather",
		map[string]string{
			"coordinate": coordinate,
		},
		map[string]interface{}{
			"temperature": temperature,
			"humidity":    humidity,
			"wind_speed":  windSpeed,
			"cloudiness":  cloudiness,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteEvaluationRun records summary statistics for one evaluation run.
//
// Parameters:
//   - devices: Number of devices visited
//   - transitions: Number of status transitions applied
//   - skippedRules: Number of rules skipped due to evaluation errors
//   - duration: Wall-clock duration of the run
func (c *Client) WriteEvaluationRun(devices, transitions, skippedRules int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"evaluation_runs",
		nil,
		map[string]interface{}{
			"devices":       devices,
			"transitions":   transitions,
			"skipped_rules": skippedRules,
			"duration_ms":   duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
