// Package influxdb provides time-series telemetry for Nimbus Core.
//
// Three measurements are written:
//
//	status_changes   one point per applied device status transition
//	weather          one point per fetched weather observation
//	evaluation_runs  summary statistics per evaluation run
//
// Writes are non-blocking and batched by the underlying
// influxdb-client-go WriteAPI; async write failures surface through the
// SetOnError callback. Telemetry is optional: when disabled in
// configuration, Connect returns ErrDisabled and callers run without it.
package influxdb
