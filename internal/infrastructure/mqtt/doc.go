// Package mqtt provides the MQTT messaging layer for Nimbus Core.
//
// Nimbus publishes weather-driven events so that dashboards and external
// integrations can react without polling the HTTP API:
//
//	nimbus/device/{id}/status         retained current status per device
//	nimbus/device/{id}/status-change  one event per applied transition
//	nimbus/evaluation/run             report per evaluation run
//	nimbus/system/status              service online/offline (LWT)
//
// The Client wraps eclipse/paho.mqtt.golang with automatic reconnection,
// subscription restoration, Last Will and Testament, and panic-safe
// message handlers. Publishing is best effort from the caller's point of
// view: a broker outage never blocks a status transition.
//
// Topic strings are always built through the Topics helpers so the
// namespace stays consistent across packages.
package mqtt
