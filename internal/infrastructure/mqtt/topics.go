package mqtt

import "fmt"

// Topic prefixes for the Nimbus MQTT namespace.
//
// All topics use the scheme: nimbus/{category}/{id}/{event}
const (
	// TopicPrefix is the base for all Nimbus topics.
	TopicPrefix = "nimbus"

	// TopicPrefixDevice is the base for device topics.
	TopicPrefixDevice = "nimbus/device"

	// TopicPrefixEvaluation is the base for evaluation run topics.
	TopicPrefixEvaluation = "nimbus/evaluation"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "nimbus/system"
)

// Topics provides builders for Nimbus MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	statusTopic := topics.DeviceStatus("dev-1a2b3c4d")
//	// Returns: "nimbus/device/dev-1a2b3c4d/status"
type Topics struct{}

// DeviceStatus returns the retained topic carrying a device's current status.
//
// Example: nimbus/device/dev-1a2b3c4d/status
func (Topics) DeviceStatus(deviceID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixDevice, deviceID)
}

// DeviceStatusChange returns the topic for device status transition events.
// One event is published per applied transition, scenario-driven or manual.
//
// Example: nimbus/device/dev-1a2b3c4d/status-change
func (Topics) DeviceStatusChange(deviceID string) string {
	return fmt.Sprintf("%s/%s/status-change", TopicPrefixDevice, deviceID)
}

// EvaluationRun returns the topic for evaluation run reports.
//
// Example: nimbus/evaluation/run
func (Topics) EvaluationRun() string {
	return fmt.Sprintf("%s/run", TopicPrefixEvaluation)
}

// SystemStatus returns the system status topic.
// Carries the online/offline state of the Nimbus Core service (retained).
//
// Example: nimbus/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceStatuses returns a pattern matching all device status topics.
//
// Pattern: nimbus/device/+/status
func (Topics) AllDeviceStatuses() string {
	return fmt.Sprintf("%s/+/status", TopicPrefixDevice)
}

// AllDeviceStatusChanges returns a pattern matching all transition events.
//
// Pattern: nimbus/device/+/status-change
func (Topics) AllDeviceStatusChanges() string {
	return fmt.Sprintf("%s/+/status-change", TopicPrefixDevice)
}

// AllTopics returns a pattern matching all Nimbus topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: nimbus/#
func (Topics) AllTopics() string {
	return "nimbus/#"
}
