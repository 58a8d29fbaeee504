package device

import (
	"time"

	"github.com/google/uuid"
)

// Device represents a physical smart-home unit whose status is managed by
// weather-driven scenario evaluation.
//
// Latitude and longitude locate the device for weather lookups. Status is a
// free-form label ("on", "off", "heating", ...) whose meaning belongs to the
// device type; Nimbus only requires it to be non-blank and tracks every
// change in the status history.
type Device struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DeviceTypeID string    `json:"device_type_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Status       string    `json:"status"`
	LastUpdated  time.Time `json:"last_updated"`
	CreatedAt    time.Time `json:"created_at"`
}

// DeepCopy returns a full copy of the device.
// Used by the registry to isolate cached entries from callers.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}
	copied := *d
	return &copied
}

// DeviceType categorises devices and anchors scenario rules.
// Names are unique across the system.
type DeviceType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusChange is one entry in the append-only audit trail of device
// status transitions.
//
// Cause is a human-readable summary: for scenario-driven transitions it is
// the rule rendered as "<condition> <operator> <value>", for manual changes
// it is "manual change". ScenarioID is nil for manual changes.
type StatusChange struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ChangedAt  time.Time `json:"changed_at"`
	Cause      string    `json:"cause"`
	ScenarioID *string   `json:"scenario_id,omitempty"`
}

// ManualCause is the cause recorded for operator-initiated status changes.
const ManualCause = "manual change"

// idPrefixLen is the number of UUID characters kept in generated IDs.
const idPrefixLen = 8

// GenerateID creates a new unique device ID.
func GenerateID() string {
	return "dev-" + uuid.NewString()[:idPrefixLen]
}

// GenerateTypeID creates a new unique device type ID.
func GenerateTypeID() string {
	return "dtp-" + uuid.NewString()[:idPrefixLen]
}

// GenerateChangeID creates a new unique status change ID.
func GenerateChangeID() string {
	return "chg-" + uuid.NewString()[:idPrefixLen]
}
