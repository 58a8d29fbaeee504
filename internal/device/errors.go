package device

import "errors"

// Sentinel errors for device operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDeviceNotFound is returned when a device lookup finds no match.
	ErrDeviceNotFound = errors.New("device: device not found")

	// ErrDeviceExists is returned when creating a device with a duplicate ID.
	ErrDeviceExists = errors.New("device: device already exists")

	// ErrTypeNotFound is returned when a device type lookup finds no match.
	ErrTypeNotFound = errors.New("device: device type not found")

	// ErrTypeNameExists is returned when a device type name is already taken.
	ErrTypeNameExists = errors.New("device: device type name already exists")

	// ErrTypeInUse is returned when deleting a device type that devices
	// or scenarios still reference.
	ErrTypeInUse = errors.New("device: device type is referenced by devices")

	// ErrNoOpTransition is returned when a status transition targets the
	// status the device already has. Nothing is written and no audit entry
	// is appended.
	ErrNoOpTransition = errors.New("device: status unchanged")

	// ErrTransitionFailed is returned when the transactional status update
	// could not be committed. Neither the device row nor the audit trail
	// was modified.
	ErrTransitionFailed = errors.New("device: status transition failed")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid device")

	// ErrInvalidType is returned when device type validation fails.
	ErrInvalidType = errors.New("device: invalid device type")
)
