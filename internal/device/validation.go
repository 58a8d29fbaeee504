package device

import (
	"fmt"
	"strings"
)

// Coordinate bounds (WGS 84).
const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// maxNameLength is the maximum allowed length for device and type names.
const maxNameLength = 128

// ValidateDevice checks that a device is well-formed before persistence.
//
// Rules:
//   - Name must be non-blank and at most 128 characters
//   - DeviceTypeID must be set
//   - Latitude must be within [-90, 90]
//   - Longitude must be within [-180, 180]
//   - Status must be non-blank
func ValidateDevice(d *Device) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDevice)
	}
	if len(d.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDevice, maxNameLength)
	}
	if d.DeviceTypeID == "" {
		return fmt.Errorf("%w: device_type_id is required", ErrInvalidDevice)
	}
	if d.Latitude < minLatitude || d.Latitude > maxLatitude {
		return fmt.Errorf("%w: latitude %.4f out of range [%.0f, %.0f]", ErrInvalidDevice, d.Latitude, minLatitude, maxLatitude)
	}
	if d.Longitude < minLongitude || d.Longitude > maxLongitude {
		return fmt.Errorf("%w: longitude %.4f out of range [%.0f, %.0f]", ErrInvalidDevice, d.Longitude, minLongitude, maxLongitude)
	}
	if strings.TrimSpace(d.Status) == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidDevice)
	}
	return nil
}

// ValidateType checks that a device type is well-formed before persistence.
func ValidateType(t *DeviceType) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidType)
	}
	if len(t.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidType, maxNameLength)
	}
	return nil
}

// ValidateStatus checks a target status for a transition request.
func ValidateStatus(status string) error {
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidDevice)
	}
	return nil
}
