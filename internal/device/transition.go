package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// EventPublisher publishes status transition events to MQTT.
// Satisfied by *mqtt.Client; nil disables publishing.
type EventPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// TelemetryWriter records applied transitions as time series.
// Satisfied by *influxdb.Client; nil disables telemetry.
type TelemetryWriter interface {
	WriteStatusChange(deviceID, oldStatus, newStatus, cause string)
}

// TopicBuilder builds the MQTT topic for a device's transition events.
type TopicBuilder interface {
	DeviceStatusChange(deviceID string) string
}

// StatusChanger applies device status transitions.
//
// A transition updates the device row (status and last_updated) and appends
// a status change record in one SQLite transaction: both writes commit or
// neither does. The device cache is invalidated synchronously before Apply
// returns, so a subsequent read observes the committed status. MQTT and
// telemetry notifications happen after commit and are best effort.
type StatusChanger struct {
	db        *sql.DB
	devices   Repository
	changes   StatusChangeRepository
	registry  *Registry
	publisher EventPublisher
	topics    TopicBuilder
	telemetry TelemetryWriter
	logger    Logger
}

// NewStatusChanger creates a status changer.
// publisher, topics, and telemetry may be nil to disable the respective outputs.
func NewStatusChanger(db *sql.DB, devices Repository, changes StatusChangeRepository, registry *Registry) *StatusChanger {
	return &StatusChanger{
		db:       db,
		devices:  devices,
		changes:  changes,
		registry: registry,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the status changer.
func (s *StatusChanger) SetLogger(logger Logger) {
	s.logger = logger
}

// SetPublisher enables MQTT event publishing for applied transitions.
func (s *StatusChanger) SetPublisher(publisher EventPublisher, topics TopicBuilder) {
	s.publisher = publisher
	s.topics = topics
}

// SetTelemetry enables time-series recording of applied transitions.
func (s *StatusChanger) SetTelemetry(telemetry TelemetryWriter) {
	s.telemetry = telemetry
}

// Apply transitions a device to a new status and records the change.
//
// Returns:
//   - ErrDeviceNotFound if the device does not exist
//   - ErrNoOpTransition if the device already has the target status
//     (nothing is written, no audit entry is appended)
//   - ErrTransitionFailed if the transactional write could not commit
//     (neither the device nor the audit trail was modified)
//
// Parameters:
//   - deviceID: The device to transition
//   - newStatus: The target status (must be non-blank)
//   - cause: Human-readable reason, e.g. "temperature > 25.0" or "manual change"
//   - scenarioID: The triggering scenario, nil for manual changes
func (s *StatusChanger) Apply(ctx context.Context, deviceID, newStatus, cause string, scenarioID *string) (*StatusChange, error) {
	if err := ValidateStatus(newStatus); err != nil {
		return nil, err
	}

	current, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	// A transition must actually change the status
	if current.Status == newStatus {
		return nil, fmt.Errorf("%w: device %s already has status %q", ErrNoOpTransition, deviceID, newStatus)
	}

	now := time.Now().UTC()
	change := &StatusChange{
		ID:         GenerateChangeID(),
		DeviceID:   deviceID,
		OldStatus:  current.Status,
		NewStatus:  newStatus,
		ChangedAt:  now,
		Cause:      cause,
		ScenarioID: scenarioID,
	}

	if err := s.applyTx(ctx, change); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransitionFailed, err)
	}

	// Invalidate before returning so the next read sees the new status
	s.registry.Invalidate(deviceID)

	s.logger.Info("device status changed",
		"device_id", deviceID,
		"old_status", change.OldStatus,
		"new_status", change.NewStatus,
		"cause", cause,
	)

	s.notify(change)

	return change, nil
}

// applyTx performs the device update and audit append in one transaction.
func (s *StatusChanger) applyTx(ctx context.Context, change *StatusChange) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op if committed

	if err := s.devices.UpdateStatusTx(ctx, tx, change.DeviceID, change.NewStatus, change.ChangedAt); err != nil {
		return err
	}

	if err := s.changes.AppendTx(ctx, tx, change); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// notify publishes the transition to MQTT and telemetry. Best effort:
// failures are logged and never affect the committed transition.
func (s *StatusChanger) notify(change *StatusChange) {
	if s.publisher != nil && s.topics != nil {
		payload, err := json.Marshal(change)
		if err == nil {
			topic := s.topics.DeviceStatusChange(change.DeviceID)
			if err := s.publisher.Publish(topic, payload, 1, false); err != nil {
				s.logger.Warn("publishing status change event failed",
					"device_id", change.DeviceID,
					"error", err,
				)
			}
		}
	}

	if s.telemetry != nil {
		s.telemetry.WriteStatusChange(change.DeviceID, change.OldStatus, change.NewStatus, change.Cause)
	}
}
