package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nimbushome/nimbus-core/internal/device"
	"github.com/nimbushome/nimbus-core/internal/scenario"
	"github.com/nimbushome/nimbus-core/internal/weather"
)

// DeviceSource enumerates the devices an evaluation run visits.
// Satisfied by *device.Registry.
type DeviceSource interface {
	ListDevices(ctx context.Context) ([]device.Device, error)
}

// WeatherSource fetches per-coordinate weather snapshots.
// Satisfied by *weather.Service and *weather.Client.
type WeatherSource interface {
	Snapshot(ctx context.Context, lat, lon float64, credential string) (*weather.Snapshot, error)
}

// Transitioner applies device status transitions.
// Satisfied by *device.StatusChanger.
type Transitioner interface {
	Apply(ctx context.Context, deviceID, newStatus, cause string, scenarioID *string) (*device.StatusChange, error)
}

// EventPublisher publishes run completion events to MQTT.
// Satisfied by *mqtt.Client; nil disables publishing.
type EventPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// TelemetryWriter records completed runs as time series.
// Satisfied by *influxdb.Client; nil disables telemetry.
type TelemetryWriter interface {
	WriteEvaluationRun(devices, transitions, skippedRules int, duration time.Duration)
}

// TopicBuilder builds the MQTT topic for run completion events.
type TopicBuilder interface {
	EvaluationRun() string
}

// Logger is a minimal logging interface for the orchestrator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// RunReport summarises a completed evaluation run.
type RunReport struct {
	Devices      int           `json:"devices"`
	Transitions  int           `json:"transitions"`
	SkippedRules int           `json:"skipped_rules"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// Orchestrator drives evaluation runs: one sequential pass over all
// devices, fetching weather and rules per device and applying matching
// rules as status transitions.
//
// The failure policy is asymmetric. A weather fetch, rule lookup, or
// transition failure aborts the whole run and surfaces to the caller.
// A rule that fails to evaluate (unknown kind, unknown operator,
// malformed literal) is logged and skipped; rules are configuration and
// one bad rule must not block the rest.
//
// Runs are serialised by an internal mutex: a scheduled run and a manual
// trigger never interleave within one process.
type Orchestrator struct {
	devices     DeviceSource
	rules       scenario.Lookup
	weather     WeatherSource
	transitions Transitioner
	publisher   EventPublisher
	topics      TopicBuilder
	telemetry   TelemetryWriter
	logger      Logger

	runMu sync.Mutex
}

// NewOrchestrator creates an orchestrator over the given collaborators.
func NewOrchestrator(devices DeviceSource, rules scenario.Lookup, weatherSrc WeatherSource, transitions Transitioner) *Orchestrator {
	return &Orchestrator{
		devices:     devices,
		rules:       rules,
		weather:     weatherSrc,
		transitions: transitions,
		logger:      noopLogger{},
	}
}

// SetLogger sets the orchestrator logger. A nil logger restores the no-op default.
func (o *Orchestrator) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	o.logger = logger
}

// SetPublisher enables MQTT publishing of run completion events.
func (o *Orchestrator) SetPublisher(publisher EventPublisher, topics TopicBuilder) {
	o.publisher = publisher
	o.topics = topics
}

// SetTelemetry enables time-series recording of completed runs.
func (o *Orchestrator) SetTelemetry(telemetry TelemetryWriter) {
	o.telemetry = telemetry
}

// Run performs one evaluation pass over all devices.
//
// The credential is forwarded to the weather and rule collaborators;
// both raw tokens and full "Bearer ..." header values are accepted.
// An empty device list succeeds trivially with zero side effects.
//
// Returns the run report, or the aborting error. Weather and rule lookup
// failures wrap both ErrRunFailed and the collaborator's own sentinel, and
// transition errors pass through unwrapped, so callers can test any abort
// with errors.Is against the originating package's sentinels.
func (o *Orchestrator) Run(ctx context.Context, credential string) (*RunReport, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	report := &RunReport{StartedAt: time.Now().UTC()}

	devices, err := o.devices.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing devices: %w", ErrRunFailed, err)
	}
	report.Devices = len(devices)

	for i := range devices {
		if err := o.evaluateDevice(ctx, &devices[i], credential, report); err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(report.StartedAt)
	o.logger.Info("evaluation run complete",
		"devices", report.Devices,
		"transitions", report.Transitions,
		"skipped_rules", report.SkippedRules,
		"duration", report.Duration)

	o.notify(report)
	return report, nil
}

// evaluateDevice fetches weather and rules for one device and applies
// every matching rule.
func (o *Orchestrator) evaluateDevice(ctx context.Context, dev *device.Device, credential string, report *RunReport) error {
	snap, err := o.weather.Snapshot(ctx, dev.Latitude, dev.Longitude, credential)
	if err != nil {
		return fmt.Errorf("%w: fetching weather for device %s: %w", ErrRunFailed, dev.ID, err)
	}

	rules, err := o.rules.RulesForDeviceType(ctx, dev.DeviceTypeID, credential)
	if err != nil {
		return fmt.Errorf("%w: fetching rules for device type %s: %w", ErrRunFailed, dev.DeviceTypeID, err)
	}

	for i := range rules {
		rule := &rules[i]

		matched, err := Evaluate(rule.WeatherCondition, rule.Operator, rule.ConditionValue, snap, time.Now().UTC())
		if err != nil {
			o.logger.Warn("skipping rule",
				"rule", rule.ID,
				"device", dev.ID,
				"error", err)
			report.SkippedRules++
			continue
		}
		if !matched {
			continue
		}

		scenarioID := rule.ID
		if _, err := o.transitions.Apply(ctx, dev.ID, rule.NewStatus, rule.Summary(), &scenarioID); err != nil {
			return fmt.Errorf("applying rule %s to device %s: %w", rule.ID, dev.ID, err)
		}
		report.Transitions++
	}
	return nil
}

// notify publishes the run report to MQTT and telemetry. Best effort:
// failures are logged, never surfaced.
func (o *Orchestrator) notify(report *RunReport) {
	if o.publisher != nil && o.topics != nil {
		payload, err := json.Marshal(report)
		if err == nil {
			if err := o.publisher.Publish(o.topics.EvaluationRun(), payload, 1, false); err != nil {
				o.logger.Warn("publishing run event failed", "error", err)
			}
		}
	}
	if o.telemetry != nil {
		o.telemetry.WriteEvaluationRun(report.Devices, report.Transitions, report.SkippedRules, report.Duration)
	}
}
