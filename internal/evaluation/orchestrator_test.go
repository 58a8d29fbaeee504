package evaluation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nimbushome/nimbus-core/internal/device"
	"github.com/nimbushome/nimbus-core/internal/scenario"
	"github.com/nimbushome/nimbus-core/internal/weather"
)

type mockDevices struct {
	devices []device.Device
	err     error
}

func (m *mockDevices) ListDevices(context.Context) ([]device.Device, error) {
	return m.devices, m.err
}

type mockWeather struct {
	snapshots map[string]*weather.Snapshot
	failFor   map[string]error
	calls     []string
}

func keyFor(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

func (m *mockWeather) Snapshot(_ context.Context, lat, lon float64, _ string) (*weather.Snapshot, error) {
	key := keyFor(lat, lon)
	m.calls = append(m.calls, key)
	if err, ok := m.failFor[key]; ok {
		return nil, err
	}
	if snap, ok := m.snapshots[key]; ok {
		return snap, nil
	}
	return testSnapshot(), nil
}

type mockLookup struct {
	rules      map[string][]scenario.Rule
	err        error
	credential string
}

func (m *mockLookup) RulesForDeviceType(_ context.Context, deviceTypeID, credential string) ([]scenario.Rule, error) {
	m.credential = credential
	if m.err != nil {
		return nil, m.err
	}
	return m.rules[deviceTypeID], nil
}

type appliedTransition struct {
	deviceID   string
	newStatus  string
	cause      string
	scenarioID string
}

type mockTransitioner struct {
	applied []appliedTransition
	err     error
}

func (m *mockTransitioner) Apply(_ context.Context, deviceID, newStatus, cause string, scenarioID *string) (*device.StatusChange, error) {
	if m.err != nil {
		return nil, m.err
	}
	applied := appliedTransition{deviceID: deviceID, newStatus: newStatus, cause: cause}
	if scenarioID != nil {
		applied.scenarioID = *scenarioID
	}
	m.applied = append(m.applied, applied)
	return &device.StatusChange{DeviceID: deviceID, NewStatus: newStatus, Cause: cause}, nil
}

func testDevice(id, typeID string) device.Device {
	return device.Device{
		ID:           id,
		Name:         "device " + id,
		DeviceTypeID: typeID,
		Latitude:     40.7128,
		Longitude:    -74.0060,
		Status:       "OFF",
	}
}

func matchingRule(id, typeID string) scenario.Rule {
	return scenario.Rule{
		ID:               id,
		DeviceTypeID:     typeID,
		WeatherCondition: scenario.ConditionTemperature,
		ConditionValue:   "20",
		Operator:         scenario.OperatorGreater,
		NewStatus:        "ON",
	}
}

func TestOrchestrator_EmptyDeviceList(t *testing.T) {
	transitions := &mockTransitioner{}
	orc := NewOrchestrator(&mockDevices{}, &mockLookup{}, &mockWeather{}, transitions)

	report, err := orc.Run(context.Background(), "token")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Devices != 0 || report.Transitions != 0 || report.SkippedRules != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if len(transitions.applied) != 0 {
		t.Fatalf("expected no transitions, got %d", len(transitions.applied))
	}
}

func TestOrchestrator_AppliesMatchingRule(t *testing.T) {
	devices := &mockDevices{devices: []device.Device{testDevice("dev-00000001", "dtp-lamp0001")}}
	lookup := &mockLookup{rules: map[string][]scenario.Rule{
		"dtp-lamp0001": {matchingRule("scn-aaaa0001", "dtp-lamp0001")},
	}}
	transitions := &mockTransitioner{}

	orc := NewOrchestrator(devices, lookup, &mockWeather{}, transitions)

	report, err := orc.Run(context.Background(), "token")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Transitions != 1 {
		t.Fatalf("expected 1 transition, got %d", report.Transitions)
	}
	if len(transitions.applied) != 1 {
		t.Fatalf("expected 1 applied transition, got %d", len(transitions.applied))
	}

	got := transitions.applied[0]
	if got.deviceID != "dev-00000001" || got.newStatus != "ON" {
		t.Fatalf("unexpected transition: %+v", got)
	}
	if got.cause != "temperature > 20" {
		t.Fatalf("cause = %q, want %q", got.cause, "temperature > 20")
	}
	if got.scenarioID != "scn-aaaa0001" {
		t.Fatalf("scenarioID = %q, want scn-aaaa0001", got.scenarioID)
	}
	if lookup.credential != "token" {
		t.Fatalf("credential = %q, want token", lookup.credential)
	}
}

func TestOrchestrator_WeatherFailureAbortsRun(t *testing.T) {
	devA := testDevice("dev-aaaaaaaa", "dtp-lamp0001")
	devB := testDevice("dev-bbbbbbbb", "dtp-lamp0001")
	devB.Latitude = 51.5074
	devB.Longitude = -0.1278

	devices := &mockDevices{devices: []device.Device{devA, devB}}
	wx := &mockWeather{failFor: map[string]error{
		keyFor(devA.Latitude, devA.Longitude): weather.ErrFetchFailed,
	}}
	lookup := &mockLookup{rules: map[string][]scenario.Rule{
		"dtp-lamp0001": {matchingRule("scn-aaaa0001", "dtp-lamp0001")},
	}}
	transitions := &mockTransitioner{}

	orc := NewOrchestrator(devices, lookup, wx, transitions)

	_, err := orc.Run(context.Background(), "token")
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("expected ErrRunFailed, got %v", err)
	}
	if !errors.Is(err, weather.ErrFetchFailed) {
		t.Fatalf("weather sentinel lost through run wrapper: %v", err)
	}
	if len(transitions.applied) != 0 {
		t.Fatalf("expected no transitions after abort, got %d", len(transitions.applied))
	}
	if len(wx.calls) != 1 {
		t.Fatalf("expected run to stop at first device, weather fetched %d times", len(wx.calls))
	}
}

func TestOrchestrator_CollaboratorErrorKeepsIdentity(t *testing.T) {
	dev := testDevice("dev-00000001", "dtp-lamp0001")

	t.Run("weather unauthorized", func(t *testing.T) {
		devices := &mockDevices{devices: []device.Device{dev}}
		wx := &mockWeather{failFor: map[string]error{
			keyFor(dev.Latitude, dev.Longitude): weather.ErrUnauthorized,
		}}

		orc := NewOrchestrator(devices, &mockLookup{}, wx, &mockTransitioner{})

		_, err := orc.Run(context.Background(), "token")
		if !errors.Is(err, ErrRunFailed) {
			t.Fatalf("expected ErrRunFailed, got %v", err)
		}
		if !errors.Is(err, weather.ErrUnauthorized) {
			t.Fatalf("expected weather.ErrUnauthorized to survive wrapping, got %v", err)
		}
	})

	t.Run("rule lookup unauthorized", func(t *testing.T) {
		devices := &mockDevices{devices: []device.Device{dev}}
		lookup := &mockLookup{err: scenario.ErrUnauthorized}

		orc := NewOrchestrator(devices, lookup, &mockWeather{}, &mockTransitioner{})

		_, err := orc.Run(context.Background(), "token")
		if !errors.Is(err, ErrRunFailed) {
			t.Fatalf("expected ErrRunFailed, got %v", err)
		}
		if !errors.Is(err, scenario.ErrUnauthorized) {
			t.Fatalf("expected scenario.ErrUnauthorized to survive wrapping, got %v", err)
		}
	})
}

func TestOrchestrator_RuleLookupFailureAbortsRun(t *testing.T) {
	devices := &mockDevices{devices: []device.Device{testDevice("dev-00000001", "dtp-lamp0001")}}
	lookup := &mockLookup{err: scenario.ErrLookupFailed}
	transitions := &mockTransitioner{}

	orc := NewOrchestrator(devices, lookup, &mockWeather{}, transitions)

	_, err := orc.Run(context.Background(), "token")
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("expected ErrRunFailed, got %v", err)
	}
	if !errors.Is(err, scenario.ErrLookupFailed) {
		t.Fatalf("lookup sentinel lost through run wrapper: %v", err)
	}
	if len(transitions.applied) != 0 {
		t.Fatalf("expected no transitions, got %d", len(transitions.applied))
	}
}

func TestOrchestrator_BadRuleSkippedOthersApplied(t *testing.T) {
	badRule := scenario.Rule{
		ID:               "scn-badrule1",
		DeviceTypeID:     "dtp-lamp0001",
		WeatherCondition: scenario.ConditionTemperature,
		ConditionValue:   "20",
		Operator:         "invalid-operator",
		NewStatus:        "ON",
	}

	devices := &mockDevices{devices: []device.Device{testDevice("dev-00000001", "dtp-lamp0001")}}
	lookup := &mockLookup{rules: map[string][]scenario.Rule{
		"dtp-lamp0001": {badRule, matchingRule("scn-aaaa0001", "dtp-lamp0001")},
	}}
	transitions := &mockTransitioner{}

	orc := NewOrchestrator(devices, lookup, &mockWeather{}, transitions)

	report, err := orc.Run(context.Background(), "token")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.SkippedRules != 1 {
		t.Fatalf("expected 1 skipped rule, got %d", report.SkippedRules)
	}
	if report.Transitions != 1 {
		t.Fatalf("expected 1 transition, got %d", report.Transitions)
	}
	if transitions.applied[0].scenarioID != "scn-aaaa0001" {
		t.Fatalf("wrong rule applied: %+v", transitions.applied[0])
	}
}

func TestOrchestrator_TransitionErrorAbortsRun(t *testing.T) {
	devices := &mockDevices{devices: []device.Device{
		testDevice("dev-aaaaaaaa", "dtp-lamp0001"),
		testDevice("dev-bbbbbbbb", "dtp-lamp0001"),
	}}
	lookup := &mockLookup{rules: map[string][]scenario.Rule{
		"dtp-lamp0001": {matchingRule("scn-aaaa0001", "dtp-lamp0001")},
	}}
	transitions := &mockTransitioner{err: device.ErrNoOpTransition}

	orc := NewOrchestrator(devices, lookup, &mockWeather{}, transitions)

	_, err := orc.Run(context.Background(), "token")
	if !errors.Is(err, device.ErrNoOpTransition) {
		t.Fatalf("expected ErrNoOpTransition to propagate, got %v", err)
	}
}

func TestOrchestrator_NonMatchingRuleNoTransition(t *testing.T) {
	rule := matchingRule("scn-aaaa0001", "dtp-lamp0001")
	rule.ConditionValue = "30"

	devices := &mockDevices{devices: []device.Device{testDevice("dev-00000001", "dtp-lamp0001")}}
	lookup := &mockLookup{rules: map[string][]scenario.Rule{"dtp-lamp0001": {rule}}}
	transitions := &mockTransitioner{}

	orc := NewOrchestrator(devices, lookup, &mockWeather{}, transitions)

	report, err := orc.Run(context.Background(), "token")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Transitions != 0 || len(transitions.applied) != 0 {
		t.Fatalf("expected no transitions, got %+v", report)
	}
}
