package influxdb

import (
	"context"
	"errors"
	"testing"

	"github.com/nimbushome/nimbus-core/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestWrite_NotConnectedIsNoOp(t *testing.T) {
	// A zero-value client is never connected; writes must be silently dropped
	// rather than panic, since telemetry is best effort.
	c := &Client{}

	c.WriteStatusChange("dev-1", "off", "on", "manual change")
	c.WriteWeatherObservation("51.5074,-0.1278", 21.5, 60, 3.2, 40)
	c.WriteEvaluationRun(10, 2, 1, 0)
	c.WritePoint("custom", nil, map[string]interface{}{"v": 1})
	c.Flush()

	if c.IsConnected() {
		t.Error("zero-value client reports connected")
	}
}

func TestHealthCheck_NotConnected(t *testing.T) {
	c := &Client{}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}
