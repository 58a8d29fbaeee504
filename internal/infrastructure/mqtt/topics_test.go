package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"DeviceStatus", topics.DeviceStatus("dev-1a2b3c4d"), "nimbus/device/dev-1a2b3c4d/status"},
		{"DeviceStatusChange", topics.DeviceStatusChange("dev-1a2b3c4d"), "nimbus/device/dev-1a2b3c4d/status-change"},
		{"EvaluationRun", topics.EvaluationRun(), "nimbus/evaluation/run"},
		{"SystemStatus", topics.SystemStatus(), "nimbus/system/status"},
		{"AllDeviceStatuses", topics.AllDeviceStatuses(), "nimbus/device/+/status"},
		{"AllDeviceStatusChanges", topics.AllDeviceStatusChanges(), "nimbus/device/+/status-change"},
		{"AllTopics", topics.AllTopics(), "nimbus/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions_BrokerURL(t *testing.T) {
	cfg := testMQTTConfig()

	opts := buildClientOptions(cfg)
	servers := opts.Servers
	if len(servers) != 1 {
		t.Fatalf("server count = %d, want 1", len(servers))
	}
	if got := servers[0].String(); got != "tcp://localhost:1883" {
		t.Errorf("broker URL = %q, want %q", got, "tcp://localhost:1883")
	}
}

func TestBuildClientOptions_TLSScheme(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)
	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("scheme = %q, want %q", got, "ssl")
	}
}
