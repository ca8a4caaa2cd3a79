package mqtt

import (
	"errors"
	"testing"
)

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"telemetry", topics.Telemetry("plant-north", "TMP-0001"), "sensornet/telemetry/plant-north/TMP-0001"},
		{"heartbeat", topics.Heartbeat("plant-north"), "sensornet/heartbeat/plant-north"},
		{"system status", topics.SystemStatus(), "sensornet/system/status"},
		{"all telemetry", topics.AllTelemetry(), "sensornet/telemetry/+/+"},
		{"all heartbeats", topics.AllHeartbeats(), "sensornet/heartbeat/+"},
		{"all topics", topics.AllTopics(), "sensornet/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestParseTelemetryTopic(t *testing.T) {
	gateway, serial, err := ParseTelemetryTopic("sensornet/telemetry/plant-north/TMP-0001")
	if err != nil {
		t.Fatalf("ParseTelemetryTopic() error = %v", err)
	}
	if gateway != "plant-north" || serial != "TMP-0001" {
		t.Errorf("ParseTelemetryTopic() = %q, %q", gateway, serial)
	}

	invalid := []string{
		"",
		"sensornet/telemetry/plant-north",
		"sensornet/heartbeat/plant-north",
		"other/telemetry/plant-north/TMP-0001",
		"sensornet/telemetry//TMP-0001",
		"sensornet/telemetry/plant-north/TMP-0001/extra",
	}
	for _, topic := range invalid {
		if _, _, err := ParseTelemetryTopic(topic); !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("ParseTelemetryTopic(%q) error = %v, want ErrInvalidTopic", topic, err)
		}
	}
}

func TestParseHeartbeatTopic(t *testing.T) {
	gateway, err := ParseHeartbeatTopic("sensornet/heartbeat/plant-north")
	if err != nil {
		t.Fatalf("ParseHeartbeatTopic() error = %v", err)
	}
	if gateway != "plant-north" {
		t.Errorf("ParseHeartbeatTopic() = %q", gateway)
	}

	invalid := []string{
		"",
		"sensornet/heartbeat",
		"sensornet/telemetry/plant-north/TMP-0001",
		"sensornet/heartbeat/",
	}
	for _, topic := range invalid {
		if _, err := ParseHeartbeatTopic(topic); !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("ParseHeartbeatTopic(%q) error = %v, want ErrInvalidTopic", topic, err)
		}
	}
}
