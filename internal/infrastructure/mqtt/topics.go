package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the Sensornet MQTT namespace.
//
// Gateway topics use the scheme: sensornet/{category}/{gateway_slug}[/{serial}]
const (
	// TopicPrefix is the base for all Sensornet topics.
	TopicPrefix = "sensornet"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sensornet/system"
)

// Topics provides builders for Sensornet MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	t := topics.Telemetry("plant-north", "TMP-0001")
//	// Returns: "sensornet/telemetry/plant-north/TMP-0001"
type Topics struct{}

// Telemetry returns the topic a gateway publishes sensor readings on.
//
// Example: sensornet/telemetry/plant-north/TMP-0001
func (Topics) Telemetry(gatewaySlug, serial string) string {
	return fmt.Sprintf("%s/telemetry/%s/%s", TopicPrefix, gatewaySlug, serial)
}

// Heartbeat returns the topic a gateway publishes liveness on.
//
// Example: sensornet/heartbeat/plant-north
func (Topics) Heartbeat(gatewaySlug string) string {
	return fmt.Sprintf("%s/heartbeat/%s", TopicPrefix, gatewaySlug)
}

// SystemStatus returns the Core status topic, also used for the LWT.
//
// Example: sensornet/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllTelemetry returns a pattern matching telemetry from every gateway.
//
// Pattern: sensornet/telemetry/+/+
func (Topics) AllTelemetry() string {
	return fmt.Sprintf("%s/telemetry/+/+", TopicPrefix)
}

// AllHeartbeats returns a pattern matching heartbeats from every gateway.
//
// Pattern: sensornet/heartbeat/+
func (Topics) AllHeartbeats() string {
	return fmt.Sprintf("%s/heartbeat/+", TopicPrefix)
}

// AllTopics returns a pattern matching all Sensornet topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: sensornet/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// ParseTelemetryTopic extracts the gateway slug and sensor serial from a
// telemetry topic. Returns ErrInvalidTopic for anything else.
func ParseTelemetryTopic(topic string) (gatewaySlug, serial string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || parts[1] != "telemetry" || parts[2] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("%w: %q is not a telemetry topic", ErrInvalidTopic, topic)
	}
	return parts[2], parts[3], nil
}

// ParseHeartbeatTopic extracts the gateway slug from a heartbeat topic.
func ParseHeartbeatTopic(topic string) (gatewaySlug string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != TopicPrefix || parts[1] != "heartbeat" || parts[2] == "" {
		return "", fmt.Errorf("%w: %q is not a heartbeat topic", ErrInvalidTopic, topic)
	}
	return parts[2], nil
}
