package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/telemetree/sensornet-core/internal/infrastructure/mqtt"
	"github.com/telemetree/sensornet-core/internal/inventory"
	"github.com/telemetree/sensornet-core/internal/measurement"
)

// TelemetryPayload is the JSON body published by gateways on
// sensornet/telemetry/{gateway}/{serial}.
type TelemetryPayload struct {
	// Quantity names what was measured (temperature, humidity, co2).
	Quantity string `json:"quantity"`

	// Value is the numeric reading.
	Value float64 `json:"value"`

	// Unit overrides the sensor's configured unit when set.
	Unit string `json:"unit,omitempty"`

	// RecordedAt is when the gateway took the reading. Zero means the
	// reading is stamped on arrival.
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// Validate checks the payload for values the store cannot hold.
func (p *TelemetryPayload) Validate() error {
	if p.Quantity == "" {
		return errors.New("quantity is required")
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return fmt.Errorf("value %v is not a finite number", p.Value)
	}
	return nil
}

// handleTelemetry processes one sensor reading from the broker.
//
// Unknown serials and stale topics are dropped with a warning rather than
// returned as errors: a misconfigured gateway retrying at QoS 1 would
// otherwise flood the error log.
func (s *Service) handleTelemetry(topic string, raw []byte) error {
	gatewaySlug, serial, err := mqtt.ParseTelemetryTopic(topic)
	if err != nil {
		s.logger.Warn("dropping telemetry on malformed topic", "topic", topic, "error", err)
		return nil
	}

	var payload TelemetryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("telemetry payload from %s: %w", topic, err)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("telemetry payload from %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	sensor, err := s.inventory.GetSensorBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, inventory.ErrSensorNotFound) {
			s.logger.Warn("dropping reading from unknown sensor",
				"serial", serial,
				"gateway", gatewaySlug,
			)
			return nil
		}
		return fmt.Errorf("looking up sensor %q: %w", serial, err)
	}

	recordedAt := payload.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	unit := payload.Unit
	if unit == "" && sensor.Unit != nil {
		unit = *sensor.Unit
	}

	m := &measurement.Measurement{
		SensorID:   sensor.ID,
		Quantity:   payload.Quantity,
		Value:      payload.Value,
		Unit:       unit,
		RecordedAt: recordedAt,
	}
	if err := s.readings.Record(ctx, m); err != nil {
		return fmt.Errorf("recording reading for sensor %q: %w", sensor.ID, err)
	}

	if err := s.inventory.MarkSensorSeen(ctx, sensor.ID, recordedAt); err != nil {
		s.logger.Warn("updating sensor last-seen failed", "sensor_id", sensor.ID, "error", err)
	}

	if s.mirror != nil {
		s.mirror.WriteMeasurement(serial, gatewaySlug, m.Quantity, m.Unit, m.Value, recordedAt)
	}

	if s.hub != nil {
		s.hub.Broadcast("measurement.recorded", map[string]any{
			"sensor_id":   sensor.ID,
			"serial":      serial,
			"gateway":     gatewaySlug,
			"quantity":    m.Quantity,
			"value":       m.Value,
			"unit":        m.Unit,
			"recorded_at": recordedAt.Format(time.RFC3339),
		})
	}

	s.logger.Debug("reading recorded",
		"sensor_id", sensor.ID,
		"quantity", m.Quantity,
		"value", m.Value,
	)
	return nil
}

// handleHeartbeat refreshes the gateway's last-seen timestamp.
func (s *Service) handleHeartbeat(topic string, _ []byte) error {
	gatewaySlug, err := mqtt.ParseHeartbeatTopic(topic)
	if err != nil {
		s.logger.Warn("dropping heartbeat on malformed topic", "topic", topic, "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	gw, err := s.inventory.GetGatewayBySlug(ctx, gatewaySlug)
	if err != nil {
		if errors.Is(err, inventory.ErrGatewayNotFound) {
			s.logger.Warn("dropping heartbeat from unknown gateway", "gateway", gatewaySlug)
			return nil
		}
		return fmt.Errorf("looking up gateway %q: %w", gatewaySlug, err)
	}

	now := time.Now().UTC()
	if err := s.inventory.MarkGatewaySeen(ctx, gw.ID, now); err != nil {
		return fmt.Errorf("updating gateway last-seen for %q: %w", gw.ID, err)
	}

	if s.mirror != nil {
		s.mirror.WriteGatewayStatus(gatewaySlug, true, now)
	}

	if s.hub != nil {
		s.hub.Broadcast("gateway.heartbeat", map[string]any{
			"gateway_id": gw.ID,
			"gateway":    gatewaySlug,
			"seen_at":    now.Format(time.RFC3339),
		})
	}

	return nil
}
