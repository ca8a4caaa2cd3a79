package ingest

import (
	"context"
	"time"

	"github.com/telemetree/sensornet-core/internal/infrastructure/mqtt"
	"github.com/telemetree/sensornet-core/internal/inventory"
	"github.com/telemetree/sensornet-core/internal/measurement"
)

// handleTimeout bounds the database work done for a single MQTT message.
const handleTimeout = 5 * time.Second

// Subscriber is the interface the service needs from the MQTT client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Inventory is the subset of the inventory repository used for routing
// incoming traffic and refreshing liveness.
type Inventory interface {
	GetSensorBySerial(ctx context.Context, serial string) (*inventory.Sensor, error)
	MarkSensorSeen(ctx context.Context, id string, at time.Time) error
	GetGatewayBySlug(ctx context.Context, slug string) (*inventory.Gateway, error)
	MarkGatewaySeen(ctx context.Context, id string, at time.Time) error
}

// Mirror forwards accepted readings to the time-series database.
// Implementations must be non-blocking; ingest never waits on the mirror.
type Mirror interface {
	WriteMeasurement(serial, gatewaySlug, quantity, unit string, value float64, at time.Time)
	WriteGatewayStatus(gatewaySlug string, online bool, at time.Time)
}

// Broadcaster pushes events to connected WebSocket clients.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// Logger is the minimal logging interface the service needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Service routes broker traffic into the measurement store and inventory.
//
// Thread Safety: handlers run on MQTT client goroutines and only touch
// thread-safe collaborators; the Service itself holds no mutable state.
type Service struct {
	client    Subscriber
	inventory Inventory
	readings  measurement.Repository
	mirror    Mirror      // may be nil (InfluxDB disabled)
	hub       Broadcaster // may be nil (no WebSocket hub)
	logger    Logger
	topics    mqtt.Topics
	qos       byte
}

// New creates an ingest service. mirror and hub may be nil; logger may be
// nil, in which case logging is discarded.
func New(client Subscriber, inv Inventory, readings measurement.Repository, mirror Mirror, hub Broadcaster, logger Logger, qos byte) *Service {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		client:    client,
		inventory: inv,
		readings:  readings,
		mirror:    mirror,
		hub:       hub,
		logger:    logger,
		qos:       qos,
	}
}

// Start subscribes to the telemetry and heartbeat topic families.
//
// Subscriptions survive broker reconnects (the MQTT client restores them),
// so Start is called once at boot.
func (s *Service) Start() error {
	if err := s.client.Subscribe(s.topics.AllTelemetry(), s.qos, s.handleTelemetry); err != nil {
		return err
	}
	if err := s.client.Subscribe(s.topics.AllHeartbeats(), s.qos, s.handleHeartbeat); err != nil {
		return err
	}

	s.logger.Info("ingest started",
		"telemetry_topic", s.topics.AllTelemetry(),
		"heartbeat_topic", s.topics.AllHeartbeats(),
		"qos", s.qos,
	)
	return nil
}

// Stop removes the broker subscriptions.
func (s *Service) Stop() {
	if err := s.client.Unsubscribe(s.topics.AllTelemetry()); err != nil {
		s.logger.Warn("unsubscribe telemetry failed", "error", err)
	}
	if err := s.client.Unsubscribe(s.topics.AllHeartbeats()); err != nil {
		s.logger.Warn("unsubscribe heartbeat failed", "error", err)
	}
}
