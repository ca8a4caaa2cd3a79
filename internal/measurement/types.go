package measurement

import (
	"context"
	"errors"
	"time"
)

// Measurement source values.
const (
	SourceMQTT = "mqtt"
	SourceAPI  = "api"
)

// Measurement represents a single reading taken by a sensor.
//
// Each reading is stored locally so the inventory keeps a queryable
// trail even when the time-series database is unavailable.
type Measurement struct {
	// ID is the unique identifier for the reading.
	ID string `json:"id"`

	// SensorID is the unique identifier of the originating sensor.
	SensorID string `json:"sensor_id"`

	// Quantity names what was measured (temperature, humidity, co2).
	Quantity string `json:"quantity"`

	// Value is the numeric reading.
	Value float64 `json:"value"`

	// Unit is the unit of the reading, if the sensor reports one.
	Unit string `json:"unit,omitempty"`

	// RecordedAt is the timestamp of the reading (UTC).
	RecordedAt time.Time `json:"recorded_at"`

	// CreatedAt is when the reading was persisted (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound is returned when a sensor has no recorded measurements.
var ErrNotFound = errors.New("measurement not found")

// Repository stores and retrieves sensor measurements.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// Record persists a measurement. The ID is generated if empty.
	Record(ctx context.Context, m *Measurement) error

	// Latest returns the most recent measurement for a sensor, or
	// ErrNotFound if none has been recorded.
	Latest(ctx context.Context, sensorID string) (*Measurement, error)

	// History returns recent measurements for a sensor, ordered newest
	// first. The limit is clamped by the implementation.
	History(ctx context.Context, sensorID string, limit int) ([]Measurement, error)

	// Prune deletes measurements older than the given duration and
	// returns the number of rows removed.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}
