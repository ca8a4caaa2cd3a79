package measurement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite measurement repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts a new measurement row.
func (r *SQLiteRepository) Record(ctx context.Context, m *Measurement) error {
	if m.SensorID == "" {
		return fmt.Errorf("sensor id is required")
	}
	if m.Quantity == "" {
		return fmt.Errorf("quantity is required")
	}
	if m.ID == "" {
		m.ID = "mea-" + uuid.NewString()[:8]
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO measurements (id, sensor_id, quantity, value, unit, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SensorID, m.Quantity, m.Value, nullStr(m.Unit),
		m.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting measurement: %w", err)
	}
	return nil
}

// Latest returns the most recent measurement for a sensor.
func (r *SQLiteRepository) Latest(ctx context.Context, sensorID string) (*Measurement, error) {
	if sensorID == "" {
		return nil, fmt.Errorf("sensor id is required")
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, sensor_id, quantity, value, unit, recorded_at, created_at
		 FROM measurements
		 WHERE sensor_id = ?
		 ORDER BY recorded_at DESC
		 LIMIT 1`,
		sensorID,
	)

	m, err := scanMeasurement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// History returns recent measurements for a sensor, newest first.
// The limit defaults to 50 and is capped at 500.
func (r *SQLiteRepository) History(ctx context.Context, sensorID string, limit int) ([]Measurement, error) {
	if sensorID == "" {
		return nil, fmt.Errorf("sensor id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sensor_id, quantity, value, unit, recorded_at, created_at
		 FROM measurements
		 WHERE sensor_id = ?
		 ORDER BY recorded_at DESC
		 LIMIT ?`,
		sensorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	measurements := make([]Measurement, 0, limit)
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		measurements = append(measurements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating measurements: %w", err)
	}

	return measurements, nil
}

// Prune deletes measurements with a recorded_at older than now minus
// the given duration.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM measurements WHERE recorded_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting measurements: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanMeasurement scans a measurement from a Row or Rows cursor.
func scanMeasurement(s rowScanner) (*Measurement, error) {
	var m Measurement
	var unit sql.NullString
	var recordedAt, createdAt string

	err := s.Scan(&m.ID, &m.SensorID, &m.Quantity, &m.Value, &unit, &recordedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning measurement: %w", err)
	}

	if unit.Valid {
		m.Unit = unit.String
	}
	m.RecordedAt, err = parseTimestamp(recordedAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	timestamp, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
	}
	return timestamp, nil
}
