package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sensorColumns = "id, network_id, name, serial, kind, unit, status, last_seen_at, created_at, updated_at"

// CreateSensor inserts a new sensor. The ID is generated if empty and
// the status defaults to unknown. The referenced network must exist.
func (r *SQLiteRepository) CreateSensor(ctx context.Context, s *Sensor) error {
	if s.ID == "" {
		s.ID = "sen-" + uuid.NewString()[:8]
	}
	if s.Status == "" {
		s.Status = StatusUnknown
	}

	const query = `INSERT INTO sensors (id, network_id, name, serial, kind, unit, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.NetworkID, s.Name, s.Serial, s.Kind, nullStr(s.Unit), string(s.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSerialExists
		}
		if isForeignKeyViolation(err) {
			return ErrNetworkNotFound
		}
		return fmt.Errorf("inserting sensor %s: %w", s.ID, err)
	}
	return nil
}

// ListSensors returns all sensors ordered by name.
func (r *SQLiteRepository) ListSensors(ctx context.Context) ([]Sensor, error) {
	const query = `SELECT ` + sensorColumns + ` FROM sensors ORDER BY name`
	return r.querySensors(ctx, query)
}

// ListSensorsByNetwork returns sensors on a specific network.
func (r *SQLiteRepository) ListSensorsByNetwork(ctx context.Context, networkID string) ([]Sensor, error) {
	const query = `SELECT ` + sensorColumns + ` FROM sensors WHERE network_id = ? ORDER BY name`
	return r.querySensors(ctx, query, networkID)
}

// GetSensor returns a single sensor by ID.
func (r *SQLiteRepository) GetSensor(ctx context.Context, id string) (*Sensor, error) {
	return r.getSensor(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE id = ?`, id)
}

// GetSensorBySerial returns a single sensor by its serial number.
func (r *SQLiteRepository) GetSensorBySerial(ctx context.Context, serial string) (*Sensor, error) {
	return r.getSensor(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE serial = ?`, serial)
}

func (r *SQLiteRepository) getSensor(ctx context.Context, query string, arg any) (*Sensor, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	s, err := scanSensor(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSensorNotFound
		}
		return nil, err
	}
	return s, nil
}

// UpdateSensor updates a sensor's mutable fields.
func (r *SQLiteRepository) UpdateSensor(ctx context.Context, s *Sensor) error {
	const query = `UPDATE sensors SET name = ?, serial = ?, kind = ?, unit = ?, status = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		s.Name, s.Serial, s.Kind, nullStr(s.Unit), string(s.Status), s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSerialExists
		}
		return fmt.Errorf("updating sensor %s: %w", s.ID, err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if rows == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// DeleteSensor removes a sensor by ID. Its measurements cascade.
func (r *SQLiteRepository) DeleteSensor(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sensors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting sensor %s: %w", id, err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if rows == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// MarkSensorSeen records a reading arrival: status goes online and
// last_seen_at advances.
func (r *SQLiteRepository) MarkSensorSeen(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE sensors SET status = ?, last_seen_at = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		string(StatusOnline), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("marking sensor %s seen: %w", id, err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if rows == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// querySensors executes a query and returns a slice of Sensor.
func (r *SQLiteRepository) querySensors(ctx context.Context, query string, args ...any) ([]Sensor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	var sensors []Sensor
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sensor row: %w", err)
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensor rows: %w", err)
	}
	if sensors == nil {
		sensors = []Sensor{}
	}
	return sensors, nil
}

// scanSensor scans a sensor from a Row or Rows cursor.
func scanSensor(sc rowScanner) (*Sensor, error) {
	var s Sensor
	var unit, lastSeenAt sql.NullString
	var status string
	var createdAt, updatedAt string

	err := sc.Scan(&s.ID, &s.NetworkID, &s.Name, &s.Serial, &s.Kind,
		&unit, &status, &lastSeenAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s.Status = Status(status)
	if unit.Valid {
		s.Unit = &unit.String
	}
	if lastSeenAt.Valid {
		t := parseTime(lastSeenAt.String)
		s.LastSeenAt = &t
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}
