package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for inventory persistence operations.
type Repository interface {
	CreateGateway(ctx context.Context, gw *Gateway) error
	ListGateways(ctx context.Context) ([]Gateway, error)
	GetGateway(ctx context.Context, id string) (*Gateway, error)
	GetGatewayBySlug(ctx context.Context, slug string) (*Gateway, error)
	UpdateGateway(ctx context.Context, gw *Gateway) error
	DeleteGateway(ctx context.Context, id string) error
	MarkGatewaySeen(ctx context.Context, id string, at time.Time) error

	CreateNetwork(ctx context.Context, n *Network) error
	ListNetworks(ctx context.Context) ([]Network, error)
	ListNetworksByGateway(ctx context.Context, gatewayID string) ([]Network, error)
	GetNetwork(ctx context.Context, id string) (*Network, error)
	UpdateNetwork(ctx context.Context, n *Network) error
	DeleteNetwork(ctx context.Context, id string) error

	CreateSensor(ctx context.Context, s *Sensor) error
	ListSensors(ctx context.Context) ([]Sensor, error)
	ListSensorsByNetwork(ctx context.Context, networkID string) ([]Sensor, error)
	GetSensor(ctx context.Context, id string) (*Sensor, error)
	GetSensorBySerial(ctx context.Context, serial string) (*Sensor, error)
	UpdateSensor(ctx context.Context, s *Sensor) error
	DeleteSensor(ctx context.Context, id string) error
	MarkSensorSeen(ctx context.Context, id string, at time.Time) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed inventory repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const gatewayColumns = "id, name, slug, address, location, status, last_seen_at, created_at, updated_at"

// CreateGateway inserts a new gateway. The ID is generated if empty and
// the status defaults to unknown.
func (r *SQLiteRepository) CreateGateway(ctx context.Context, gw *Gateway) error {
	if gw.ID == "" {
		gw.ID = "gw-" + uuid.NewString()[:8]
	}
	if gw.Status == "" {
		gw.Status = StatusUnknown
	}

	const query = `INSERT INTO gateways (id, name, slug, address, location, status)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		gw.ID, gw.Name, gw.Slug, gw.Address, nullStr(gw.Location), string(gw.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("inserting gateway %s: %w", gw.ID, err)
	}
	return nil
}

// ListGateways returns all gateways ordered by name.
func (r *SQLiteRepository) ListGateways(ctx context.Context) ([]Gateway, error) {
	const query = `SELECT ` + gatewayColumns + ` FROM gateways ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying gateways: %w", err)
	}
	defer rows.Close()

	var gateways []Gateway
	for rows.Next() {
		gw, err := scanGateway(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gateway row: %w", err)
		}
		gateways = append(gateways, *gw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gateway rows: %w", err)
	}
	if gateways == nil {
		gateways = []Gateway{}
	}
	return gateways, nil
}

// GetGateway returns a single gateway by ID.
func (r *SQLiteRepository) GetGateway(ctx context.Context, id string) (*Gateway, error) {
	return r.getGateway(ctx, `SELECT `+gatewayColumns+` FROM gateways WHERE id = ?`, id)
}

// GetGatewayBySlug returns a single gateway by slug.
func (r *SQLiteRepository) GetGatewayBySlug(ctx context.Context, slug string) (*Gateway, error) {
	return r.getGateway(ctx, `SELECT `+gatewayColumns+` FROM gateways WHERE slug = ?`, slug)
}

func (r *SQLiteRepository) getGateway(ctx context.Context, query string, arg any) (*Gateway, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	gw, err := scanGateway(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrGatewayNotFound
		}
		return nil, err
	}
	return gw, nil
}

// UpdateGateway updates a gateway's mutable fields.
func (r *SQLiteRepository) UpdateGateway(ctx context.Context, gw *Gateway) error {
	const query = `UPDATE gateways SET name = ?, slug = ?, address = ?, location = ?, status = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		gw.Name, gw.Slug, gw.Address, nullStr(gw.Location), string(gw.Status), gw.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("updating gateway %s: %w", gw.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrGatewayNotFound
	}
	return nil
}

// DeleteGateway removes a gateway by ID.
// Returns ErrGatewayHasNetworks if networks still reference it.
func (r *SQLiteRepository) DeleteGateway(ctx context.Context, id string) error {
	var networkCount int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM networks WHERE gateway_id = ?", id).Scan(&networkCount); err != nil {
		return fmt.Errorf("counting networks for gateway %s: %w", id, err)
	}
	if networkCount > 0 {
		return ErrGatewayHasNetworks
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM gateways WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting gateway %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrGatewayNotFound
	}
	return nil
}

// MarkGatewaySeen records a heartbeat: status goes online and
// last_seen_at advances.
func (r *SQLiteRepository) MarkGatewaySeen(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE gateways SET status = ?, last_seen_at = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		string(StatusOnline), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("marking gateway %s seen: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrGatewayNotFound
	}
	return nil
}

// rowScanner is an interface for sql.Row and sql.Rows Scan methods.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanGateway scans a gateway from a Row or Rows cursor.
func scanGateway(s rowScanner) (*Gateway, error) {
	var gw Gateway
	var location, lastSeenAt sql.NullString
	var status string
	var createdAt, updatedAt string

	err := s.Scan(&gw.ID, &gw.Name, &gw.Slug, &gw.Address, &location,
		&status, &lastSeenAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	gw.Status = Status(status)
	if location.Valid {
		gw.Location = &location.String
	}
	if lastSeenAt.Valid {
		t := parseTime(lastSeenAt.String)
		gw.LastSeenAt = &t
	}
	gw.CreatedAt = parseTime(createdAt)
	gw.UpdatedAt = parseTime(updatedAt)
	return &gw, nil
}

// Helper functions shared across the repository files.

// nullStr converts a *string to a sql.NullString for nullable columns.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullInt converts a *int to a sql.NullInt64 for nullable columns.
func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// parseTime parses an ISO 8601 timestamp from SQLite.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
