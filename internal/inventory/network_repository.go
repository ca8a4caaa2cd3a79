package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const networkColumns = "id, gateway_id, name, slug, protocol, channel, created_at, updated_at"

// CreateNetwork inserts a new network. The ID is generated if empty.
// The referenced gateway must exist.
func (r *SQLiteRepository) CreateNetwork(ctx context.Context, n *Network) error {
	if n.ID == "" {
		n.ID = "net-" + uuid.NewString()[:8]
	}

	const query = `INSERT INTO networks (id, gateway_id, name, slug, protocol, channel)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.GatewayID, n.Name, n.Slug, string(n.Protocol), nullInt(n.Channel))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		if isForeignKeyViolation(err) {
			return ErrGatewayNotFound
		}
		return fmt.Errorf("inserting network %s: %w", n.ID, err)
	}
	return nil
}

// ListNetworks returns all networks ordered by name.
func (r *SQLiteRepository) ListNetworks(ctx context.Context) ([]Network, error) {
	const query = `SELECT ` + networkColumns + ` FROM networks ORDER BY name`
	return r.queryNetworks(ctx, query)
}

// ListNetworksByGateway returns networks owned by a specific gateway.
func (r *SQLiteRepository) ListNetworksByGateway(ctx context.Context, gatewayID string) ([]Network, error) {
	const query = `SELECT ` + networkColumns + ` FROM networks WHERE gateway_id = ? ORDER BY name`
	return r.queryNetworks(ctx, query, gatewayID)
}

// GetNetwork returns a single network by ID.
func (r *SQLiteRepository) GetNetwork(ctx context.Context, id string) (*Network, error) {
	const query = `SELECT ` + networkColumns + ` FROM networks WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	n, err := scanNetwork(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNetworkNotFound
		}
		return nil, err
	}
	return n, nil
}

// UpdateNetwork updates a network's mutable fields.
func (r *SQLiteRepository) UpdateNetwork(ctx context.Context, n *Network) error {
	const query = `UPDATE networks SET name = ?, slug = ?, protocol = ?, channel = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		n.Name, n.Slug, string(n.Protocol), nullInt(n.Channel), n.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("updating network %s: %w", n.ID, err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if rows == 0 {
		return ErrNetworkNotFound
	}
	return nil
}

// DeleteNetwork removes a network by ID.
// Returns ErrNetworkHasSensors if sensors still reference it.
func (r *SQLiteRepository) DeleteNetwork(ctx context.Context, id string) error {
	var sensorCount int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sensors WHERE network_id = ?", id).Scan(&sensorCount); err != nil {
		return fmt.Errorf("counting sensors for network %s: %w", id, err)
	}
	if sensorCount > 0 {
		return ErrNetworkHasSensors
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM networks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting network %s: %w", id, err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if rows == 0 {
		return ErrNetworkNotFound
	}
	return nil
}

// queryNetworks executes a query and returns a slice of Network.
func (r *SQLiteRepository) queryNetworks(ctx context.Context, query string, args ...any) ([]Network, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying networks: %w", err)
	}
	defer rows.Close()

	var networks []Network
	for rows.Next() {
		n, err := scanNetwork(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning network row: %w", err)
		}
		networks = append(networks, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating network rows: %w", err)
	}
	if networks == nil {
		networks = []Network{}
	}
	return networks, nil
}

// scanNetwork scans a network from a Row or Rows cursor.
func scanNetwork(s rowScanner) (*Network, error) {
	var n Network
	var protocol string
	var channel sql.NullInt64
	var createdAt, updatedAt string

	err := s.Scan(&n.ID, &n.GatewayID, &n.Name, &n.Slug, &protocol,
		&channel, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	n.Protocol = Protocol(protocol)
	if channel.Valid {
		c := int(channel.Int64)
		n.Channel = &c
	}
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	return &n, nil
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
