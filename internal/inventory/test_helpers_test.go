package inventory

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the inventory schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "inventory-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE gateways (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			address TEXT NOT NULL,
			location TEXT,
			status TEXT NOT NULL DEFAULT 'unknown',
			last_seen_at TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE networks (
			id TEXT PRIMARY KEY,
			gateway_id TEXT NOT NULL,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			protocol TEXT NOT NULL,
			channel INTEGER,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (gateway_id) REFERENCES gateways(id) ON DELETE RESTRICT
		) STRICT;

		CREATE TABLE sensors (
			id TEXT PRIMARY KEY,
			network_id TEXT NOT NULL,
			name TEXT NOT NULL,
			serial TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			unit TEXT,
			status TEXT NOT NULL DEFAULT 'unknown',
			last_seen_at TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (network_id) REFERENCES networks(id) ON DELETE RESTRICT
		) STRICT;
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying inventory migration: %v", err)
	}

	return db
}

// seedGateway inserts a gateway and returns it.
func seedGateway(t *testing.T, repo *SQLiteRepository, slug string) *Gateway {
	t.Helper()

	gw := &Gateway{
		Name:    "Gateway " + slug,
		Slug:    slug,
		Address: "10.0.0.1:1883",
	}
	if err := repo.CreateGateway(context.Background(), gw); err != nil {
		t.Fatalf("creating gateway %s: %v", slug, err)
	}
	return gw
}

// seedNetwork inserts a network under a gateway and returns it.
func seedNetwork(t *testing.T, repo *SQLiteRepository, gatewayID, slug string) *Network {
	t.Helper()

	n := &Network{
		GatewayID: gatewayID,
		Name:      "Network " + slug,
		Slug:      slug,
		Protocol:  ProtocolZigbee,
	}
	if err := repo.CreateNetwork(context.Background(), n); err != nil {
		t.Fatalf("creating network %s: %v", slug, err)
	}
	return n
}

// seedSensor inserts a sensor on a network and returns it.
func seedSensor(t *testing.T, repo *SQLiteRepository, networkID, serial string) *Sensor {
	t.Helper()

	s := &Sensor{
		NetworkID: networkID,
		Name:      "Sensor " + serial,
		Serial:    serial,
		Kind:      "temperature",
	}
	if err := repo.CreateSensor(context.Background(), s); err != nil {
		t.Fatalf("creating sensor %s: %v", serial, err)
	}
	return s
}
