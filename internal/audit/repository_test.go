package audit

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "audit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			user_id TEXT,
			source TEXT NOT NULL,
			details TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying audit migration: %v", err)
	}

	return db
}

func TestRecordAndList(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	entry := &Entry{
		Action:     ActionCreate,
		EntityType: EntitySensor,
		EntityID:   "sen-abc12345",
		UserID:     "usr-abc12345",
		Source:     SourceAPI,
		Details:    map[string]any{"serial": "TMP-0001"},
	}
	if err := repo.Record(context.Background(), entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Record() should generate an ID")
	}

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("List() total = %d, entries = %d, want 1/1", result.Total, len(result.Entries))
	}

	got := result.Entries[0]
	if got.Action != ActionCreate || got.EntityType != EntitySensor {
		t.Errorf("List() entry = %+v", got)
	}
	if got.Details["serial"] != "TMP-0001" {
		t.Errorf("Details = %v", got.Details)
	}
}

func TestList_Filtering(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	now := time.Now().UTC()
	entries := []*Entry{
		{Action: ActionLogin, EntityType: EntityUser, UserID: "usr-a", Source: SourceAPI, CreatedAt: now.Add(-3 * time.Minute)},
		{Action: ActionCreate, EntityType: EntityGateway, EntityID: "gw-1", UserID: "usr-a", Source: SourceAPI, CreatedAt: now.Add(-2 * time.Minute)},
		{Action: ActionDelete, EntityType: EntityGateway, EntityID: "gw-1", UserID: "usr-b", Source: SourceAPI, CreatedAt: now.Add(-time.Minute)},
	}
	for _, e := range entries {
		if err := repo.Record(context.Background(), e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	result, err := repo.List(context.Background(), Filter{EntityType: EntityGateway})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 2 {
		t.Errorf("List(gateway) total = %d, want 2", result.Total)
	}
	// Newest first.
	if result.Entries[0].Action != ActionDelete {
		t.Errorf("List()[0] action = %q, want delete", result.Entries[0].Action)
	}

	result, err = repo.List(context.Background(), Filter{UserID: "usr-a"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 2 {
		t.Errorf("List(usr-a) total = %d, want 2", result.Total)
	}

	result, err = repo.List(context.Background(), Filter{Action: ActionLogin, UserID: "usr-b"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 0 {
		t.Errorf("List(login+usr-b) total = %d, want 0", result.Total)
	}
}

func TestList_Pagination(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		e := &Entry{
			Action:     ActionUpdate,
			EntityType: EntitySensor,
			Source:     SourceAPI,
			CreatedAt:  now.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Record(context.Background(), e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	result, err := repo.List(context.Background(), Filter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
	if len(result.Entries) != 2 {
		t.Errorf("Entries = %d, want 2", len(result.Entries))
	}
	if result.Limit != 2 || result.Offset != 2 {
		t.Errorf("Limit/Offset = %d/%d, want 2/2", result.Limit, result.Offset)
	}
}
