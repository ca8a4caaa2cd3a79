package inventory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testNetwork(t *testing.T, repo *SQLiteRepository) *Network {
	t.Helper()
	gw := seedGateway(t, repo, "plant-north")
	return seedNetwork(t, repo, gw.ID, "floor-mesh")
}

func TestSensor_CreateAndGet(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	n := testNetwork(t, repo)

	unit := "celsius"
	s := &Sensor{
		NetworkID: n.ID,
		Name:      "Boiler Inlet Temp",
		Serial:    "TMP-0001",
		Kind:      "temperature",
		Unit:      &unit,
	}
	if err := repo.CreateSensor(context.Background(), s); err != nil {
		t.Fatalf("CreateSensor() error = %v", err)
	}
	if s.Status != StatusUnknown {
		t.Errorf("new sensor status = %q, want unknown", s.Status)
	}

	got, err := repo.GetSensor(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetSensor() error = %v", err)
	}
	if got.Serial != "TMP-0001" || got.Kind != "temperature" {
		t.Errorf("GetSensor() = %+v", got)
	}
	if got.Unit == nil || *got.Unit != "celsius" {
		t.Errorf("Unit = %v, want celsius", got.Unit)
	}

	got, err = repo.GetSensorBySerial(context.Background(), "TMP-0001")
	if err != nil {
		t.Fatalf("GetSensorBySerial() error = %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("GetSensorBySerial() ID = %q, want %q", got.ID, s.ID)
	}
}

func TestSensor_DuplicateSerial(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	n := testNetwork(t, repo)

	seedSensor(t, repo, n.ID, "TMP-0001")

	dup := &Sensor{NetworkID: n.ID, Name: "Again", Serial: "TMP-0001", Kind: "temperature"}
	if err := repo.CreateSensor(context.Background(), dup); !errors.Is(err, ErrSerialExists) {
		t.Errorf("CreateSensor() error = %v, want ErrSerialExists", err)
	}
}

func TestSensor_CreateOrphan(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	s := &Sensor{NetworkID: "net-missing0", Name: "Orphan", Serial: "TMP-0002", Kind: "humidity"}
	if err := repo.CreateSensor(context.Background(), s); !errors.Is(err, ErrNetworkNotFound) {
		t.Errorf("CreateSensor() error = %v, want ErrNetworkNotFound", err)
	}
}

func TestSensor_Update(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	n := testNetwork(t, repo)
	s := seedSensor(t, repo, n.ID, "TMP-0001")

	s.Name = "Boiler Outlet Temp"
	s.Status = StatusOffline
	if err := repo.UpdateSensor(context.Background(), s); err != nil {
		t.Fatalf("UpdateSensor() error = %v", err)
	}

	got, err := repo.GetSensor(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetSensor() error = %v", err)
	}
	if got.Name != "Boiler Outlet Temp" || got.Status != StatusOffline {
		t.Errorf("UpdateSensor() not persisted: %+v", got)
	}
}

func TestSensor_MarkSeen(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	n := testNetwork(t, repo)
	s := seedSensor(t, repo, n.ID, "TMP-0001")

	seen := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if err := repo.MarkSensorSeen(context.Background(), s.ID, seen); err != nil {
		t.Fatalf("MarkSensorSeen() error = %v", err)
	}

	got, err := repo.GetSensor(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetSensor() error = %v", err)
	}
	if got.Status != StatusOnline {
		t.Errorf("Status = %q, want online", got.Status)
	}
	if got.LastSeenAt == nil || !got.LastSeenAt.Equal(seen) {
		t.Errorf("LastSeenAt = %v, want %v", got.LastSeenAt, seen)
	}
}

func TestSensor_DeleteAndList(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	n := testNetwork(t, repo)
	s1 := seedSensor(t, repo, n.ID, "TMP-0001")
	seedSensor(t, repo, n.ID, "HUM-0001")

	sensors, err := repo.ListSensorsByNetwork(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("ListSensorsByNetwork() error = %v", err)
	}
	if len(sensors) != 2 {
		t.Errorf("ListSensorsByNetwork() = %d, want 2", len(sensors))
	}

	if err := repo.DeleteSensor(context.Background(), s1.ID); err != nil {
		t.Fatalf("DeleteSensor() error = %v", err)
	}
	if _, err := repo.GetSensor(context.Background(), s1.ID); !errors.Is(err, ErrSensorNotFound) {
		t.Errorf("GetSensor() after delete error = %v, want ErrSensorNotFound", err)
	}
	if err := repo.DeleteSensor(context.Background(), s1.ID); !errors.Is(err, ErrSensorNotFound) {
		t.Errorf("second DeleteSensor() error = %v, want ErrSensorNotFound", err)
	}
}
