package device

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/device-registry/internal/infrastructure/database"
	_ "github.com/nerrad567/device-registry/migrations" // registers the devices schema
)

// setupTestDB opens a SQLite database in a temp directory with the
// production schema applied.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "devices.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}
	return db
}

func TestSQLiteRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		return NewSQLiteRepository(setupTestDB(t).DB)
	})
}

// runRepositoryContract exercises behaviour every Repository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) { //nolint:gocognit // one subtest per contract clause
	ctx := context.Background()

	t.Run("create assigns id and created_at", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.Create(ctx, &Device{DeviceID: "dev-1", Name: "Sensor", Status: StatusActive})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if got.ID == 0 {
			t.Error("ID was not assigned")
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt was not assigned")
		}
		if got.CreatedAt.Location().String() != "UTC" {
			t.Errorf("CreatedAt location = %v, want UTC", got.CreatedAt.Location())
		}
		if got.Status != StatusActive {
			t.Errorf("Status = %q, want %q", got.Status, StatusActive)
		}
		if got.Type != nil || got.IPAddress != nil || got.Location != nil {
			t.Errorf("optional fields should be nil, got %+v", got)
		}
	})

	t.Run("create keeps optional fields", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.Create(ctx, &Device{
			DeviceID:  "dev-1",
			Name:      "Sensor",
			Type:      strPtr("thermometer"),
			IPAddress: strPtr("10.0.0.5"),
			Location:  strPtr(""),
			Status:    "inactive",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if got.Type == nil || *got.Type != "thermometer" {
			t.Errorf("Type = %v, want thermometer", got.Type)
		}
		if got.IPAddress == nil || *got.IPAddress != "10.0.0.5" {
			t.Errorf("IPAddress = %v, want 10.0.0.5", got.IPAddress)
		}
		if got.Location == nil || *got.Location != "" {
			t.Errorf("Location = %v, want empty string", got.Location)
		}
		if got.Status != "inactive" {
			t.Errorf("Status = %q, want inactive", got.Status)
		}
	})

	t.Run("create stores status verbatim", func(t *testing.T) {
		repo := newRepo(t)

		for _, status := range []string{"", strings.Repeat("s", 80)} {
			id := fmt.Sprintf("dev-%d", len(status))
			if _, err := repo.Create(ctx, &Device{DeviceID: id, Name: "Sensor", Status: status}); err != nil {
				t.Fatalf("Create(status %q) error = %v", status, err)
			}
			got, err := repo.GetByDeviceID(ctx, id)
			if err != nil {
				t.Fatalf("GetByDeviceID() error = %v", err)
			}
			if got.Status != status {
				t.Errorf("Status = %q, want %q", got.Status, status)
			}
		}
	})

	t.Run("duplicate device_id rejected", func(t *testing.T) {
		repo := newRepo(t)

		if _, err := repo.Create(ctx, &Device{DeviceID: "dev-1", Name: "First"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		_, err := repo.Create(ctx, &Device{DeviceID: "dev-1", Name: "Second"})
		if !errors.Is(err, ErrDeviceExists) {
			t.Fatalf("second Create() error = %v, want ErrDeviceExists", err)
		}

		got, err := repo.GetByDeviceID(ctx, "dev-1")
		if err != nil {
			t.Fatalf("GetByDeviceID() error = %v", err)
		}
		if got.Name != "First" {
			t.Errorf("Name = %q, want First (duplicate must not overwrite)", got.Name)
		}
	})

	t.Run("round trip matches create response", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, &Device{DeviceID: "dev-1", Name: "Sensor", Location: strPtr("Lab")})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		fetched, err := repo.GetByDeviceID(ctx, "dev-1")
		if err != nil {
			t.Fatalf("GetByDeviceID() error = %v", err)
		}
		assertSameDevice(t, fetched, created)
	})

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByDeviceID(ctx, "nope")
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("GetByDeviceID() error = %v, want ErrDeviceNotFound", err)
		}
	})

	t.Run("list empty is non-nil", func(t *testing.T) {
		repo := newRepo(t)

		devices, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if devices == nil || len(devices) != 0 {
			t.Errorf("List() = %#v, want empty non-nil slice", devices)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		repo := newRepo(t)

		for _, id := range []string{"A", "B", "C"} {
			if _, err := repo.Create(ctx, &Device{DeviceID: id, Name: id}); err != nil {
				t.Fatalf("Create(%s) error = %v", id, err)
			}
		}

		devices, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []string{"C", "B", "A"}
		if len(devices) != len(want) {
			t.Fatalf("List() returned %d devices, want %d", len(devices), len(want))
		}
		for i, id := range want {
			if devices[i].DeviceID != id {
				t.Errorf("devices[%d].DeviceID = %q, want %q", i, devices[i].DeviceID, id)
			}
		}
	})

	t.Run("delete is final and frees the key", func(t *testing.T) {
		repo := newRepo(t)

		first, err := repo.Create(ctx, &Device{DeviceID: "dev-1", Name: "Old"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := repo.DeleteByDeviceID(ctx, "dev-1"); err != nil {
			t.Fatalf("DeleteByDeviceID() error = %v", err)
		}
		if _, err := repo.GetByDeviceID(ctx, "dev-1"); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("GetByDeviceID() after delete error = %v, want ErrDeviceNotFound", err)
		}

		second, err := repo.Create(ctx, &Device{DeviceID: "dev-1", Name: "New"})
		if err != nil {
			t.Fatalf("re-Create() error = %v", err)
		}
		if second.ID == first.ID {
			t.Errorf("reused key got the same id %d, want a new one", second.ID)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.DeleteByDeviceID(ctx, "nope")
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("DeleteByDeviceID() error = %v, want ErrDeviceNotFound", err)
		}
	})

	t.Run("concurrent duplicate creates", func(t *testing.T) {
		repo := newRepo(t)

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Create(ctx, &Device{DeviceID: "race", Name: "Racer"})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var ok, dup int
		for err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrDeviceExists):
				dup++
			default:
				t.Errorf("unexpected Create() error = %v", err)
			}
		}
		if ok != 1 || dup != workers-1 {
			t.Errorf("successes = %d, duplicates = %d; want 1 and %d", ok, dup, workers-1)
		}
	})
}

func assertSameDevice(t *testing.T, got, want *Device) {
	t.Helper()

	if got.ID != want.ID || got.DeviceID != want.DeviceID || got.Name != want.Name || got.Status != want.Status {
		t.Errorf("device = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	for _, pair := range [][2]*string{
		{got.Type, want.Type},
		{got.IPAddress, want.IPAddress},
		{got.Location, want.Location},
	} {
		if (pair[0] == nil) != (pair[1] == nil) || (pair[0] != nil && *pair[0] != *pair[1]) {
			t.Errorf("optional field mismatch: got %v, want %v", pair[0], pair[1])
		}
	}
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("UNIQUE constraint failed: devices.device_id"), true},
		{errors.New(`ERROR: duplicate key value violates unique constraint "idx_devices_device_id"`), true},
		{errors.New("disk I/O error"), false},
	}

	for _, tt := range tests {
		if got := isUniqueConstraintError(tt.err); got != tt.want {
			t.Errorf("isUniqueConstraintError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
