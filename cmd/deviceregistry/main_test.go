package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/device-registry/internal/api"
	"github.com/nerrad567/device-registry/internal/device"
	"github.com/nerrad567/device-registry/internal/infrastructure/config"
	"github.com/nerrad567/device-registry/internal/infrastructure/mqtt"
)

// writeConfig writes a YAML config to a temp file and points DEVREG_CONFIG at it.
func writeConfig(t *testing.T, content string) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("DEVREG_CONFIG", configPath)
}

// freePort returns a TCP port that was free at the time of the call.
func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DEVREG_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidDriver verifies config validation stops startup.
func TestRun_InvalidDriver(t *testing.T) {
	writeConfig(t, `
database:
  driver: oracle
logging:
  output: discard
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with an unknown database driver")
	}
}

// TestRun_PostgresUnreachable verifies run fails when PostgreSQL is down.
func TestRun_PostgresUnreachable(t *testing.T) {
	writeConfig(t, `
database:
  driver: postgres
  dsn: "host=127.0.0.1 port=1 user=postgres dbname=devices sslmode=disable connect_timeout=1"
logging:
  output: discard
`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when postgres is unreachable")
	}
}

// TestRun_StartsAndStops verifies a clean start and shutdown on SQLite.
func TestRun_StartsAndStops(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "devices.db")
	writeConfig(t, fmt.Sprintf(`
database:
  driver: sqlite
  path: %q
api:
  host: 127.0.0.1
  port: %d
logging:
  level: error
  output: discard
`, dbPath, freePort(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestGetConfigPath tests config path resolution.
func TestGetConfigPath(t *testing.T) {
	t.Run("from environment", func(t *testing.T) {
		t.Setenv("DEVREG_CONFIG", "/custom/config.yaml")
		if got := getConfigPath(); got != "/custom/config.yaml" {
			t.Errorf("getConfigPath() = %q, want /custom/config.yaml", got)
		}
	})

	t.Run("default missing", func(t *testing.T) {
		t.Setenv("DEVREG_CONFIG", "")
		chdir(t, t.TempDir())
		if got := getConfigPath(); got != "" {
			t.Errorf("getConfigPath() = %q, want empty", got)
		}
	})

	t.Run("default present", func(t *testing.T) {
		t.Setenv("DEVREG_CONFIG", "")
		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "configs"), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, defaultConfigPath), []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		chdir(t, dir)
		if got := getConfigPath(); got != defaultConfigPath {
			t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
		}
	})
}

// TestOpenStore_SQLite verifies the default driver yields a working repository.
func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	st, err := openStore(ctx, config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "devices.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer st.close() //nolint:errcheck // Test cleanup

	if _, err := st.repo.Create(ctx, &device.Device{DeviceID: "dev-1", Name: "n", Status: device.StatusActive}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if st.stats.Stats().OpenConnections < 1 {
		t.Error("expected at least one open connection")
	}
	if err := st.health(ctx); err != nil {
		t.Errorf("health() error = %v", err)
	}
}

// TestHealthCheck verifies the first failing dependency is reported by name.
func TestHealthCheck(t *testing.T) {
	ok := api.HealthCheckFunc(func(context.Context) error { return nil })
	down := api.HealthCheckFunc(func(context.Context) error { return mqtt.ErrNotConnected })

	tests := []struct {
		name    string
		checks  map[string]api.HealthChecker
		wantErr string
	}{
		{"all healthy", map[string]api.HealthChecker{"api": ok, "database": ok}, ""},
		{"mqtt down", map[string]api.HealthChecker{"database": ok, "mqtt": down}, "mqtt: "},
		{"first in name order", map[string]api.HealthChecker{"mqtt": down, "influxdb": down}, "influxdb: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := healthCheck(context.Background(), tt.checks)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("healthCheck() error = %v", err)
				}
				return
			}
			if err == nil || !strings.HasPrefix(err.Error(), tt.wantErr) {
				t.Errorf("healthCheck() error = %v, want prefix %q", err, tt.wantErr)
			}
			if !errors.Is(err, mqtt.ErrNotConnected) {
				t.Errorf("healthCheck() error = %v, want ErrNotConnected", err)
			}
		})
	}
}

type fakePublisher struct {
	topic string
	value any
	err   error
}

func (f *fakePublisher) Topics() mqtt.Topics { return mqtt.Topics{Prefix: "test"} }

func (f *fakePublisher) PublishJSON(topic string, v any) error {
	f.topic, f.value = topic, v
	return f.err
}

type fakeRecorder struct {
	events []string
}

func (f *fakeRecorder) RecordDeviceEvent(event string) {
	f.events = append(f.events, event)
}

func TestEventFanout(t *testing.T) {
	event := device.Event{Type: device.EventCreated, DeviceID: "dev-1", Timestamp: time.Now()}

	t.Run("disabled", func(t *testing.T) {
		f := &eventFanout{}
		if f.enabled() {
			t.Error("enabled() = true with no sinks")
		}
		if err := f.PublishDeviceEvent(context.Background(), event); err != nil {
			t.Errorf("PublishDeviceEvent() error = %v", err)
		}
	})

	t.Run("both sinks", func(t *testing.T) {
		pub := &fakePublisher{}
		rec := &fakeRecorder{}
		f := &eventFanout{mqtt: pub, influx: rec}

		if err := f.PublishDeviceEvent(context.Background(), event); err != nil {
			t.Fatalf("PublishDeviceEvent() error = %v", err)
		}
		if want := "test/devices/dev-1/created"; pub.topic != want {
			t.Errorf("topic = %q, want %q", pub.topic, want)
		}
		if got, ok := pub.value.(device.Event); !ok || got.DeviceID != "dev-1" {
			t.Errorf("published value = %#v", pub.value)
		}
		if len(rec.events) != 1 || rec.events[0] != "created" {
			t.Errorf("recorded events = %v", rec.events)
		}
	})

	t.Run("publish failure", func(t *testing.T) {
		pub := &fakePublisher{err: mqtt.ErrNotConnected}
		f := &eventFanout{mqtt: pub}

		err := f.PublishDeviceEvent(context.Background(), event)
		if !errors.Is(err, mqtt.ErrNotConnected) {
			t.Errorf("PublishDeviceEvent() error = %v, want ErrNotConnected", err)
		}
	})
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
