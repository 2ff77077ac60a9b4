package device

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventPublisher receives lifecycle events after a mutation has committed.
type EventPublisher interface {
	PublishDeviceEvent(ctx context.Context, event Event) error
}

// Registry orchestrates device operations over a Repository.
//
// It validates input before touching the store, performs the duplicate and
// existence checks, and notifies the optional EventPublisher. It holds no
// device state of its own, so every read goes to the store.
//
// All public methods are safe for concurrent use if the Repository is.
type Registry struct {
	repo      Repository
	publisher EventPublisher
	logger    Logger
	now       func() time.Time
}

// NewRegistry creates a new device registry backed by repo.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetPublisher sets the publisher notified after creates and deletes.
// A nil publisher disables notifications.
func (r *Registry) SetPublisher(p EventPublisher) {
	r.publisher = p
}

// CreateDevice validates input and stores a new device.
//
// Returns:
//   - *Device: The stored device with id, created_at and status populated
//   - error: *ValidationError, ErrDeviceExists, or a wrapped store failure
func (r *Registry) CreateDevice(ctx context.Context, in CreateInput) (*Device, error) {
	if err := ValidateCreateInput(in); err != nil {
		return nil, err
	}

	_, err := r.repo.GetByDeviceID(ctx, in.DeviceID)
	switch {
	case err == nil:
		return nil, ErrDeviceExists
	case !errors.Is(err, ErrDeviceNotFound):
		return nil, fmt.Errorf("checking device_id: %w", err)
	}

	stored, err := r.repo.Create(ctx, in.ToDevice())
	if err != nil {
		if errors.Is(err, ErrDeviceExists) {
			return nil, ErrDeviceExists
		}
		return nil, fmt.Errorf("creating device: %w", err)
	}

	r.logger.Info("device created", "device_id", stored.DeviceID, "id", stored.ID)
	r.publish(ctx, Event{Type: EventCreated, DeviceID: stored.DeviceID, Device: stored})

	return stored, nil
}

// ListDevices returns every device, newest first. The slice is never nil.
func (r *Registry) ListDevices(ctx context.Context) ([]Device, error) {
	devices, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// GetDevice retrieves a device by its business key.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) GetDevice(ctx context.Context, deviceID string) (*Device, error) {
	d, err := r.repo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("getting device: %w", err)
	}
	return d, nil
}

// DeleteDevice removes a device by its business key.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) DeleteDevice(ctx context.Context, deviceID string) error {
	existing, err := r.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	}

	if err := r.repo.DeleteByDeviceID(ctx, deviceID); err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return ErrDeviceNotFound
		}
		return fmt.Errorf("deleting device: %w", err)
	}

	r.logger.Info("device deleted", "device_id", deviceID)
	r.publish(ctx, Event{Type: EventDeleted, DeviceID: deviceID, Device: existing})

	return nil
}

// Ping reports whether the underlying store is reachable.
// Stores that do not implement Pinger are assumed healthy.
func (r *Registry) Ping(ctx context.Context) error {
	p, ok := r.repo.(Pinger)
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}

// publish notifies the publisher. Failures are logged and otherwise ignored.
func (r *Registry) publish(ctx context.Context, event Event) {
	if r.publisher == nil {
		return
	}
	event.Timestamp = r.now().UTC()

	if err := r.publisher.PublishDeviceEvent(ctx, event); err != nil {
		r.logger.Warn("publishing device event failed",
			"event", string(event.Type),
			"device_id", event.DeviceID,
			"error", err,
		)
	}
}
