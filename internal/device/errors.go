package device

import (
	"errors"
	"strings"
)

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when no device has the requested device_id.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when creating a device whose device_id is taken.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when create input fails validation.
	ErrInvalidDevice = errors.New("device: invalid")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level failure found in a create input.
// It matches ErrInvalidDevice via errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidDevice.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap allows errors.Is(err, ErrInvalidDevice).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDevice
}
