package device

import (
	"errors"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestValidateCreateInput(t *testing.T) {
	tests := []struct {
		name       string
		input      CreateInput
		wantFields []string
	}{
		{
			name:  "minimal valid",
			input: CreateInput{DeviceID: "dev-1", Name: "Sensor"},
		},
		{
			name: "all fields valid",
			input: CreateInput{
				DeviceID:  "dev-1",
				Name:      "Sensor",
				Type:      strPtr("thermometer"),
				IPAddress: strPtr("10.0.0.5"),
				Location:  strPtr("Lab 3"),
				Status:    strPtr("inactive"),
			},
		},
		{
			name:  "name at max length",
			input: CreateInput{DeviceID: "dev-1", Name: strings.Repeat("a", 100)},
		},
		{
			name:  "multibyte name at max length",
			input: CreateInput{DeviceID: "dev-1", Name: strings.Repeat("é", 100)},
		},
		{
			name:       "name exceeds max length",
			input:      CreateInput{DeviceID: "dev-1", Name: strings.Repeat("a", 101)},
			wantFields: []string{"name"},
		},
		{
			name:       "empty device_id",
			input:      CreateInput{DeviceID: "", Name: "Sensor"},
			wantFields: []string{"device_id"},
		},
		{
			name:       "empty name",
			input:      CreateInput{DeviceID: "dev-1", Name: ""},
			wantFields: []string{"name"},
		},
		{
			name:  "type at max length",
			input: CreateInput{DeviceID: "dev-1", Name: "n", Type: strPtr(strings.Repeat("t", 50))},
		},
		{
			name:       "type exceeds max length",
			input:      CreateInput{DeviceID: "dev-1", Name: "n", Type: strPtr(strings.Repeat("t", 51))},
			wantFields: []string{"type"},
		},
		{
			name:  "location at max length",
			input: CreateInput{DeviceID: "dev-1", Name: "n", Location: strPtr(strings.Repeat("l", 200))},
		},
		{
			name:       "location exceeds max length",
			input:      CreateInput{DeviceID: "dev-1", Name: "n", Location: strPtr(strings.Repeat("l", 201))},
			wantFields: []string{"location"},
		},
		{
			name:  "empty optional strings allowed",
			input: CreateInput{DeviceID: "dev-1", Name: "n", Type: strPtr(""), Location: strPtr("")},
		},
		{
			name:       "every violation reported",
			input:      CreateInput{Type: strPtr(strings.Repeat("t", 51))},
			wantFields: []string{"device_id", "name", "type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateInput(tt.input)

			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateCreateInput() = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, ErrInvalidDevice) {
				t.Fatalf("ValidateCreateInput() = %v, want ErrInvalidDevice", err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateCreateInput() error type = %T, want *ValidationError", err)
			}

			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("got %d field errors %+v, want %v", len(verr.Fields), verr.Fields, tt.wantFields)
			}
			for i, field := range tt.wantFields {
				if verr.Fields[i].Field != field {
					t.Errorf("Fields[%d].Field = %q, want %q", i, verr.Fields[i].Field, field)
				}
				if verr.Fields[i].Message == "" {
					t.Errorf("Fields[%d].Message is empty", i)
				}
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "name", Message: "field required"},
		{Field: "type", Message: "must be at most 50 characters"},
	}}

	want := "device: invalid: name: field required; type: must be at most 50 characters"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCreateInput_ToDevice(t *testing.T) {
	tests := []struct {
		name       string
		status     *string
		wantStatus string
	}{
		{name: "absent status", status: nil, wantStatus: StatusActive},
		{name: "empty status kept", status: strPtr(""), wantStatus: ""},
		{name: "explicit status", status: strPtr("maintenance"), wantStatus: "maintenance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := CreateInput{DeviceID: "dev-1", Name: "Sensor", Status: tt.status, Location: strPtr("Lab")}
			d := in.ToDevice()

			if d.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", d.Status, tt.wantStatus)
			}
			if d.DeviceID != "dev-1" || d.Name != "Sensor" {
				t.Errorf("identity fields not copied: %+v", d)
			}
			if d.Type != nil || d.IPAddress != nil {
				t.Error("absent optional fields should stay nil")
			}
			if d.Location == nil || *d.Location != "Lab" {
				t.Errorf("Location = %v, want Lab", d.Location)
			}
			if d.ID != 0 || !d.CreatedAt.IsZero() {
				t.Error("ID and CreatedAt must be left for the store to assign")
			}
		})
	}
}
