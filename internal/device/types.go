package device

import "time"

// StatusActive is the status assigned when a create request omits one.
const StatusActive = "active"

// Device is a registered device record as stored and returned by the API.
//
// Optional attributes are pointers so that an absent value serialises as
// JSON null rather than being dropped from the object.
type Device struct {
	// ID is the system-assigned primary key.
	ID int64 `json:"id"`

	// DeviceID is the client-chosen business key. Unique, immutable.
	DeviceID string `json:"device_id"`

	Name      string  `json:"name"`
	Type      *string `json:"type"`
	IPAddress *string `json:"ip_address"`
	Location  *string `json:"location"`
	Status    string  `json:"status"`

	// CreatedAt is assigned by the store at insert time (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput is the client-supplied payload for creating a device.
//
// Constraints are expressed as validator tags and checked by
// ValidateCreateInput. Length limits count characters, not bytes.
type CreateInput struct {
	DeviceID  string  `json:"device_id" validate:"required"`
	Name      string  `json:"name" validate:"required,max=100"`
	Type      *string `json:"type" validate:"omitempty,max=50"`
	IPAddress *string `json:"ip_address"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
	Status    *string `json:"status"`
}

// ToDevice converts validated input into a Device ready for insertion.
// A missing or null status becomes StatusActive; any other value,
// including "", is kept as given.
func (in CreateInput) ToDevice() *Device {
	status := StatusActive
	if in.Status != nil {
		status = *in.Status
	}

	return &Device{
		DeviceID:  in.DeviceID,
		Name:      in.Name,
		Type:      in.Type,
		IPAddress: in.IPAddress,
		Location:  in.Location,
		Status:    status,
	}
}

// EventType identifies a device lifecycle transition.
type EventType string

// Lifecycle events emitted after a committed mutation.
const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
)

// Event describes a committed device mutation for external subscribers.
type Event struct {
	Type      EventType `json:"event"`
	DeviceID  string    `json:"device_id"`
	Device    *Device   `json:"device,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
