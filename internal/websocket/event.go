package websocket

import (
	"encoding/json"
	"log/slog"

	"servespot/internal/http-api/models"
	"servespot/internal/shared"
)

// Wire protocol definitions

// EventType names the events flowing over a connection.
type EventType string

const ( // triggered when +
	EventRegisterVolunteer    EventType = "registerVolunteer"    // volunteer client binds its identity
	EventRegisterOrganization EventType = "registerOrganization" // organization client binds its identity
	EventRegisterAdmin        EventType = "registerAdmin"        // admin client binds its identity
	EventNewNotification      EventType = "newNotification"      // server pushes a stored notification
)

// Event is the envelope for every frame in both directions.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RegisterPayload is the body of a register command.
type RegisterPayload struct {
	RecipientID string `json:"recipient_id"`
}

// RegisterEventFor returns the register command for a role.
func RegisterEventFor(role shared.Role) EventType {
	switch role {
	case shared.RoleVolunteer:
		return EventRegisterVolunteer
	case shared.RoleOrganization:
		return EventRegisterOrganization
	case shared.RoleAdmin:
		return EventRegisterAdmin
	}
	return ""
}

// RoleForRegister maps a register command back to its role.
func RoleForRegister(t EventType) (shared.Role, bool) {
	switch t {
	case EventRegisterVolunteer:
		return shared.RoleVolunteer, true
	case EventRegisterOrganization:
		return shared.RoleOrganization, true
	case EventRegisterAdmin:
		return shared.RoleAdmin, true
	}
	return "", false
}

// NewNotificationEvent wraps a stored notification for delivery.
func NewNotificationEvent(n *models.Notification) (*Event, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return &Event{Type: EventNewNotification, Payload: payload}, nil
}

// ToJSON: marshal Event struct to JSON
func (e *Event) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to marshal event to JSON", "error", err)
		return nil, err
	}
	return data, nil
}

// EventFromJSON: unmarshal JSON data to Event struct
func EventFromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		slog.Error("Failed to unmarshal event from JSON", "error", err)
		return nil, err
	}
	return &ev, nil
}
