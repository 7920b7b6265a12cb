package websocket

import (
	"encoding/json"
	"testing"

	"servespot/internal/shared"
)

func registerConn(role shared.Role, userID string, registry *Registry) *Conn {
	return &Conn{
		ID:       "t1",
		UserID:   userID,
		UserRole: role,
		Registry: registry,
	}
}

func TestHandleEvent_BindsAuthenticatedIdentity(t *testing.T) {
	registry := NewRegistry()
	conn := registerConn(shared.RoleVolunteer, "vol_1", registry)

	conn.handleEvent(&Event{Type: EventRegisterVolunteer})

	if got := registry.ConnectionsFor(shared.RoleVolunteer, "vol_1"); got != 1 {
		t.Errorf("Expected binding for the token's identity, got %d connections", got)
	}
}

func TestHandleEvent_PayloadMatchingTokenAccepted(t *testing.T) {
	registry := NewRegistry()
	conn := registerConn(shared.RoleOrganization, "org_42", registry)

	conn.handleEvent(&Event{
		Type:    EventRegisterOrganization,
		Payload: json.RawMessage(`{"recipient_id":"org_42"}`),
	})

	if got := registry.ConnectionsFor(shared.RoleOrganization, "org_42"); got != 1 {
		t.Errorf("Expected binding, got %d connections", got)
	}
}

func TestHandleEvent_ForeignRecipientRejected(t *testing.T) {
	registry := NewRegistry()
	conn := registerConn(shared.RoleOrganization, "org_attacker", registry)

	// the payload names someone else's identity; the token wins
	conn.handleEvent(&Event{
		Type:    EventRegisterOrganization,
		Payload: json.RawMessage(`{"recipient_id":"victim_org"}`),
	})

	if got := registry.ConnectionsFor(shared.RoleOrganization, "victim_org"); got != 0 {
		t.Fatalf("Expected no binding for the victim's identity, got %d connections", got)
	}
	if registry.Count() != 0 {
		t.Errorf("Expected the command to be dropped entirely, got %d transports", registry.Count())
	}
}

func TestHandleEvent_RoleMismatchRejected(t *testing.T) {
	registry := NewRegistry()
	// a volunteer token claiming the organization (or admin) channel
	conn := registerConn(shared.RoleVolunteer, "vol_1", registry)

	conn.handleEvent(&Event{Type: EventRegisterOrganization})
	conn.handleEvent(&Event{Type: EventRegisterAdmin})

	if registry.Count() != 0 {
		t.Errorf("Expected no binding for a mismatched role, got %d transports", registry.Count())
	}
}

func TestHandleEvent_CrossDeliveryBlocked(t *testing.T) {
	registry := NewRegistry()

	victim := &fakeSender{}
	registry.Register("t-victim", shared.RoleOrganization, "victim_org", victim)

	attacker := registerConn(shared.RoleOrganization, "org_attacker", registry)
	attacker.handleEvent(&Event{
		Type:    EventRegisterOrganization,
		Payload: json.RawMessage(`{"recipient_id":"victim_org"}`),
	})

	delivered := registry.Publish(shared.RoleOrganization, "victim_org", []byte("n1"))
	if delivered != 1 {
		t.Errorf("Expected delivery to the victim's transport only, got %d", delivered)
	}
	if victim.count() != 1 {
		t.Errorf("Expected the victim to receive the event, got %d frames", victim.count())
	}
}

func TestHandleEvent_UnknownEventIgnored(t *testing.T) {
	registry := NewRegistry()
	conn := registerConn(shared.RoleVolunteer, "vol_1", registry)

	conn.handleEvent(&Event{Type: EventNewNotification})

	if registry.Count() != 0 {
		t.Errorf("Expected non-register events to be ignored, got %d transports", registry.Count())
	}
}
