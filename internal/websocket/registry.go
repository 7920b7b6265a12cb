package websocket

import (
	"log/slog"
	"sync"

	"servespot/internal/shared"
)

// Sender delivers one outbound frame to a live transport.
// *Conn implements it; tests substitute fakes.
type Sender interface {
	Send(data []byte) error
}

// Registry maps a recipient (role + id) to the set of live transports for
// that recipient, so one publish fans out to every tab/device the user has
// open. Entries exist only for the lifetime of the process; durability is
// the persistence layer's job.
type Registry struct {
	mu          sync.RWMutex
	recipients  map[shared.Recipient]map[string]Sender // recipient -> transportID -> sender
	byTransport map[string]shared.Recipient            // transportID -> current binding
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		recipients:  make(map[shared.Recipient]map[string]Sender),
		byTransport: make(map[string]shared.Recipient),
	}
}

// Register binds a transport to a recipient. A missing recipient id is a
// silent no-op: the client simply has not authenticated yet. Calling it
// again with the same binding changes nothing; calling it with a new
// binding moves the transport.
func (r *Registry) Register(transportID string, role shared.Role, recipientID string, sender Sender) {
	if recipientID == "" || !role.Valid() {
		slog.Debug("registration skipped: recipient identity unknown",
			"transport_id", transportID, "role", role.String())
		return
	}

	recipient := shared.Recipient{Role: role, ID: recipientID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.byTransport[transportID]; ok {
		if current == recipient {
			return
		}
		// re-registration under a different identity: drop the old binding
		r.removeLocked(transportID, current)
	}

	set := r.recipients[recipient]
	if set == nil {
		set = make(map[string]Sender)
		r.recipients[recipient] = set
	}
	set[transportID] = sender
	r.byTransport[transportID] = recipient

	slog.Info("transport registered", "transport_id", transportID,
		"role", recipient.Role.String(), "recipient_id", recipient.ID)
}

// Unregister removes the transport from whatever recipient it was bound
// to. Safe to call for transports that never registered.
func (r *Registry) Unregister(transportID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipient, ok := r.byTransport[transportID]
	if !ok {
		return
	}
	r.removeLocked(transportID, recipient)
	slog.Info("transport unregistered", "transport_id", transportID,
		"role", recipient.Role.String(), "recipient_id", recipient.ID)
}

func (r *Registry) removeLocked(transportID string, recipient shared.Recipient) {
	delete(r.byTransport, transportID)
	if set := r.recipients[recipient]; set != nil {
		delete(set, transportID)
		if len(set) == 0 {
			delete(r.recipients, recipient)
		}
	}
}

// Publish delivers data to every transport registered for the recipient
// and returns how many received it. Zero live transports is the normal
// offline case, not an error: the event is dropped and the recipient
// catches up from the stored history.
func (r *Registry) Publish(role shared.Role, recipientID string, data []byte) int {
	r.mu.RLock()
	senders := make([]Sender, 0)
	transportIDs := make([]string, 0)
	for id, s := range r.recipients[shared.Recipient{Role: role, ID: recipientID}] {
		senders = append(senders, s)
		transportIDs = append(transportIDs, id)
	}
	r.mu.RUnlock()

	delivered := 0
	for i, s := range senders {
		if err := s.Send(data); err != nil {
			slog.Warn("failed to push to transport", "transport_id", transportIDs[i], "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// ConnectionsFor returns the number of live transports for a recipient.
func (r *Registry) ConnectionsFor(role shared.Role, recipientID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipients[shared.Recipient{Role: role, ID: recipientID}])
}

// Count returns the total number of registered transports.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTransport)
}
