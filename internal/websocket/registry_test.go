package websocket

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"servespot/internal/shared"
)

type fakeSender struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (s *fakeSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, data)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	r := NewRegistry()
	sender := &fakeSender{}

	r.Register("t1", shared.RoleVolunteer, "vol_1", sender)
	if r.Count() != 1 {
		t.Errorf("Expected 1 transport, got %d", r.Count())
	}
	if r.ConnectionsFor(shared.RoleVolunteer, "vol_1") != 1 {
		t.Errorf("Expected 1 connection for vol_1, got %d", r.ConnectionsFor(shared.RoleVolunteer, "vol_1"))
	}

	r.Unregister("t1")
	if r.Count() != 0 {
		t.Errorf("Expected 0 transports after unregister, got %d", r.Count())
	}
	if r.ConnectionsFor(shared.RoleVolunteer, "vol_1") != 0 {
		t.Error("Expected no connections after unregister")
	}
}

func TestRegistry_IdempotentRegister(t *testing.T) {
	r := NewRegistry()
	sender := &fakeSender{}

	// registering the same binding twice must not duplicate bookkeeping
	r.Register("t1", shared.RoleOrganization, "org_42", sender)
	r.Register("t1", shared.RoleOrganization, "org_42", sender)

	if r.Count() != 1 {
		t.Errorf("Expected 1 transport, got %d", r.Count())
	}
	if got := r.ConnectionsFor(shared.RoleOrganization, "org_42"); got != 1 {
		t.Errorf("Expected 1 connection, got %d", got)
	}

	delivered := r.Publish(shared.RoleOrganization, "org_42", []byte("n1"))
	if delivered != 1 {
		t.Errorf("Expected delivery to exactly 1 transport, got %d", delivered)
	}
	if sender.count() != 1 {
		t.Errorf("Expected exactly 1 frame, got %d", sender.count())
	}
}

func TestRegistry_PublishFanout(t *testing.T) {
	r := NewRegistry()
	s1 := &fakeSender{}
	s2 := &fakeSender{}
	s3 := &fakeSender{}

	// two tabs for org_42, one unrelated recipient
	r.Register("t1", shared.RoleOrganization, "org_42", s1)
	r.Register("t2", shared.RoleOrganization, "org_42", s2)
	r.Register("t3", shared.RoleOrganization, "org_99", s3)

	delivered := r.Publish(shared.RoleOrganization, "org_42", []byte("n9"))
	if delivered != 2 {
		t.Errorf("Expected delivery to 2 transports, got %d", delivered)
	}
	if s1.count() != 1 || s2.count() != 1 {
		t.Errorf("Expected both org_42 transports to receive the event, got %d and %d", s1.count(), s2.count())
	}
	if s3.count() != 0 {
		t.Errorf("Expected org_99 transport to receive nothing, got %d frames", s3.count())
	}
}

func TestRegistry_RoleScoping(t *testing.T) {
	r := NewRegistry()
	vol := &fakeSender{}
	org := &fakeSender{}

	// same id under two roles must not cross-deliver
	r.Register("t1", shared.RoleVolunteer, "u1", vol)
	r.Register("t2", shared.RoleOrganization, "u1", org)

	r.Publish(shared.RoleVolunteer, "u1", []byte("n1"))
	if vol.count() != 1 {
		t.Errorf("Expected volunteer transport to receive the event, got %d", vol.count())
	}
	if org.count() != 0 {
		t.Errorf("Expected organization transport to receive nothing, got %d", org.count())
	}
}

func TestRegistry_EmptyRecipientID(t *testing.T) {
	r := NewRegistry()

	// unauthenticated clients register with no identity; must be a silent no-op
	r.Register("t1", shared.RoleVolunteer, "", &fakeSender{})
	if r.Count() != 0 {
		t.Errorf("Expected no entry for empty recipient id, got %d", r.Count())
	}
}

func TestRegistry_OfflineRecipientSilentDrop(t *testing.T) {
	r := NewRegistry()

	delivered := r.Publish(shared.RoleVolunteer, "vol_offline", []byte("n1"))
	if delivered != 0 {
		t.Errorf("Expected 0 deliveries for offline recipient, got %d", delivered)
	}
}

func TestRegistry_Rebind(t *testing.T) {
	r := NewRegistry()
	sender := &fakeSender{}

	r.Register("t1", shared.RoleVolunteer, "vol_1", sender)
	r.Register("t1", shared.RoleVolunteer, "vol_2", sender)

	if got := r.ConnectionsFor(shared.RoleVolunteer, "vol_1"); got != 0 {
		t.Errorf("Expected old binding to be dropped, got %d connections", got)
	}
	if got := r.ConnectionsFor(shared.RoleVolunteer, "vol_2"); got != 1 {
		t.Errorf("Expected new binding, got %d connections", got)
	}
	if r.Count() != 1 {
		t.Errorf("Expected 1 transport total, got %d", r.Count())
	}
}

func TestRegistry_FailedSendNotCounted(t *testing.T) {
	r := NewRegistry()
	ok := &fakeSender{}
	broken := &fakeSender{err: errors.New("buffer full")}

	r.Register("t1", shared.RoleAdmin, "admin_1", ok)
	r.Register("t2", shared.RoleAdmin, "admin_1", broken)

	delivered := r.Publish(shared.RoleAdmin, "admin_1", []byte("n1"))
	if delivered != 1 {
		t.Errorf("Expected 1 successful delivery, got %d", delivered)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("t%d", n)
			r.Register(id, shared.RoleVolunteer, "vol_1", &fakeSender{})
			r.Publish(shared.RoleVolunteer, "vol_1", []byte("n"))
		}(i)
	}
	wg.Wait()

	if r.Count() != 10 {
		t.Errorf("Expected 10 transports, got %d", r.Count())
	}
	if got := r.ConnectionsFor(shared.RoleVolunteer, "vol_1"); got != 10 {
		t.Errorf("Expected 10 connections for vol_1, got %d", got)
	}
}
