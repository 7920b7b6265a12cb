package notify

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Notification mirrors the server's wire representation.
type Notification struct {
	ID            string    `json:"id"`
	RecipientID   string    `json:"recipient_id"`
	RecipientRole string    `json:"recipient_role"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	Link          string    `json:"link,omitempty"`
	Read          bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryFetcher loads the stored notification history for the feed's
// recipient. *Client implements it.
type HistoryFetcher interface {
	History(ctx context.Context) ([]Notification, error)
}

// ReadMarker persists read-state changes. *Client implements it.
type ReadMarker interface {
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context) error
}

type entry struct {
	n   Notification
	seq int // insertion order, breaks createdAt ties
}

// Feed reconciles two independent sources, the REST history fetch and
// live pushes, into one de-duplicated collection sorted newest first.
// The merge is order-independent: a notification seen via push and again
// via fetch (or the other way around) lands in the feed exactly once.
type Feed struct {
	role        string
	recipientID string

	mu      sync.Mutex
	entries []entry
	index   map[string]int // id -> position in entries
	nextSeq int
	loading bool
	onNew   []func(Notification)
}

// NewFeed creates an empty feed for one recipient.
func NewFeed(role, recipientID string) *Feed {
	return &Feed{
		role:        role,
		recipientID: recipientID,
		index:       make(map[string]int),
	}
}

// Attach subscribes the feed to newNotification events on the channel
// and returns the unsubscribe function.
func (f *Feed) Attach(ch *Channel) (off func()) {
	return ch.On(EventNewNotification, func(payload json.RawMessage) {
		var n Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			return
		}
		f.ApplyPush(n)
	})
}

// ApplyPush merges one live event into the feed. Events for other
// recipients and ids already present are dropped. Returns whether the
// notification was added.
func (f *Feed) ApplyPush(n Notification) bool {
	if n.RecipientRole != f.role || n.RecipientID != f.recipientID {
		return false
	}

	f.mu.Lock()
	added := f.addLocked(n)
	hooks := append([]func(Notification){}, f.onNew...)
	f.mu.Unlock()

	if added {
		for _, hook := range hooks {
			hook(n)
		}
	}
	return added
}

// LoadHistory fetches stored history and merges it in. Pushes arriving
// while the fetch is pending keep flowing into the feed; the merge skips
// whatever they already delivered. On fetch failure the feed keeps what
// it has.
func (f *Feed) LoadHistory(ctx context.Context, fetcher HistoryFetcher) error {
	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()

	history, err := fetcher.History(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		return err
	}
	for _, n := range history {
		f.addLocked(n)
	}
	return nil
}

// addLocked inserts one notification and restores descending time order.
// Caller holds f.mu.
func (f *Feed) addLocked(n Notification) bool {
	if _, exists := f.index[n.ID]; exists {
		return false
	}
	f.entries = append(f.entries, entry{n: n, seq: f.nextSeq})
	f.nextSeq++
	f.sortLocked()
	return true
}

func (f *Feed) sortLocked() {
	sort.SliceStable(f.entries, func(i, j int) bool {
		a, b := f.entries[i], f.entries[j]
		if !a.n.CreatedAt.Equal(b.n.CreatedAt) {
			return a.n.CreatedAt.After(b.n.CreatedAt)
		}
		return a.seq < b.seq
	})
	for i, e := range f.entries {
		f.index[e.n.ID] = i
	}
}

// Loading reports whether a history fetch is in flight.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Items returns a copy of the merged collection, newest first.
func (f *Feed) Items() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]Notification, len(f.entries))
	for i, e := range f.entries {
		items[i] = e.n
	}
	return items
}

// Len returns the number of notifications in the feed.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// FilterByType returns the notifications with the given category tag.
// A pure view: the underlying collection is untouched.
func (f *Feed) FilterByType(notifType string) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []Notification
	for _, e := range f.entries {
		if e.n.Type == notifType {
			items = append(items, e.n)
		}
	}
	return items
}

// UnreadCount derives the badge count from the merged collection.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.entries {
		if !e.n.Read {
			count++
		}
	}
	return count
}

// OnNew registers a hook invoked for each newly pushed notification,
// for toast-style alerting independent of the collection itself.
func (f *Feed) OnNew(hook func(Notification)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onNew = append(f.onNew, hook)
}

// MarkRead optimistically flips one notification to read, then confirms
// with the server. On failure the pre-mutation snapshot is restored
// (wholesale, not field-by-field) before the error is returned;
// notifications that arrived in the meantime survive the restore.
func (f *Feed) MarkRead(ctx context.Context, notificationID string, marker ReadMarker) error {
	f.mu.Lock()
	pos, exists := f.index[notificationID]
	if !exists || f.entries[pos].n.Read {
		f.mu.Unlock()
		return nil
	}
	snapshot := f.snapshotLocked()
	f.entries[pos].n.Read = true
	f.mu.Unlock()

	if err := marker.MarkRead(ctx, notificationID); err != nil {
		f.restore(snapshot)
		return err
	}
	return nil
}

// MarkAllRead is the bulk variant of MarkRead with the same optimistic
// apply / compensating restore shape.
func (f *Feed) MarkAllRead(ctx context.Context, marker ReadMarker) error {
	f.mu.Lock()
	snapshot := f.snapshotLocked()
	for i := range f.entries {
		f.entries[i].n.Read = true
	}
	f.mu.Unlock()

	if err := marker.MarkAllRead(ctx); err != nil {
		f.restore(snapshot)
		return err
	}
	return nil
}

type feedSnapshot struct {
	entries []entry
	seq     int
}

// snapshotLocked copies the current state. Caller holds f.mu.
func (f *Feed) snapshotLocked() feedSnapshot {
	entries := make([]entry, len(f.entries))
	copy(entries, f.entries)
	return feedSnapshot{entries: entries, seq: f.nextSeq}
}

// restore replaces current state with the snapshot, then re-applies any
// notifications added after the snapshot was taken so an interleaved
// push is not lost with the rollback.
func (f *Feed) restore(s feedSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var added []entry
	for _, e := range f.entries {
		if e.seq >= s.seq {
			added = append(added, e)
		}
	}

	f.entries = s.entries
	f.index = make(map[string]int, len(f.entries)+len(added))
	for i, e := range f.entries {
		f.index[e.n.ID] = i
	}
	for _, e := range added {
		if _, exists := f.index[e.n.ID]; exists {
			continue
		}
		f.entries = append(f.entries, e)
		f.index[e.n.ID] = len(f.entries) - 1
	}
	f.sortLocked()
}
