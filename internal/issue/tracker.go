package issue

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/sloimpact/internal/store"
)

// Issue is a tracker issue as the provisioner sees it.
type Issue struct {
	ID         string   `json:"id"`
	LocationID string   `json:"location_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Open       bool     `json:"open"`
	Links      []string `json:"links,omitempty"`
}

// Tracker is the issue tracker port.
//
// Issues are attached to a location, the tracker-side identifier of the
// component the violated rule belongs to.
type Tracker interface {
	// OpenIssues returns the open issues attached to locationID.
	OpenIssues(ctx context.Context, locationID string) ([]Issue, error)

	// CreateIssue opens a new issue and returns its ID.
	CreateIssue(ctx context.Context, locationID, title, body string) (string, error)

	// LinkIssues records that from relates to to.
	LinkIssues(ctx context.Context, from, to string) error
}

// MemoryTracker keeps issues in process.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryTracker struct {
	mu     sync.Mutex
	ids    store.IDGenerator
	issues map[string]*Issue
	order  []string
}

// NewMemoryTracker creates an empty tracker. A nil generator means
// store.UUIDv7Generator.
func NewMemoryTracker(ids store.IDGenerator) *MemoryTracker {
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}
	return &MemoryTracker{ids: ids, issues: make(map[string]*Issue)}
}

// OpenIssues implements Tracker.
func (t *MemoryTracker) OpenIssues(_ context.Context, locationID string) ([]Issue, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []Issue{}
	for _, id := range t.order {
		iss := t.issues[id]
		if iss.Open && iss.LocationID == locationID {
			out = append(out, copyIssue(iss))
		}
	}
	return out, nil
}

// CreateIssue implements Tracker.
func (t *MemoryTracker) CreateIssue(_ context.Context, locationID, title, body string) (string, error) {
	if locationID == "" {
		return "", fmt.Errorf("create issue: location is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.ids.Generate()
	if _, dup := t.issues[id]; dup {
		return "", fmt.Errorf("create issue: duplicate id %q", id)
	}
	t.issues[id] = &Issue{ID: id, LocationID: locationID, Title: title, Body: body, Open: true}
	t.order = append(t.order, id)
	return id, nil
}

// LinkIssues implements Tracker. The target does not need to be known to
// this tracker; it usually lives with the SLO manager.
func (t *MemoryTracker) LinkIssues(_ context.Context, from, to string) error {
	if to == "" {
		return fmt.Errorf("link issue %q: target is required", from)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	iss, ok := t.issues[from]
	if !ok {
		return fmt.Errorf("link issue %q: %w", from, store.ErrNotFound)
	}
	for _, l := range iss.Links {
		if l == to {
			return nil
		}
	}
	iss.Links = append(iss.Links, to)
	return nil
}

// Close marks an issue as resolved so it is no longer reused.
func (t *MemoryTracker) Close(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	iss, ok := t.issues[id]
	if !ok {
		return fmt.Errorf("close issue %q: %w", id, store.ErrNotFound)
	}
	iss.Open = false
	return nil
}

// Get returns a copy of one issue.
func (t *MemoryTracker) Get(id string) (Issue, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	iss, ok := t.issues[id]
	if !ok {
		return Issue{}, false
	}
	return copyIssue(iss), true
}

// All returns every issue in creation order.
func (t *MemoryTracker) All() []Issue {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Issue, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, copyIssue(t.issues[id]))
	}
	return out
}

func copyIssue(iss *Issue) Issue {
	cp := *iss
	cp.Links = append([]string(nil), iss.Links...)
	return cp
}

var _ Tracker = (*MemoryTracker)(nil)
