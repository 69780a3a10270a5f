package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/roach88/sloimpact/internal/model"
)

// Memory is an in-process implementation of the Store method set.
//
// Thread-safety: all methods are safe for concurrent use.
type Memory struct {
	mu            sync.RWMutex
	ids           IDGenerator
	impacts       map[string]*model.Impact
	order         []string // impact IDs by seq
	systems       map[string][]byte
	systemOrder   []string
	notifications []NotificationRecord
}

// NewMemory creates an empty in-memory store. A nil generator means
// UUIDv7Generator.
func NewMemory(ids IDGenerator) *Memory {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Memory{
		ids:     ids,
		impacts: make(map[string]*model.Impact),
		systems: make(map[string][]byte),
	}
}

// SaveImpact appends an impact to the ledger and returns its new ID.
func (m *Memory) SaveImpact(_ context.Context, impact *model.Impact) (string, error) {
	if impact == nil {
		return "", fmt.Errorf("write impact: nil impact")
	}
	if impact.Location.IsZero() {
		return "", fmt.Errorf("write impact: location is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if impact.CauseID != "" {
		if _, ok := m.impacts[impact.CauseID]; !ok {
			return "", fmt.Errorf("write impact: cause %q not in ledger", impact.CauseID)
		}
	}
	id := m.ids.Generate()
	if _, dup := m.impacts[id]; dup {
		return "", fmt.Errorf("write impact: duplicate id %q", id)
	}

	m.impacts[id] = &model.Impact{ID: id, Location: impact.Location, CauseID: impact.CauseID}
	m.order = append(m.order, id)
	return id, nil
}

// ReadImpact returns a copy of a single impact. Cause is nil; CauseID is set.
func (m *Memory) ReadImpact(_ context.Context, id string) (*model.Impact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	imp, ok := m.impacts[id]
	if !ok {
		return nil, fmt.Errorf("read impact %q: %w", id, ErrNotFound)
	}
	cp := *imp
	return &cp, nil
}

// ReadChain returns the impact and all its causes, head first.
func (m *Memory) ReadChain(_ context.Context, id string) ([]*model.Impact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.impacts[id]; !ok {
		return nil, fmt.Errorf("read chain %q: %w", id, ErrNotFound)
	}
	var chain []*model.Impact
	for cur := id; cur != ""; {
		imp := *m.impacts[cur]
		chain = append(chain, &imp)
		cur = imp.CauseID
	}
	linkChain(chain)
	return chain, nil
}

// ListImpacts returns copies of every impact ordered by seq.
func (m *Memory) ListImpacts(_ context.Context) ([]*model.Impact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	impacts := make([]*model.Impact, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.impacts[id]
		impacts = append(impacts, &cp)
	}
	return impacts, nil
}

// CountImpacts returns the number of impacts in the ledger.
func (m *Memory) CountImpacts(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order), nil
}

// CountImpactsAt returns the number of impacts recorded at loc.
func (m *Memory) CountImpactsAt(_ context.Context, loc model.Location) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, imp := range m.impacts {
		if imp.Location == loc {
			n++
		}
	}
	return n, nil
}

// SaveSystem stores a system under its architecture ID.
//
// The system is kept in encoded form so later changes to the caller's value
// do not leak into the store, matching Store.
func (m *Memory) SaveSystem(_ context.Context, sys *model.System) error {
	if sys == nil || sys.Architecture.ID == "" {
		return fmt.Errorf("write system: architecture id is required")
	}
	doc, err := json.Marshal(sys)
	if err != nil {
		return fmt.Errorf("write system: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.systems[sys.Architecture.ID]; !exists {
		m.systemOrder = append(m.systemOrder, sys.Architecture.ID)
	}
	m.systems[sys.Architecture.ID] = doc
	return nil
}

// FindSystemByArchitectureID returns a fresh copy of the stored system.
func (m *Memory) FindSystemByArchitectureID(_ context.Context, architectureID string) (*model.System, error) {
	m.mu.RLock()
	doc, ok := m.systems[architectureID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("read system %q: %w", architectureID, ErrNotFound)
	}

	var sys model.System
	if err := json.Unmarshal(doc, &sys); err != nil {
		return nil, fmt.Errorf("decode system %q: %w", architectureID, err)
	}
	return &sys, nil
}

// ListSystems returns every stored system in the order they were first saved.
func (m *Memory) ListSystems(ctx context.Context) ([]SystemSummary, error) {
	m.mu.RLock()
	ids := append([]string(nil), m.systemOrder...)
	m.mu.RUnlock()

	systems := make([]SystemSummary, 0, len(ids))
	for _, id := range ids {
		sys, err := m.FindSystemByArchitectureID(ctx, id)
		if err != nil {
			return nil, err
		}
		systems = append(systems, SystemSummary{ArchitectureID: id, SystemID: sys.ID, Name: sys.Name})
	}
	return systems, nil
}

// RecordNotification appends a notification record and returns its seq.
func (m *Memory) RecordNotification(_ context.Context, rec NotificationRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.impacts[rec.TopImpactID]; !ok {
		return 0, fmt.Errorf("write notification: impact %q not in ledger", rec.TopImpactID)
	}
	rec.Seq = int64(len(m.notifications) + 1)
	m.notifications = append(m.notifications, rec)
	return rec.Seq, nil
}

// ListNotifications returns notification records ordered by seq. An empty
// ruleID lists all of them.
func (m *Memory) ListNotifications(_ context.Context, ruleID string) ([]NotificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := []NotificationRecord{}
	for _, rec := range m.notifications {
		if ruleID == "" || rec.RuleID == ruleID {
			records = append(records, rec)
		}
	}
	return records, nil
}
