package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/sloimpact/internal/model"
)

// SystemSummary identifies a stored system without decoding its document.
type SystemSummary struct {
	ArchitectureID string `json:"architecture_id"`
	SystemID       string `json:"system_id"`
	Name           string `json:"name"`
}

// SaveSystem stores a system under its architecture ID, replacing any system
// previously stored under the same ID.
func (s *Store) SaveSystem(ctx context.Context, sys *model.System) error {
	if sys == nil || sys.Architecture.ID == "" {
		return fmt.Errorf("write system: architecture id is required")
	}
	doc, err := json.Marshal(sys)
	if err != nil {
		return fmt.Errorf("write system: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO systems (architecture_id, system_id, name, document, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM systems))
		ON CONFLICT(architecture_id) DO UPDATE SET
			system_id = excluded.system_id,
			name = excluded.name,
			document = excluded.document
	`,
		sys.Architecture.ID,
		sys.ID,
		sys.Name,
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("write system: %w", err)
	}
	return nil
}

// FindSystemByArchitectureID returns the system stored under the
// architecture ID. Each call decodes a fresh value.
// Returns ErrNotFound if no system is stored under the ID.
func (s *Store) FindSystemByArchitectureID(ctx context.Context, architectureID string) (*model.System, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM systems WHERE architecture_id = ?
	`, architectureID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read system %q: %w", architectureID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read system %q: %w", architectureID, err)
	}

	var sys model.System
	if err := json.Unmarshal([]byte(doc), &sys); err != nil {
		return nil, fmt.Errorf("decode system %q: %w", architectureID, err)
	}
	return &sys, nil
}

// ListSystems returns every stored system in the order they were first saved.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListSystems(ctx context.Context) ([]SystemSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT architecture_id, system_id, name
		FROM systems
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query systems: %w", err)
	}
	defer rows.Close()

	systems := []SystemSummary{}
	for rows.Next() {
		var sum SystemSummary
		if err := rows.Scan(&sum.ArchitectureID, &sum.SystemID, &sum.Name); err != nil {
			return nil, fmt.Errorf("scan system: %w", err)
		}
		systems = append(systems, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate systems: %w", err)
	}
	return systems, nil
}
