package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/sloimpact/internal/model"
)

// SaveImpact appends an impact to the ledger and returns its new ID.
//
// The impact's CauseID must name an impact already in the ledger (or be empty
// for the root of a chain). The impact value itself is not modified.
func (s *Store) SaveImpact(ctx context.Context, impact *model.Impact) (string, error) {
	if impact == nil {
		return "", fmt.Errorf("write impact: nil impact")
	}
	if impact.Location.IsZero() {
		return "", fmt.Errorf("write impact: location is required")
	}

	id := s.ids.Generate()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO impacts (id, cause_id, location_kind, location_id, seq, created_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM impacts), ?)
	`,
		id,
		nullString(impact.CauseID),
		impact.Location.Kind.String(),
		impact.Location.ID,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("write impact: %w", err)
	}
	return id, nil
}

// ReadImpact returns a single impact. Cause is nil; CauseID is set.
// Returns ErrNotFound if no impact has the ID.
func (s *Store) ReadImpact(ctx context.Context, id string) (*model.Impact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, cause_id, location_kind, location_id
		FROM impacts
		WHERE id = ?
	`, id)
	imp, err := scanImpact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read impact %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read impact %q: %w", id, err)
	}
	return imp, nil
}

// ReadChain returns the impact with the given ID and all its causes, head
// first, linked through their Cause pointers.
// Returns ErrNotFound if no impact has the ID.
func (s *Store) ReadChain(ctx context.Context, id string) ([]*model.Impact, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE chain(id, cause_id, location_kind, location_id, depth) AS (
			SELECT id, cause_id, location_kind, location_id, 0
			FROM impacts
			WHERE id = ?
			UNION ALL
			SELECT i.id, i.cause_id, i.location_kind, i.location_id, c.depth + 1
			FROM impacts i
			JOIN chain c ON i.id = c.cause_id
		)
		SELECT id, cause_id, location_kind, location_id
		FROM chain
		ORDER BY depth ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query chain: %w", err)
	}
	defer rows.Close()

	var chain []*model.Impact
	for rows.Next() {
		imp, err := scanImpact(rows)
		if err != nil {
			return nil, err
		}
		chain = append(chain, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chain: %w", err)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("read chain %q: %w", id, ErrNotFound)
	}

	linkChain(chain)
	return chain, nil
}

// ListImpacts returns every impact in the ledger ordered by seq.
// Returns an empty slice (not nil) for an empty ledger.
func (s *Store) ListImpacts(ctx context.Context) ([]*model.Impact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cause_id, location_kind, location_id
		FROM impacts
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query impacts: %w", err)
	}
	defer rows.Close()

	impacts := []*model.Impact{}
	for rows.Next() {
		imp, err := scanImpact(rows)
		if err != nil {
			return nil, err
		}
		impacts = append(impacts, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate impacts: %w", err)
	}
	return impacts, nil
}

// CountImpacts returns the number of impacts in the ledger.
func (s *Store) CountImpacts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM impacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count impacts: %w", err)
	}
	return n, nil
}

// CountImpactsAt returns the number of impacts recorded at loc.
func (s *Store) CountImpactsAt(ctx context.Context, loc model.Location) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM impacts
		WHERE location_kind = ? AND location_id = ?
	`, loc.Kind.String(), loc.ID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count impacts at %s: %w", loc, err)
	}
	return n, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanImpact(sc scanner) (*model.Impact, error) {
	var (
		imp     model.Impact
		causeID sql.NullString
		kind    string
	)
	if err := sc.Scan(&imp.ID, &causeID, &kind, &imp.Location.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan impact: %w", err)
	}
	k, err := model.ParseLocationKind(kind)
	if err != nil {
		return nil, fmt.Errorf("scan impact %q: %w", imp.ID, err)
	}
	imp.Location.Kind = k
	imp.CauseID = causeID.String
	return &imp, nil
}

// linkChain sets Cause pointers along a head-first chain.
func linkChain(chain []*model.Impact) {
	for i := 0; i+1 < len(chain); i++ {
		chain[i].Cause = chain[i+1]
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
