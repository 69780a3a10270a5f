package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/sloimpact/internal/engine"
	"github.com/roach88/sloimpact/internal/loader"
	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/store"
	"github.com/roach88/sloimpact/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each run uses a fresh in-memory SQLite ledger with sequential impact IDs.
// A failed calculation is part of the result, not an error; errors are
// reserved for scenarios that cannot run at all.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	sys, err := loader.LoadFile(scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDs("impact")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.SaveSystem(ctx, sys); err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}

	rule, ok := sys.Rule(scenario.Violation.Rule)
	if !ok {
		return nil, fmt.Errorf("rule %q not in model %s", scenario.Violation.Rule, scenario.Model)
	}

	eng := engine.New(st, st,
		engine.WithMaxImpacts(scenario.MaxImpacts),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	result := NewResult()
	notes, calcErr := eng.CalculateImpacts(ctx, &model.Violation{
		Rule:      rule,
		Threshold: scenario.Violation.Value,
		Period:    scenario.Violation.Period,
	})
	if calcErr != nil {
		code, ok := engine.CodeOf(calcErr)
		if !ok {
			return nil, fmt.Errorf("calculation failed: %w", calcErr)
		}
		result.ErrorCode = string(code)
	}

	for _, n := range notes {
		fp, err := n.Fingerprint()
		if err != nil {
			return nil, err
		}
		nt := NotificationTrace{Task: n.Task(), TopImpactID: n.TopLevelImpact.ID, Fingerprint: fp}
		for _, loc := range n.TopLevelImpact.Path() {
			nt.Path = append(nt.Path, loc.String())
		}
		result.Notifications = append(result.Notifications, nt)
	}

	impacts, err := st.ListImpacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	for i, imp := range impacts {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:      int64(i + 1),
			ID:       imp.ID,
			Location: imp.Location.String(),
			Cause:    imp.CauseID,
		})
	}

	expectsError := slices.ContainsFunc(scenario.Assertions, func(a Assertion) bool { return a.Type == AssertError })
	if calcErr != nil && !expectsError {
		result.AddError(fmt.Sprintf("calculation failed: %v", calcErr))
	}
	for _, a := range scenario.Assertions {
		if msg := check(a, result); msg != "" {
			result.AddError(msg)
		}
	}
	return result, nil
}

// check evaluates one assertion and returns a failure message, or "" if it
// holds.
func check(a Assertion, r *Result) string {
	switch a.Type {
	case AssertNotificationCount:
		if len(r.Notifications) != a.Count {
			return fmt.Sprintf("notification_count: got %d, want %d", len(r.Notifications), a.Count)
		}
	case AssertImpactCount:
		if len(r.Trace) != a.Count {
			return fmt.Sprintf("impact_count: got %d, want %d", len(r.Trace), a.Count)
		}
	case AssertImpactsAt:
		n := 0
		for _, ev := range r.Trace {
			if ev.Location == a.Location {
				n++
			}
		}
		if n != a.Count {
			return fmt.Sprintf("impacts_at %s: got %d, want %d", a.Location, n, a.Count)
		}
	case AssertNotification:
		for _, nt := range r.Notifications {
			if nt.Task == a.Task && (a.Path == nil || slices.Equal(nt.Path, a.Path)) {
				return ""
			}
		}
		if a.Path == nil {
			return fmt.Sprintf("notification: no notification reached %s", a.Task)
		}
		return fmt.Sprintf("notification: no notification reached %s along %s", a.Task, strings.Join(a.Path, " <- "))
	case AssertError:
		if r.ErrorCode != a.Code {
			return fmt.Sprintf("error: got %q, want %q", r.ErrorCode, a.Code)
		}
	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}
