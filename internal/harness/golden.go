package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sloimpact/internal/model"
)

// Snapshot captures the observable outcome of a scenario for golden
// comparison.
type Snapshot struct {
	ScenarioName  string              `json:"scenario_name"`
	ErrorCode     string              `json:"error_code,omitempty"`
	Trace         []TraceEvent        `json:"trace"`
	Notifications []NotificationTrace `json:"notifications"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":      ev.Seq,
			"id":       ev.ID,
			"location": ev.Location,
		}
		if ev.Cause != "" {
			m["cause"] = ev.Cause
		}
		trace[i] = m
	}

	notes := make([]any, len(s.Notifications))
	for i, nt := range s.Notifications {
		path := make([]any, len(nt.Path))
		for j, loc := range nt.Path {
			path[j] = loc
		}
		notes[i] = map[string]any{
			"task":          nt.Task,
			"top_impact_id": nt.TopImpactID,
			"path":          path,
			"fingerprint":   nt.Fingerprint,
		}
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"notifications": notes,
	}
	if s.ErrorCode != "" {
		out["error_code"] = s.ErrorCode
	}
	return out
}

// SnapshotJSON renders the canonical JSON snapshot of a result.
func SnapshotJSON(name string, result *Result) ([]byte, error) {
	snap := Snapshot{
		ScenarioName:  name,
		ErrorCode:     result.ErrorCode,
		Trace:         result.Trace,
		Notifications: result.Notifications,
	}
	return model.MarshalCanonical(snap.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
