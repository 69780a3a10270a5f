package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopScenario(rule string, assertions ...Assertion) *Scenario {
	return &Scenario{
		Name:        "inline",
		Description: "inline scenario",
		Model:       filepath.Join("testdata", "models", "shop.yaml"),
		Violation:   ViolationInput{Rule: rule, Value: 500, Period: 60},
		Assertions:  assertions,
	}
}

func TestRun_CreditLatency(t *testing.T) {
	s := shopScenario("slo-credit-latency",
		Assertion{Type: AssertNotificationCount, Count: 2},
		Assertion{Type: AssertImpactCount, Count: 12},
	)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.ErrorCode)

	require.Len(t, result.Trace, 12)
	assert.Equal(t, TraceEvent{Seq: 1, ID: "impact-1", Location: "interface:face-credit"}, result.Trace[0])
	assert.Equal(t, "impact-9", result.Trace[9].Cause)
	assert.Equal(t, "task:Task_pay", result.Trace[9].Location)

	require.Len(t, result.Notifications, 2)
	assert.Equal(t, "Task_pay", result.Notifications[0].Task)
	assert.Equal(t, "impact-10", result.Notifications[0].TopImpactID)
	assert.Equal(t, []string{
		"task:Task_pay",
		"saga_step:step-payment",
		"interface:face-pay",
		"interface:face-credit",
	}, result.Notifications[0].Path)
	assert.Len(t, result.Notifications[0].Fingerprint, 64)
}

func TestRun_FingerprintsStableAcrossRuns(t *testing.T) {
	s := shopScenario("slo-credit-latency", Assertion{Type: AssertNotificationCount, Count: 2})

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Notifications, second.Notifications)
	assert.NotEqual(t, first.Notifications[0].Fingerprint, first.Notifications[1].Fingerprint)
}

func TestRun_FailedAssertions(t *testing.T) {
	s := shopScenario("slo-reporting-latency",
		Assertion{Type: AssertNotificationCount, Count: 1},
		Assertion{Type: AssertImpactsAt, Location: "interface:face-report-1", Count: 2},
		Assertion{Type: AssertNotification, Task: "Task_pay"},
		Assertion{Type: AssertError, Code: "QUOTA_EXCEEDED"},
	)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"notification_count: got 0, want 1",
		"impacts_at interface:face-report-1: got 1, want 2",
		"notification: no notification reached Task_pay",
		`error: got "", want "QUOTA_EXCEEDED"`,
	}, result.Errors)
}

func TestRun_NotificationPathMismatch(t *testing.T) {
	s := shopScenario("slo-credit-latency", Assertion{
		Type: AssertNotification,
		Task: "Task_pay",
		Path: []string{"task:Task_pay", "interface:face-credit"},
	})

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "task:Task_pay <- interface:face-credit")
}

func TestRun_UnexpectedCalculationError(t *testing.T) {
	s := &Scenario{
		Name:        "loop",
		Description: "loop without an error assertion",
		Model:       filepath.Join("testdata", "models", "loop.cue"),
		Violation:   ViolationInput{Rule: "slo-loop"},
		MaxImpacts:  4,
		Assertions:  []Assertion{{Type: AssertImpactCount, Count: 4}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "QUOTA_EXCEEDED", result.ErrorCode)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "calculation failed")
	assert.Len(t, result.Trace, 4)
	assert.Empty(t, result.Notifications)
}

func TestRun_UnknownRule(t *testing.T) {
	_, err := Run(shopScenario("slo-missing", Assertion{Type: AssertImpactCount}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "slo-missing" not in model`)
}

func TestRun_MissingModel(t *testing.T) {
	s := shopScenario("slo-credit-latency", Assertion{Type: AssertImpactCount})
	s.Model = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load model")
}
