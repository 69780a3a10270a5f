package issue_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sloimpact/internal/engine"
	"github.com/roach88/sloimpact/internal/issue"
	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/store"
	"github.com/roach88/sloimpact/internal/testutil"
)

// notifications runs the credit latency violation against the payment system.
func notifications(t *testing.T) (*model.System, []*model.Notification) {
	t.Helper()
	ctx := context.Background()
	sys := testutil.PaymentSystem()

	mem := store.NewMemory(testutil.NewSequentialIDs("impact"))
	require.NoError(t, mem.SaveSystem(ctx, sys))

	rule, _ := sys.Rule(testutil.RuleCreditLatency)
	notes, err := engine.New(mem, mem).CalculateImpacts(ctx, &model.Violation{Rule: rule, Threshold: 450, Period: 60})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	return sys, notes
}

func TestTitle(t *testing.T) {
	sys, notes := notifications(t)
	view, err := model.RenderNotification(sys, notes[0])
	require.NoError(t, err)

	assert.Equal(t,
		"Impact on Process Order Process at Task Pay Order caused by Violation of SLO rule Credit latency.",
		issue.Title(view))

	view.ImpactLocation.Container = nil
	assert.Equal(t,
		"Impact on Task Pay Order caused by Violation of SLO rule Credit latency.",
		issue.Title(view))
}

func TestBody(t *testing.T) {
	sys, notes := notifications(t)
	view, err := model.RenderNotification(sys, notes[0])
	require.NoError(t, err)

	body, err := issue.Body(view)
	require.NoError(t, err)

	lines := strings.Split(body, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "[//]: # ({"))
	assert.True(t, strings.HasSuffix(lines[0], "})"))
	assert.Equal(t, "* Location : **Task Pay Order** in Process Order Process", lines[1])
	assert.Equal(t, "* Root Cause : Violation of **Credit latency**", lines[2])
	assert.Equal(t, "* Path :", lines[3])
	assert.Equal(t, []string{
		"  * **Task Pay Order**",
		"  * **Step Payment Step**",
		"  * **Interface Pay**",
		"  * **Interface Credit API**",
	}, lines[4:8])

	assert.True(t, issue.SameIssue(body, notes[0]))
	assert.False(t, issue.SameIssue(body, notes[1]))
}

func TestSameIssue_Malformed(t *testing.T) {
	_, notes := notifications(t)
	n := notes[0]

	for name, body := range map[string]string{
		"empty":          "",
		"no marker":      "something broke",
		"not json":       "[//]: # (hello)",
		"missing rule":   `[//]: # ({"impactlocation":{"id":"Task_pay"}})`,
		"unterminated":   `[//]: # ({"impactlocation":{"id":"Task_pay"},"violatedrule":{"id":"slo-credit-latency"}}`,
		"marker not top": "hello\n" + `[//]: # ({"impactlocation":{"id":"Task_pay"},"violatedrule":{"id":"slo-credit-latency"}})`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, issue.SameIssue(body, n))
		})
	}

	ok := `[//]: # ({"impactlocation":{"id":"Task_pay","name":"x (y)"},"violatedrule":{"id":"slo-credit-latency"}})` + "\nrest"
	assert.True(t, issue.SameIssue(ok, n))
	assert.False(t, issue.SameIssue(ok, nil))
}

func TestIssueLocation(t *testing.T) {
	sys := testutil.PaymentSystem()

	rule, _ := sys.Rule(testutil.RuleCreditLatency)
	loc, err := issue.IssueLocation(sys, rule)
	require.NoError(t, err)
	assert.Equal(t, testutil.CompCreditInstitute, loc)

	rule, _ = sys.Rule(testutil.RuleReportingLatency)
	loc, err = issue.IssueLocation(sys, rule)
	require.NoError(t, err)
	assert.Equal(t, testutil.CompReporting, loc)

	_, err = issue.IssueLocation(sys, &model.SloRule{ID: "x", InterfaceID: "ghost"})
	assert.Error(t, err)
	_, err = issue.IssueLocation(sys, &model.SloRule{ID: "x"})
	assert.Error(t, err)
}

func TestProvision_CreatesAndLinks(t *testing.T) {
	sys, notes := notifications(t)
	tracker := issue.NewMemoryTracker(testutil.NewSequentialIDs("issue"))
	p := issue.NewProvisioner(tracker, nil)
	ctx := context.Background()

	first, err := p.Provision(ctx, sys, notes[0], "slo-issue-7")
	require.NoError(t, err)
	assert.Equal(t, issue.Result{
		IssueID:    "issue-1",
		LocationID: testutil.CompCreditInstitute,
		Title:      "Impact on Process Order Process at Task Pay Order caused by Violation of SLO rule Credit latency.",
		LinkedTo:   "slo-issue-7",
	}, first)

	second, err := p.Provision(ctx, sys, notes[1], "slo-issue-7")
	require.NoError(t, err)
	assert.Equal(t, "issue-2", second.IssueID)
	assert.False(t, second.Reused)

	iss, ok := tracker.Get("issue-1")
	require.True(t, ok)
	assert.Equal(t, []string{"slo-issue-7"}, iss.Links)
	assert.Equal(t, testutil.CompCreditInstitute, iss.LocationID)
}

func TestProvision_ReusesOpenIssue(t *testing.T) {
	sys, notes := notifications(t)
	tracker := issue.NewMemoryTracker(testutil.NewSequentialIDs("issue"))
	p := issue.NewProvisioner(tracker, nil)
	ctx := context.Background()

	_, err := p.Provision(ctx, sys, notes[0], "slo-1")
	require.NoError(t, err)

	// A later alert for the same rule reaches the same task again.
	_, again := notifications(t)
	res, err := p.Provision(ctx, sys, again[0], "slo-2")
	require.NoError(t, err)
	assert.True(t, res.Reused)
	assert.Equal(t, "issue-1", res.IssueID)
	assert.Len(t, tracker.All(), 1)

	iss, _ := tracker.Get("issue-1")
	assert.Equal(t, []string{"slo-1", "slo-2"}, iss.Links)

	// Once closed, the next alert opens a fresh issue.
	require.NoError(t, tracker.Close("issue-1"))
	res, err = p.Provision(ctx, sys, again[0], "")
	require.NoError(t, err)
	assert.False(t, res.Reused)
	assert.Equal(t, "issue-2", res.IssueID)
	assert.Empty(t, res.LinkedTo)
}

type brokenTracker struct {
	*issue.MemoryTracker
	listErr, createErr, linkErr error
}

func (b *brokenTracker) OpenIssues(ctx context.Context, loc string) ([]issue.Issue, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.MemoryTracker.OpenIssues(ctx, loc)
}

func (b *brokenTracker) CreateIssue(ctx context.Context, loc, title, body string) (string, error) {
	if b.createErr != nil {
		return "", b.createErr
	}
	return b.MemoryTracker.CreateIssue(ctx, loc, title, body)
}

func (b *brokenTracker) LinkIssues(ctx context.Context, from, to string) error {
	if b.linkErr != nil {
		return b.linkErr
	}
	return b.MemoryTracker.LinkIssues(ctx, from, to)
}

func TestProvision_Errors(t *testing.T) {
	sys, notes := notifications(t)
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name    string
		tracker *brokenTracker
		check   func(error) bool
	}{
		{"list", &brokenTracker{listErr: boom}, issue.IsLookupFailed},
		{"create", &brokenTracker{createErr: boom}, issue.IsCreationFailed},
		{"link", &brokenTracker{linkErr: boom}, issue.IsLinkageFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.tracker.MemoryTracker = issue.NewMemoryTracker(nil)
			_, err := issue.NewProvisioner(tt.tracker, nil).Provision(ctx, sys, notes[0], "related")
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.ErrorIs(t, err, boom)
		})
	}

	// A notification from another system cannot be rendered.
	_, err := issue.NewProvisioner(issue.NewMemoryTracker(nil), nil).Provision(ctx, testutil.CyclicSystem(), notes[0], "")
	assert.True(t, issue.IsLookupFailed(err))
}

func TestMemoryTracker(t *testing.T) {
	ctx := context.Background()
	tr := issue.NewMemoryTracker(testutil.NewSequentialIDs("issue"))

	_, err := tr.CreateIssue(ctx, "", "t", "b")
	assert.Error(t, err)

	id, err := tr.CreateIssue(ctx, "comp-a", "t", "b")
	require.NoError(t, err)
	_, err = tr.CreateIssue(ctx, "comp-b", "t", "b")
	require.NoError(t, err)

	open, err := tr.OpenIssues(ctx, "comp-a")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, id, open[0].ID)

	none, err := tr.OpenIssues(ctx, "comp-c")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	require.NoError(t, tr.LinkIssues(ctx, id, "x"))
	require.NoError(t, tr.LinkIssues(ctx, id, "x"))
	iss, _ := tr.Get(id)
	assert.Equal(t, []string{"x"}, iss.Links)

	assert.ErrorIs(t, tr.LinkIssues(ctx, "ghost", "x"), store.ErrNotFound)
	assert.Error(t, tr.LinkIssues(ctx, id, ""))
	assert.ErrorIs(t, tr.Close("ghost"), store.ErrNotFound)
}
