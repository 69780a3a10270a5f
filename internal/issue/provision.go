package issue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/sloimpact/internal/model"
)

// markerPrefix opens the machine-readable first line of an issue body. The
// line is a markdown comment, so trackers do not render it.
const markerPrefix = "[//]: # ("

// Result describes the issue a notification ended up in.
type Result struct {
	IssueID    string `json:"issue_id"`
	LocationID string `json:"location_id"`
	Title      string `json:"title"`
	Reused     bool   `json:"reused"`
	LinkedTo   string `json:"linked_to,omitempty"`
}

// Provisioner creates or reuses one tracker issue per notification.
type Provisioner struct {
	tracker Tracker
	logger  *slog.Logger
}

// NewProvisioner creates a Provisioner. A nil logger means slog.Default().
func NewProvisioner(tracker Tracker, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{tracker: tracker, logger: logger}
}

// Provision makes sure an open issue reports n and links it to
// relatedIssueID. An empty relatedIssueID skips linking.
//
// The issue is attached to the component the violated rule belongs to: the
// rule's component, or the provider of the rule's interface.
func (p *Provisioner) Provision(ctx context.Context, sys *model.System, n *model.Notification, relatedIssueID string) (Result, error) {
	view, err := model.RenderNotification(sys, n)
	if err != nil {
		return Result{}, provisioningError(KindLookupFailed, err, "render notification")
	}
	locationID, err := IssueLocation(sys, n.RootCause.Rule)
	if err != nil {
		return Result{}, provisioningError(KindLookupFailed, err, "resolve issue location")
	}

	res := Result{LocationID: locationID, Title: Title(view)}

	open, err := p.tracker.OpenIssues(ctx, locationID)
	if err != nil {
		return Result{}, provisioningError(KindLookupFailed, err, "list open issues on %q", locationID)
	}
	for _, iss := range open {
		if SameIssue(iss.Body, n) {
			res.IssueID = iss.ID
			res.Reused = true
			p.logger.InfoContext(ctx, "issue already exists",
				"issue", iss.ID,
				"title", iss.Title)
			break
		}
	}

	if !res.Reused {
		body, err := Body(view)
		if err != nil {
			return Result{}, provisioningError(KindCreationFailed, err, "render body")
		}
		id, err := p.tracker.CreateIssue(ctx, locationID, res.Title, body)
		if err != nil {
			return Result{}, provisioningError(KindCreationFailed, err, "create issue on %q", locationID)
		}
		res.IssueID = id
		p.logger.InfoContext(ctx, "issue created",
			"issue", id,
			"title", res.Title)
	}

	if relatedIssueID != "" {
		if err := p.tracker.LinkIssues(ctx, res.IssueID, relatedIssueID); err != nil {
			return Result{}, provisioningError(KindLinkageFailed, err, "link %q to %q", res.IssueID, relatedIssueID)
		}
		res.LinkedTo = relatedIssueID
	}
	return res, nil
}

// IssueLocation returns the ID of the component issues about rule are
// attached to.
func IssueLocation(sys *model.System, rule *model.SloRule) (string, error) {
	if rule == nil {
		return "", fmt.Errorf("rule is nil")
	}
	if rule.InterfaceID != "" {
		c, ok := sys.Provider(rule.InterfaceID)
		if !ok {
			return "", fmt.Errorf("no component provides interface %q", rule.InterfaceID)
		}
		return c.ID, nil
	}
	if rule.ComponentID != "" {
		if _, ok := sys.Component(rule.ComponentID); !ok {
			return "", fmt.Errorf("component %q not in system %q", rule.ComponentID, sys.ID)
		}
		return rule.ComponentID, nil
	}
	return "", fmt.Errorf("rule %q has no location", rule.ID)
}

// Title renders the issue title, for example
// "Impact on Process Order at Task Pay caused by Violation of SLO rule Latency.".
func Title(view model.NotificationView) string {
	var sb strings.Builder
	sb.WriteString("Impact on ")
	if c := view.ImpactLocation.Container; c != nil {
		fmt.Fprintf(&sb, "%s %s at ", c.Type, c.Name)
	}
	fmt.Fprintf(&sb, "%s %s caused by Violation of SLO rule %s.",
		view.ImpactLocation.Type, view.ImpactLocation.Name, view.ViolatedRule.Name)
	return sb.String()
}

// Body renders the issue body: a hidden first line carrying the JSON view,
// then a markdown summary for humans.
func Body(view model.NotificationView) (string, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(markerPrefix)
	sb.Write(data)
	sb.WriteString(")\n")

	fmt.Fprintf(&sb, "* Location : **%s %s**", view.ImpactLocation.Type, view.ImpactLocation.Name)
	if c := view.ImpactLocation.Container; c != nil {
		fmt.Fprintf(&sb, " in %s %s", c.Type, c.Name)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "* Root Cause : Violation of **%s**\n", view.ViolatedRule.Name)
	sb.WriteString("* Path :\n")
	for _, step := range view.ImpactPath {
		fmt.Fprintf(&sb, "  * **%s %s**\n", step.Type, step.Name)
	}
	return sb.String(), nil
}

// marker is the part of the body JSON that identifies an issue.
type marker struct {
	ImpactLocation struct {
		ID string `json:"id"`
	} `json:"impactlocation"`
	ViolatedRule struct {
		ID string `json:"id"`
	} `json:"violatedrule"`
}

// SameIssue reports whether body was written for a notification with the
// same top-level location and the same violated rule as n. Bodies without a
// readable marker never match.
func SameIssue(body string, n *model.Notification) bool {
	if n == nil || n.TopLevelImpact == nil || n.RootCause == nil || n.RootCause.Rule == nil {
		return false
	}
	m, ok := parseMarker(body)
	if !ok {
		return false
	}
	return m.ImpactLocation.ID == n.TopLevelImpact.Location.ID &&
		m.ViolatedRule.ID == n.RootCause.Rule.ID
}

func parseMarker(body string) (marker, bool) {
	line, _, _ := strings.Cut(body, "\n")
	line = strings.TrimRight(line, "\r ")
	if !strings.HasPrefix(line, markerPrefix) || !strings.HasSuffix(line, ")") {
		return marker{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(line, markerPrefix), ")")

	var m marker
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return marker{}, false
	}
	if m.ImpactLocation.ID == "" || m.ViolatedRule.ID == "" {
		return marker{}, false
	}
	return m, true
}
