package model

import "fmt"

// NotificationView is the JSON form of a notification handed to issue
// trackers and API clients.
type NotificationView struct {
	ImpactLocation Element      `json:"impactlocation"`
	ViolatedRule   RuleView     `json:"violatedrule"`
	ImpactPath     []ImpactView `json:"impactpath"`
}

// RuleView identifies the violated rule.
type RuleView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ImpactView is one element of the impact path. Cause holds the location ID of
// the preceding impact.
type ImpactView struct {
	Element
	Cause string `json:"cause,omitempty"`
}

// RenderNotification resolves every location of the notification's chain
// against the system, head first.
func RenderNotification(sys *System, n *Notification) (NotificationView, error) {
	if n == nil || n.TopLevelImpact == nil || n.RootCause == nil || n.RootCause.Rule == nil {
		return NotificationView{}, fmt.Errorf("render: incomplete notification")
	}

	head, err := sys.Describe(n.TopLevelImpact.Location)
	if err != nil {
		return NotificationView{}, fmt.Errorf("render: %w", err)
	}

	view := NotificationView{
		ImpactLocation: head,
		ViolatedRule:   RuleView{ID: n.RootCause.Rule.ID, Name: n.RootCause.Rule.Name},
	}
	for _, imp := range n.TopLevelImpact.Chain() {
		el, err := sys.Describe(imp.Location)
		if err != nil {
			return NotificationView{}, fmt.Errorf("render: %w", err)
		}
		iv := ImpactView{Element: el}
		if imp.Cause != nil {
			iv.Cause = imp.Cause.Location.ID
		}
		view.ImpactPath = append(view.ImpactPath, iv)
	}
	return view, nil
}
