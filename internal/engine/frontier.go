package engine

import "github.com/roach88/sloimpact/internal/model"

// initialFrontier returns the interfaces a rule is located at.
//
// An interface rule yields that interface. A component rule yields every
// interface the component provides, in declaration order. A rule with neither
// has no location.
func initialFrontier(sys *model.System, rule *model.SloRule) ([]queueItem, error) {
	switch {
	case rule.InterfaceID != "":
		loc := model.InterfaceAt(rule.InterfaceID)
		if _, ok := sys.Interface(rule.InterfaceID); !ok {
			return nil, lookupError(loc, "rule %q watches an interface missing from system %q", rule.ID, sys.ID)
		}
		return []queueItem{{location: loc}}, nil

	case rule.ComponentID != "":
		comp, ok := sys.Component(rule.ComponentID)
		if !ok {
			return nil, lookupError(model.Location{}, "rule %q watches component %q missing from system %q",
				rule.ID, rule.ComponentID, sys.ID)
		}
		items := make([]queueItem, 0, len(comp.Provides))
		for _, faceID := range comp.Provides {
			items = append(items, queueItem{location: model.InterfaceAt(faceID)})
		}
		return items, nil

	default:
		return nil, inputError("violation of rule %q does not resolve to a location", rule.ID)
	}
}
