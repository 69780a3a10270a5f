package model

import (
	"fmt"
	"strings"
)

// LocationKind distinguishes the three places an impact can sit.
type LocationKind int

const (
	// LocationInterface is an architecture interface.
	LocationInterface LocationKind = iota + 1
	// LocationSagaStep is a step of a saga.
	LocationSagaStep
	// LocationTask is a business-process task.
	LocationTask
)

// String returns the wire name of the kind.
func (k LocationKind) String() string {
	switch k {
	case LocationInterface:
		return "interface"
	case LocationSagaStep:
		return "saga_step"
	case LocationTask:
		return "task"
	default:
		return fmt.Sprintf("LocationKind(%d)", int(k))
	}
}

// ParseLocationKind is the inverse of LocationKind.String.
func ParseLocationKind(s string) (LocationKind, error) {
	switch s {
	case "interface":
		return LocationInterface, nil
	case "saga_step":
		return LocationSagaStep, nil
	case "task":
		return LocationTask, nil
	default:
		return 0, fmt.Errorf("unknown location kind %q", s)
	}
}

// Location is a tagged reference to a model element.
type Location struct {
	Kind LocationKind
	ID   string
}

// InterfaceAt returns the location of an architecture interface.
func InterfaceAt(id string) Location { return Location{Kind: LocationInterface, ID: id} }

// StepAt returns the location of a saga step.
func StepAt(id string) Location { return Location{Kind: LocationSagaStep, ID: id} }

// TaskAt returns the location of a business-process task.
func TaskAt(id string) Location { return Location{Kind: LocationTask, ID: id} }

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool { return l.Kind == 0 && l.ID == "" }

// String renders the location as "kind:id".
func (l Location) String() string {
	return l.Kind.String() + ":" + l.ID
}

// ParseLocation is the inverse of Location.String.
func ParseLocation(s string) (Location, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return Location{}, fmt.Errorf("malformed location %q", s)
	}
	k, err := ParseLocationKind(kind)
	if err != nil {
		return Location{}, err
	}
	return Location{Kind: k, ID: id}, nil
}

// Element is the human-facing description of a location and its container.
type Element struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Container *Element `json:"container,omitempty"`
}

// Describe resolves a location against the system.
//
// Interfaces are contained by their providing component, steps by their saga
// and tasks by the process.
func (s *System) Describe(loc Location) (Element, error) {
	switch loc.Kind {
	case LocationInterface:
		face, ok := s.Interface(loc.ID)
		if !ok {
			return Element{}, fmt.Errorf("interface %q not in system %q", loc.ID, s.ID)
		}
		el := Element{ID: face.ID, Name: face.Name, Type: "Interface"}
		if c, ok := s.Provider(face.ID); ok {
			el.Container = &Element{ID: c.ID, Name: c.Name, Type: "Component"}
		}
		return el, nil
	case LocationSagaStep:
		step, ok := s.Step(loc.ID)
		if !ok {
			return Element{}, fmt.Errorf("saga step %q not in system %q", loc.ID, s.ID)
		}
		el := Element{ID: step.ID, Name: step.Name, Type: "Step"}
		if saga, ok := s.SagaOf(step.ID); ok {
			el.Container = &Element{ID: saga.ID, Name: saga.Name, Type: "Saga"}
		}
		return el, nil
	case LocationTask:
		task, ok := s.Task(loc.ID)
		if !ok {
			return Element{}, fmt.Errorf("task %q not in system %q", loc.ID, s.ID)
		}
		return Element{
			ID:        task.ID,
			Name:      task.Name,
			Type:      "Task",
			Container: &Element{ID: s.Process.ID, Name: s.Process.Name, Type: "Process"},
		}, nil
	default:
		return Element{}, fmt.Errorf("unknown location kind %v", loc.Kind)
	}
}
