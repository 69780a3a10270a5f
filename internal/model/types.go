package model

import "sync"

// System is the complete model of one product: its architecture, its business
// process, the sagas that bind the two, and the SLO rules watching it.
//
// A System must be used through a pointer. Lookups build an index on first use;
// the model must not be mutated after the first lookup.
type System struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Architecture Architecture `json:"architecture"`
	Process      Process      `json:"process"`
	Sagas        []*Saga      `json:"sagas"`
	Rules        []*SloRule   `json:"rules"`

	once sync.Once
	idx  *index
}

// Architecture is the component/interface graph of a system.
// Its ID is the external project identifier alerts refer to.
type Architecture struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Components []*Component `json:"components"`
	Interfaces []*Interface `json:"interfaces"`
}

// Component provides and consumes interfaces.
type Component struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Provides []string `json:"provides"` // interface IDs, declaration order
	Consumes []string `json:"consumes"` // interface IDs
}

// Interface is provided by exactly one component.
type Interface struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Process is the business process the sagas realize.
type Process struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Tasks []*Task `json:"tasks"`
}

// Task is a business-process task.
type Task struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Saga is an ordered sequence of steps.
type Saga struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Steps []*SagaStep `json:"steps"`
}

// SagaStep binds one architecture interface to one business-process task.
type SagaStep struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	InterfaceID string `json:"interface_id"`
	TaskID      string `json:"task_id"`
}

// SloRule is a service-level objective defined on an architecture.
//
// Exactly one of InterfaceID and ComponentID locates the rule. When both are
// set the interface wins (the finer grain).
type SloRule struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ArchitectureID string  `json:"architecture_id"`
	InterfaceID    string  `json:"interface_id,omitempty"`
	ComponentID    string  `json:"component_id,omitempty"`
	Metric         string  `json:"metric,omitempty"`
	Threshold      float64 `json:"threshold"`
	Period         float64 `json:"period"`
}

// HasLocation reports whether the rule points at an interface or a component.
func (r *SloRule) HasLocation() bool {
	return r != nil && (r.InterfaceID != "" || r.ComponentID != "")
}
