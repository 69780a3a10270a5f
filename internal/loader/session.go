package loader

import (
	"errors"
	"fmt"

	"github.com/roach88/sloimpact/internal/model"
)

// Error codes reported while resolving a document.
const (
	ErrCodeNotFound   = "E001" // file missing
	ErrCodeParse      = "E002" // syntax or schema error
	ErrCodeFormat     = "E003" // unsupported file extension
	ErrCodeMissingID  = "E010" // element without an ID
	ErrCodeDuplicate  = "E011" // ID registered twice
	ErrCodeDangling   = "E012" // reference to an unregistered ID
	ErrCodeNoLocation = "E013" // rule without interface or component
)

// LoadError describes one problem with a model document.
type LoadError struct {
	Code    string
	Field   string
	Message string
}

func (e *LoadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Session maps external IDs to the model objects created for them during one
// import. It is not safe for concurrent use and must not outlive the import.
type Session struct {
	interfaces map[string]*model.Interface
	components map[string]*model.Component
	tasks      map[string]*model.Task
	steps      map[string]*model.SagaStep
	rules      map[string]*model.SloRule

	errs []error
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		interfaces: make(map[string]*model.Interface),
		components: make(map[string]*model.Component),
		tasks:      make(map[string]*model.Task),
		steps:      make(map[string]*model.SagaStep),
		rules:      make(map[string]*model.SloRule),
	}
}

// Interface returns the interface registered under id.
func (s *Session) Interface(id string) (*model.Interface, bool) {
	v, ok := s.interfaces[id]
	return v, ok
}

// Component returns the component registered under id.
func (s *Session) Component(id string) (*model.Component, bool) {
	v, ok := s.components[id]
	return v, ok
}

// Task returns the task registered under id.
func (s *Session) Task(id string) (*model.Task, bool) {
	v, ok := s.tasks[id]
	return v, ok
}

// Step returns the saga step registered under id.
func (s *Session) Step(id string) (*model.SagaStep, bool) {
	v, ok := s.steps[id]
	return v, ok
}

// Rule returns the rule registered under id.
func (s *Session) Rule(id string) (*model.SloRule, bool) {
	v, ok := s.rules[id]
	return v, ok
}

// Resolve builds a system from doc.
//
// Elements are registered first, then every reference is checked against the
// registry. All problems are collected; the returned error joins them.
func (s *Session) Resolve(doc *Document) (*model.System, error) {
	s.errs = nil

	sys := &model.System{
		ID:   doc.ID,
		Name: doc.Name,
		Architecture: model.Architecture{
			ID:   doc.Architecture.ID,
			Name: doc.Architecture.Name,
		},
		Process: model.Process{
			ID:   doc.Process.ID,
			Name: doc.Process.Name,
		},
	}
	if doc.Architecture.ID == "" {
		s.fail(ErrCodeMissingID, "architecture.id", "architecture id is required")
	}

	for i, e := range doc.Architecture.Interfaces {
		field := fmt.Sprintf("architecture.interfaces[%d]", i)
		face := &model.Interface{ID: e.ID, Name: e.Name}
		if register(s, s.interfaces, field, e.ID, face) {
			sys.Architecture.Interfaces = append(sys.Architecture.Interfaces, face)
		}
	}
	for i, e := range doc.Process.Tasks {
		field := fmt.Sprintf("process.tasks[%d]", i)
		task := &model.Task{ID: e.ID, Name: e.Name}
		if register(s, s.tasks, field, e.ID, task) {
			sys.Process.Tasks = append(sys.Process.Tasks, task)
		}
	}

	for i, c := range doc.Architecture.Components {
		field := fmt.Sprintf("architecture.components[%d]", i)
		comp := &model.Component{ID: c.ID, Name: c.Name}
		for _, id := range c.Provides {
			if requireRef(s, s.interfaces, field+".provides", "interface", id) {
				comp.Provides = append(comp.Provides, id)
			}
		}
		for _, id := range c.Consumes {
			if requireRef(s, s.interfaces, field+".consumes", "interface", id) {
				comp.Consumes = append(comp.Consumes, id)
			}
		}
		if register(s, s.components, field, c.ID, comp) {
			sys.Architecture.Components = append(sys.Architecture.Components, comp)
		}
	}

	for i, sg := range doc.Sagas {
		field := fmt.Sprintf("sagas[%d]", i)
		if sg.ID == "" {
			s.fail(ErrCodeMissingID, field, "saga id is required")
		}
		saga := &model.Saga{ID: sg.ID, Name: sg.Name}
		for j, st := range sg.Steps {
			stepField := fmt.Sprintf("%s.steps[%d]", field, j)
			step := &model.SagaStep{ID: st.ID, Name: st.Name, InterfaceID: st.Interface, TaskID: st.Task}
			requireRef(s, s.interfaces, stepField+".interface", "interface", st.Interface)
			requireRef(s, s.tasks, stepField+".task", "task", st.Task)
			if register(s, s.steps, stepField, st.ID, step) {
				saga.Steps = append(saga.Steps, step)
			}
		}
		sys.Sagas = append(sys.Sagas, saga)
	}

	for i, r := range doc.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		rule := &model.SloRule{
			ID:             r.ID,
			Name:           r.Name,
			ArchitectureID: r.Architecture,
			InterfaceID:    r.Interface,
			ComponentID:    r.Component,
			Metric:         r.Metric,
			Threshold:      r.Threshold,
			Period:         r.Period,
		}
		if rule.ArchitectureID == "" {
			rule.ArchitectureID = doc.Architecture.ID
		}
		switch {
		case r.Interface != "":
			requireRef(s, s.interfaces, field+".interface", "interface", r.Interface)
		case r.Component != "":
			requireRef(s, s.components, field+".component", "component", r.Component)
		default:
			s.fail(ErrCodeNoLocation, field, fmt.Sprintf("rule %q has neither interface nor component", r.ID))
		}
		if register(s, s.rules, field, r.ID, rule) {
			sys.Rules = append(sys.Rules, rule)
		}
	}

	if len(s.errs) > 0 {
		return nil, errors.Join(s.errs...)
	}
	return sys, nil
}

// register adds v under id. Returns false for missing or duplicate IDs.
func register[T any](s *Session, registry map[string]T, field, id string, v T) bool {
	if id == "" {
		s.fail(ErrCodeMissingID, field, "id is required")
		return false
	}
	if _, dup := registry[id]; dup {
		s.fail(ErrCodeDuplicate, field, fmt.Sprintf("duplicate id %q", id))
		return false
	}
	registry[id] = v
	return true
}

// requireRef reports a dangling reference unless id is registered.
func requireRef[T any](s *Session, registry map[string]T, field, kind, id string) bool {
	if _, ok := registry[id]; !ok {
		s.fail(ErrCodeDangling, field, fmt.Sprintf("unknown %s %q", kind, id))
		return false
	}
	return true
}

func (s *Session) fail(code, field, msg string) {
	s.errs = append(s.errs, &LoadError{Code: code, Field: field, Message: msg})
}
