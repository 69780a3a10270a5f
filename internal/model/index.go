package model

// index holds the ID lookups of a System. Slices keep declaration order so
// traversal over them is deterministic.
type index struct {
	interfaces map[string]*Interface
	components map[string]*Component
	tasks      map[string]*Task
	steps      map[string]*SagaStep
	stepSaga   map[string]*Saga
	rules      map[string]*SloRule

	provider  map[string]*Component   // interface ID -> providing component
	consumers map[string][]*Component // interface ID -> consuming components
	realizers map[string][]*SagaStep  // interface ID -> steps realizing it
}

func (s *System) lookup() *index {
	s.once.Do(func() {
		s.idx = buildIndex(s)
	})
	return s.idx
}

func buildIndex(s *System) *index {
	idx := &index{
		interfaces: make(map[string]*Interface),
		components: make(map[string]*Component),
		tasks:      make(map[string]*Task),
		steps:      make(map[string]*SagaStep),
		stepSaga:   make(map[string]*Saga),
		rules:      make(map[string]*SloRule),
		provider:   make(map[string]*Component),
		consumers:  make(map[string][]*Component),
		realizers:  make(map[string][]*SagaStep),
	}

	for _, face := range s.Architecture.Interfaces {
		if _, dup := idx.interfaces[face.ID]; !dup {
			idx.interfaces[face.ID] = face
		}
	}
	for _, c := range s.Architecture.Components {
		if _, dup := idx.components[c.ID]; !dup {
			idx.components[c.ID] = c
		}
		for _, faceID := range c.Provides {
			if _, taken := idx.provider[faceID]; !taken {
				idx.provider[faceID] = c
			}
		}
		for _, faceID := range c.Consumes {
			idx.consumers[faceID] = append(idx.consumers[faceID], c)
		}
	}
	for _, t := range s.Process.Tasks {
		if _, dup := idx.tasks[t.ID]; !dup {
			idx.tasks[t.ID] = t
		}
	}
	for _, saga := range s.Sagas {
		for _, step := range saga.Steps {
			if _, dup := idx.steps[step.ID]; !dup {
				idx.steps[step.ID] = step
				idx.stepSaga[step.ID] = saga
			}
			idx.realizers[step.InterfaceID] = append(idx.realizers[step.InterfaceID], step)
		}
	}
	for _, r := range s.Rules {
		if _, dup := idx.rules[r.ID]; !dup {
			idx.rules[r.ID] = r
		}
	}
	return idx
}

// Interface returns the interface with the given ID.
func (s *System) Interface(id string) (*Interface, bool) {
	face, ok := s.lookup().interfaces[id]
	return face, ok
}

// Component returns the component with the given ID.
func (s *System) Component(id string) (*Component, bool) {
	c, ok := s.lookup().components[id]
	return c, ok
}

// Task returns the business-process task with the given ID.
func (s *System) Task(id string) (*Task, bool) {
	t, ok := s.lookup().tasks[id]
	return t, ok
}

// Step returns the saga step with the given ID.
func (s *System) Step(id string) (*SagaStep, bool) {
	step, ok := s.lookup().steps[id]
	return step, ok
}

// SagaOf returns the saga owning the step with the given ID.
func (s *System) SagaOf(stepID string) (*Saga, bool) {
	saga, ok := s.lookup().stepSaga[stepID]
	return saga, ok
}

// Rule returns the SLO rule with the given ID.
func (s *System) Rule(id string) (*SloRule, bool) {
	r, ok := s.lookup().rules[id]
	return r, ok
}

// Provider returns the component providing the interface.
func (s *System) Provider(interfaceID string) (*Component, bool) {
	c, ok := s.lookup().provider[interfaceID]
	return c, ok
}

// ConsumersOf returns the components consuming the interface, in declaration order.
func (s *System) ConsumersOf(interfaceID string) []*Component {
	return s.lookup().consumers[interfaceID]
}

// StepsRealizing returns every saga step, across all sagas, whose realized
// interface has the given ID. Matching is by ID.
func (s *System) StepsRealizing(interfaceID string) []*SagaStep {
	return s.lookup().realizers[interfaceID]
}
