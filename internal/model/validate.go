package model

import "fmt"

// Validation error codes (E100-E199)
const (
	ErrMissingID         = "E101" // element without an ID
	ErrDuplicateID       = "E102" // two elements of the same kind share an ID
	ErrDanglingInterface = "E103" // reference to an unknown interface
	ErrDanglingTask      = "E104" // reference to an unknown task
	ErrDanglingComponent = "E105" // reference to an unknown component
	ErrRuleNoLocation    = "E106" // rule with neither interface nor component
	ErrSharedInterface   = "E107" // interface provided by more than one component
	ErrOrphanInterface   = "E108" // interface provided by no component
	ErrWrongArchitecture = "E109" // rule bound to a different architecture
)

// ValidationError represents a model consistency error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks that every reference inside the system resolves.
// Returns all errors found (does not fail-fast).
func Validate(s *System) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if s.Architecture.ID == "" {
		add(ErrMissingID, "architecture", "architecture id is required")
	}

	seen := make(map[string]bool)
	for i, face := range s.Architecture.Interfaces {
		field := fmt.Sprintf("interfaces[%d]", i)
		switch {
		case face.ID == "":
			add(ErrMissingID, field, "interface id is required")
		case seen[face.ID]:
			add(ErrDuplicateID, field, "duplicate interface id %q", face.ID)
		}
		seen[face.ID] = true
	}

	providers := make(map[string]string)
	seen = make(map[string]bool)
	for i, c := range s.Architecture.Components {
		field := fmt.Sprintf("components[%d]", i)
		switch {
		case c.ID == "":
			add(ErrMissingID, field, "component id is required")
		case seen[c.ID]:
			add(ErrDuplicateID, field, "duplicate component id %q", c.ID)
		}
		seen[c.ID] = true

		for _, faceID := range c.Provides {
			if _, ok := s.Interface(faceID); !ok {
				add(ErrDanglingInterface, field+".provides", "unknown interface %q", faceID)
				continue
			}
			if other, taken := providers[faceID]; taken && other != c.ID {
				add(ErrSharedInterface, field+".provides", "interface %q already provided by %q", faceID, other)
				continue
			}
			providers[faceID] = c.ID
		}
		for _, faceID := range c.Consumes {
			if _, ok := s.Interface(faceID); !ok {
				add(ErrDanglingInterface, field+".consumes", "unknown interface %q", faceID)
			}
		}
	}
	for i, face := range s.Architecture.Interfaces {
		if _, ok := providers[face.ID]; !ok && face.ID != "" {
			add(ErrOrphanInterface, fmt.Sprintf("interfaces[%d]", i), "interface %q is provided by no component", face.ID)
		}
	}

	seen = make(map[string]bool)
	for i, t := range s.Process.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		switch {
		case t.ID == "":
			add(ErrMissingID, field, "task id is required")
		case seen[t.ID]:
			add(ErrDuplicateID, field, "duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
	}

	seen = make(map[string]bool)
	for i, saga := range s.Sagas {
		if saga.ID == "" {
			add(ErrMissingID, fmt.Sprintf("sagas[%d]", i), "saga id is required")
		}
		for j, step := range saga.Steps {
			field := fmt.Sprintf("sagas[%d].steps[%d]", i, j)
			switch {
			case step.ID == "":
				add(ErrMissingID, field, "step id is required")
			case seen[step.ID]:
				add(ErrDuplicateID, field, "duplicate step id %q", step.ID)
			}
			seen[step.ID] = true
			if _, ok := s.Interface(step.InterfaceID); !ok {
				add(ErrDanglingInterface, field+".interface", "unknown interface %q", step.InterfaceID)
			}
			if _, ok := s.Task(step.TaskID); !ok {
				add(ErrDanglingTask, field+".task", "unknown task %q", step.TaskID)
			}
		}
	}

	seen = make(map[string]bool)
	for i, r := range s.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		switch {
		case r.ID == "":
			add(ErrMissingID, field, "rule id is required")
		case seen[r.ID]:
			add(ErrDuplicateID, field, "duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true

		if r.ArchitectureID != "" && r.ArchitectureID != s.Architecture.ID {
			add(ErrWrongArchitecture, field, "rule bound to architecture %q, system has %q", r.ArchitectureID, s.Architecture.ID)
		}
		switch {
		case r.InterfaceID != "":
			if _, ok := s.Interface(r.InterfaceID); !ok {
				add(ErrDanglingInterface, field+".interface", "unknown interface %q", r.InterfaceID)
			}
		case r.ComponentID != "":
			if _, ok := s.Component(r.ComponentID); !ok {
				add(ErrDanglingComponent, field+".component", "unknown component %q", r.ComponentID)
			}
		default:
			add(ErrRuleNoLocation, field, "rule %q has neither interface nor component", r.ID)
		}
	}

	return errs
}
