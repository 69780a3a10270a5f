package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sloimpact/internal/model"
)

// Scenario defines one propagation run and its expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the path of the model document (YAML or CUE). Relative paths
	// are resolved against the scenario file.
	Model string `yaml:"model"`

	// Violation is the alert to calculate.
	Violation ViolationInput `yaml:"violation"`

	// MaxImpacts bounds the calculation. Zero means unbounded.
	MaxImpacts int `yaml:"max_impacts,omitempty"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// ViolationInput describes the violation a scenario reports.
type ViolationInput struct {
	Rule   string  `yaml:"rule"`
	Value  float64 `yaml:"value,omitempty"`
	Period float64 `yaml:"period,omitempty"`
}

// Assertion validates the outcome of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected number (notification_count, impact_count,
	// impacts_at).
	Count int `yaml:"count,omitempty"`

	// Location is "kind:id" (impacts_at).
	Location string `yaml:"location,omitempty"`

	// Task and Path describe an expected notification (notification). Path
	// is head first.
	Task string   `yaml:"task,omitempty"`
	Path []string `yaml:"path,omitempty"`

	// Code is the expected propagation error code (error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertNotificationCount = "notification_count"
	AssertImpactCount       = "impact_count"
	AssertImpactsAt         = "impacts_at"
	AssertNotification      = "notification"
	AssertError             = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are errors. The model path is resolved against the
// scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if _, err := os.Stat(s.Model); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.Model)
	}
	if s.Violation.Rule == "" {
		return fmt.Errorf("violation.rule is required")
	}
	if s.MaxImpacts < 0 {
		return fmt.Errorf("max_impacts must not be negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertNotificationCount, AssertImpactCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	case AssertImpactsAt:
		if _, err := model.ParseLocation(a.Location); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertNotification:
		if a.Task == "" {
			return fmt.Errorf("assertions[%d]: task is required", index)
		}
		for _, loc := range a.Path {
			if _, err := model.ParseLocation(loc); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
