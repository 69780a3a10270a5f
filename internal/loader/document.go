package loader

// Document is the on-disk shape of a system model.
type Document struct {
	ID           string          `yaml:"id" json:"id"`
	Name         string          `yaml:"name" json:"name,omitempty"`
	Architecture ArchitectureDoc `yaml:"architecture" json:"architecture"`
	Process      ProcessDoc      `yaml:"process" json:"process"`
	Sagas        []SagaDoc       `yaml:"sagas" json:"sagas,omitempty"`
	Rules        []RuleDoc       `yaml:"rules" json:"rules,omitempty"`
}

// ArchitectureDoc lists interfaces and the components around them.
type ArchitectureDoc struct {
	ID         string         `yaml:"id" json:"id"`
	Name       string         `yaml:"name" json:"name,omitempty"`
	Interfaces []ElementDoc   `yaml:"interfaces" json:"interfaces"`
	Components []ComponentDoc `yaml:"components" json:"components"`
}

// ElementDoc is an interface or a task.
type ElementDoc struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name,omitempty"`
}

// ComponentDoc references the interfaces a component provides and consumes.
type ComponentDoc struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name,omitempty"`
	Provides []string `yaml:"provides" json:"provides,omitempty"`
	Consumes []string `yaml:"consumes" json:"consumes,omitempty"`
}

// ProcessDoc is the business process.
type ProcessDoc struct {
	ID    string       `yaml:"id" json:"id"`
	Name  string       `yaml:"name" json:"name,omitempty"`
	Tasks []ElementDoc `yaml:"tasks" json:"tasks"`
}

// SagaDoc is an ordered list of steps.
type SagaDoc struct {
	ID    string    `yaml:"id" json:"id"`
	Name  string    `yaml:"name" json:"name,omitempty"`
	Steps []StepDoc `yaml:"steps" json:"steps"`
}

// StepDoc binds one interface to one task.
type StepDoc struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name,omitempty"`
	Interface string `yaml:"interface" json:"interface"`
	Task      string `yaml:"task" json:"task"`
}

// RuleDoc is an SLO rule. Exactly one of Interface and Component should be
// set; Architecture defaults to the document's architecture.
type RuleDoc struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name,omitempty"`
	Architecture string  `yaml:"architecture" json:"architecture,omitempty"`
	Interface    string  `yaml:"interface" json:"interface,omitempty"`
	Component    string  `yaml:"component" json:"component,omitempty"`
	Metric       string  `yaml:"metric" json:"metric,omitempty"`
	Threshold    float64 `yaml:"threshold" json:"threshold,omitempty"`
	Period       float64 `yaml:"period" json:"period,omitempty"`
}
