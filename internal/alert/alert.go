package alert

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/sloimpact/internal/model"
)

// Alert is the payload the SLO manager posts when a rule is violated.
type Alert struct {
	ActualValue          float64   `json:"actualValue"`
	ActualPeriod         float64   `json:"actualPeriod" validate:"gte=0"`
	AlertName            string    `json:"alertName" validate:"max=256"`
	AlertDescription     string    `json:"alertDescription" validate:"max=4096"`
	AlertTime            time.Time `json:"alertTime"`
	SloID                string    `json:"sloId" validate:"required,max=256"`
	SloName              string    `json:"sloName" validate:"max=256"`
	TriggeringTargetName string    `json:"triggeringTargetName" validate:"max=256"`
	ArchitectureID       string    `json:"architectureId" validate:"required,max=256"`
	ComponentID          string    `json:"componentId" validate:"max=256"`
	IssueID              string    `json:"issueId" validate:"max=256"`
}

// alertValidate is shared by every Alert.Validate call.
var alertValidate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidAlert is wrapped by every validation failure.
var ErrInvalidAlert = errors.New("invalid alert")

// Validate checks the alert fields.
//
// Returns an error wrapping ErrInvalidAlert that names every failing field.
func (a *Alert) Validate() error {
	err := alertValidate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidAlert, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidAlert, strings.Join(fields, ", "))
}

// Violation builds the violation of rule this alert reports.
func (a *Alert) Violation(rule *model.SloRule) *model.Violation {
	return &model.Violation{
		Rule:      rule,
		Threshold: a.ActualValue,
		Period:    a.ActualPeriod,
		StartTime: a.AlertTime,
	}
}
