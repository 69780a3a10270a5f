package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/sloimpact/internal/engine"
	"github.com/roach88/sloimpact/internal/issue"
	"github.com/roach88/sloimpact/internal/metrics"
	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/store"
)

// ErrUnknownRule is returned when the alert names a rule its system does not
// define.
var ErrUnknownRule = errors.New("unknown SLO rule")

// Calculator calculates the impacts of a violation.
// Implemented by *engine.Engine.
type Calculator interface {
	CalculateImpacts(ctx context.Context, v *model.Violation) ([]*model.Notification, error)
}

// Recorder keeps a record of delivered notifications.
type Recorder interface {
	RecordNotification(ctx context.Context, rec store.NotificationRecord) (int64, error)
}

// Delivered is one notification of a report.
type Delivered struct {
	Seq         int64                  `json:"seq"`
	Fingerprint string                 `json:"fingerprint"`
	TaskID      string                 `json:"task_id"`
	TopImpactID string                 `json:"top_impact_id"`
	Path        []string               `json:"path"`
	View        model.NotificationView `json:"notification"`
	Issue       *issue.Result          `json:"issue,omitempty"`
}

// Report is the outcome of one received alert.
type Report struct {
	RuleID         string      `json:"rule_id"`
	ArchitectureID string      `json:"architecture_id"`
	Notifications  []Delivered `json:"notifications"`
}

// Service handles received alerts.
//
// Thread-safety: Receive is safe for concurrent use when its collaborators
// are.
type Service struct {
	systems     engine.SystemRepository
	calculator  Calculator
	recorder    Recorder
	provisioner *issue.Provisioner
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithProvisioner enables issue provisioning. Without it Receive only
// calculates and records.
func WithProvisioner(p *issue.Provisioner) ServiceOption {
	return func(s *Service) {
		s.provisioner = p
	}
}

// WithRecorder records every delivered notification.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a Service.
func NewService(systems engine.SystemRepository, calculator Calculator, opts ...ServiceOption) *Service {
	s := &Service{
		systems:    systems,
		calculator: calculator,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Receive validates a, calculates the impacts of the violation it reports
// and delivers one notification per reached task.
//
// Returned errors wrap ErrInvalidAlert, ErrUnknownRule, store.ErrNotFound,
// an engine.PropagationError or an issue.ProvisioningError. Notifications
// delivered before a failure stay delivered.
func (s *Service) Receive(ctx context.Context, a Alert) (*Report, error) {
	report, err := s.receive(ctx, a)
	switch {
	case err == nil:
		metrics.ObserveAlert(metrics.ResultOK)
	case errors.Is(err, ErrInvalidAlert), errors.Is(err, ErrUnknownRule), errors.Is(err, store.ErrNotFound):
		metrics.ObserveAlert(metrics.ResultRejected)
	default:
		metrics.ObserveAlert(metrics.ResultFailed)
	}
	return report, err
}

func (s *Service) receive(ctx context.Context, a Alert) (*Report, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "received alert",
		"slo", a.SloName,
		"rule", a.SloID,
		"architecture", a.ArchitectureID)

	sys, err := s.systems.FindSystemByArchitectureID(ctx, a.ArchitectureID)
	if err != nil {
		return nil, fmt.Errorf("alert %q: %w", a.AlertName, err)
	}
	rule, ok := sys.Rule(a.SloID)
	if !ok {
		return nil, fmt.Errorf("alert %q: rule %q in architecture %q: %w", a.AlertName, a.SloID, a.ArchitectureID, ErrUnknownRule)
	}

	start := time.Now()
	notes, err := s.calculator.CalculateImpacts(ctx, a.Violation(rule))
	if err != nil {
		return nil, fmt.Errorf("alert %q: %w", a.AlertName, err)
	}
	metrics.ObserveCalculation(time.Since(start), len(notes))
	s.logger.InfoContext(ctx, "calculated impacts", "notifications", len(notes))

	report := &Report{
		RuleID:         rule.ID,
		ArchitectureID: a.ArchitectureID,
		Notifications:  make([]Delivered, 0, len(notes)),
	}
	for _, n := range notes {
		d, err := s.deliver(ctx, sys, n, a.IssueID)
		if err != nil {
			return report, fmt.Errorf("alert %q: %w", a.AlertName, err)
		}
		report.Notifications = append(report.Notifications, d)
	}
	return report, nil
}

func (s *Service) deliver(ctx context.Context, sys *model.System, n *model.Notification, relatedIssueID string) (Delivered, error) {
	view, err := model.RenderNotification(sys, n)
	if err != nil {
		return Delivered{}, err
	}
	fp, err := n.Fingerprint()
	if err != nil {
		return Delivered{}, err
	}

	d := Delivered{
		Fingerprint: fp,
		TaskID:      n.Task(),
		TopImpactID: n.TopLevelImpact.ID,
		View:        view,
	}
	for _, imp := range n.TopLevelImpact.Chain() {
		d.Path = append(d.Path, imp.Location.String())
	}

	if s.provisioner != nil {
		res, err := s.provisioner.Provision(ctx, sys, n, relatedIssueID)
		if err != nil {
			return Delivered{}, err
		}
		metrics.ObserveIssue(res.Reused)
		d.Issue = &res
	}

	if s.recorder != nil {
		seq, err := s.recorder.RecordNotification(ctx, store.NotificationRecord{
			RuleID:         n.RootCause.Rule.ID,
			ArchitectureID: n.RootCause.Rule.ArchitectureID,
			TaskID:         d.TaskID,
			TopImpactID:    d.TopImpactID,
			Fingerprint:    fp,
		})
		if err != nil {
			return Delivered{}, fmt.Errorf("record notification: %w", err)
		}
		d.Seq = seq
	}
	return d, nil
}
