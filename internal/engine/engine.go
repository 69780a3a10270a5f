package engine

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/sloimpact/internal/model"
)

// SystemRepository finds the system a violated rule belongs to.
type SystemRepository interface {
	FindSystemByArchitectureID(ctx context.Context, architectureID string) (*model.System, error)
}

// ImpactLedger persists impacts and assigns their IDs.
//
// The impact's CauseID is already set when SaveImpact is called. The returned
// ID must be unique within the ledger.
type ImpactLedger interface {
	SaveImpact(ctx context.Context, impact *model.Impact) (string, error)
}

const tracerName = "github.com/roach88/sloimpact/internal/engine"

// Engine calculates the impacts of SLO violations.
//
// Thread-safety model:
//   - CalculateImpacts(): safe from any goroutine when the ledger and the
//     repository are
//   - All traversal state lives on the stack of one call
type Engine struct {
	systems    SystemRepository
	ledger     ImpactLedger
	logger     *slog.Logger
	tracer     trace.Tracer
	maxImpacts int // Unbounded by default
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMaxImpacts bounds the number of impacts one calculation may create.
//
// Default: Unbounded. Use it when the architecture may contain consumer
// cycles; the calculation then fails with QUOTA_EXCEEDED instead of running
// forever.
func WithMaxImpacts(n int) Option {
	return func(e *Engine) {
		e.maxImpacts = n
	}
}

// WithTracer sets the tracer. Default: the global tracer provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New creates an Engine reading systems from systems and persisting impacts
// to ledger.
func New(systems SystemRepository, ledger ImpactLedger, opts ...Option) *Engine {
	e := &Engine{
		systems:    systems,
		ledger:     ledger,
		logger:     slog.Default(),
		maxImpacts: Unbounded,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	return e
}

// CalculateImpacts returns one Notification per path from the violation to a
// business-process task.
//
// Every Notification's RootCause is v itself. Each Impact created on the way
// is persisted before the next one is derived from it; on error the impacts
// already persisted stay in the ledger.
//
// ctx is passed to the repository and the ledger; the walk itself does not
// check it.
func (e *Engine) CalculateImpacts(ctx context.Context, v *model.Violation) ([]*model.Notification, error) {
	if v == nil {
		return nil, inputError("violation is nil")
	}
	if v.Rule == nil {
		return nil, inputError("violation has no rule")
	}

	ctx, span := e.tracer.Start(ctx, "engine.CalculateImpacts", trace.WithAttributes(
		attribute.String("slo.rule_id", v.Rule.ID),
		attribute.String("slo.architecture_id", v.Rule.ArchitectureID),
	))
	defer span.End()

	notifications, impacts, err := e.calculate(ctx, v)
	span.SetAttributes(
		attribute.Int("impact.count", impacts),
		attribute.Int("impact.notifications", len(notifications)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.WarnContext(ctx, "impact calculation failed",
			"rule", v.Rule.ID,
			"impacts", impacts,
			"error", err)
		return nil, err
	}

	e.logger.InfoContext(ctx, "impacts calculated",
		"rule", v.Rule.ID,
		"architecture", v.Rule.ArchitectureID,
		"impacts", impacts,
		"notifications", len(notifications))
	return notifications, nil
}

// calculation is the state of one CalculateImpacts call.
type calculation struct {
	engine *Engine
	sys    *model.System
	quota  *ImpactQuota
}

func (e *Engine) calculate(ctx context.Context, v *model.Violation) ([]*model.Notification, int, error) {
	if v.Rule.ArchitectureID == "" {
		return nil, 0, inputError("rule %q is not bound to an architecture", v.Rule.ID)
	}

	sys, err := e.systems.FindSystemByArchitectureID(ctx, v.Rule.ArchitectureID)
	if err != nil {
		return nil, 0, repositoryError(v.Rule.ArchitectureID, err)
	}
	if sys == nil {
		return nil, 0, lookupError(model.Location{}, "no system for architecture %q", v.Rule.ArchitectureID)
	}

	frontier, err := initialFrontier(sys, v.Rule)
	if err != nil {
		return nil, 0, err
	}

	c := &calculation{engine: e, sys: sys, quota: NewImpactQuota(e.maxImpacts)}

	steps, err := c.walkArchitecture(ctx, frontier)
	if err != nil {
		return nil, c.quota.Current(), err
	}
	notifications, err := c.walkSagas(ctx, v, steps)
	if err != nil {
		return nil, c.quota.Current(), err
	}
	return notifications, c.quota.Current(), nil
}

// walkArchitecture runs the architecture phase and returns the saga-step
// visits it collected, in discovery order.
func (c *calculation) walkArchitecture(ctx context.Context, frontier []queueItem) (*fifo[queueItem], error) {
	archQueue := newFIFO[queueItem]()
	sagaQueue := newFIFO[queueItem]()
	for _, item := range frontier {
		archQueue.Push(item)
	}

	for {
		item, ok := archQueue.Pop()
		if !ok {
			return sagaQueue, nil
		}

		faceID := item.location.ID
		if _, ok := c.sys.Interface(faceID); !ok {
			return nil, lookupError(item.location, "interface not in system %q", c.sys.ID)
		}

		impact, err := c.persist(ctx, item)
		if err != nil {
			return nil, err
		}

		if realizing := c.sys.StepsRealizing(faceID); len(realizing) > 0 {
			for _, step := range realizing {
				sagaQueue.Push(queueItem{cause: impact, location: model.StepAt(step.ID)})
			}
			continue
		}

		for _, consumer := range c.sys.ConsumersOf(faceID) {
			for _, provided := range consumer.Provides {
				archQueue.Push(queueItem{cause: impact, location: model.InterfaceAt(provided)})
			}
		}
	}
}

// walkSagas runs the saga phase: each step visit yields a step impact and a
// task impact, and the task impact heads a Notification.
func (c *calculation) walkSagas(ctx context.Context, v *model.Violation, sagaQueue *fifo[queueItem]) ([]*model.Notification, error) {
	var notifications []*model.Notification
	for {
		item, ok := sagaQueue.Pop()
		if !ok {
			return notifications, nil
		}

		step, ok := c.sys.Step(item.location.ID)
		if !ok {
			return nil, lookupError(item.location, "saga step not in system %q", c.sys.ID)
		}
		taskLoc := model.TaskAt(step.TaskID)
		if _, ok := c.sys.Task(step.TaskID); !ok {
			return nil, lookupError(taskLoc, "task of step %q not in system %q", step.ID, c.sys.ID)
		}

		stepImpact, err := c.persist(ctx, item)
		if err != nil {
			return nil, err
		}
		taskImpact, err := c.persist(ctx, queueItem{cause: stepImpact, location: taskLoc})
		if err != nil {
			return nil, err
		}

		notifications = append(notifications, &model.Notification{
			RootCause:      v,
			TopLevelImpact: taskImpact,
		})
	}
}

// persist creates the impact for item and writes it to the ledger.
func (c *calculation) persist(ctx context.Context, item queueItem) (*model.Impact, error) {
	if err := c.quota.Check(item.location); err != nil {
		return nil, err
	}

	impact := model.NewImpact(item.cause, item.location)
	id, err := c.engine.ledger.SaveImpact(ctx, impact)
	if err != nil {
		return nil, ledgerError(item.location, err)
	}
	impact.ID = id

	c.engine.logger.DebugContext(ctx, "impact persisted",
		"id", id,
		"location", item.location.String(),
		"cause", impact.CauseID)
	return impact, nil
}
