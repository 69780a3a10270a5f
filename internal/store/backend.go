package store

import (
	"context"

	"github.com/roach88/sloimpact/internal/model"
)

// Backend is the method set shared by Store and Memory.
type Backend interface {
	SaveImpact(ctx context.Context, impact *model.Impact) (string, error)
	ReadImpact(ctx context.Context, id string) (*model.Impact, error)
	ReadChain(ctx context.Context, id string) ([]*model.Impact, error)
	ListImpacts(ctx context.Context) ([]*model.Impact, error)
	CountImpacts(ctx context.Context) (int, error)
	CountImpactsAt(ctx context.Context, loc model.Location) (int, error)

	SaveSystem(ctx context.Context, sys *model.System) error
	FindSystemByArchitectureID(ctx context.Context, architectureID string) (*model.System, error)
	ListSystems(ctx context.Context) ([]SystemSummary, error)

	RecordNotification(ctx context.Context, rec NotificationRecord) (int64, error)
	ListNotifications(ctx context.Context, ruleID string) ([]NotificationRecord, error)
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*Memory)(nil)
)
