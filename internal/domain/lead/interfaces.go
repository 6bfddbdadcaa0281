package lead

import (
	"context"
	"time"
)

// LeadStore is the record store the engine queries and mutates
type LeadStore interface {
	Create(ctx context.Context, l *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	Find(ctx context.Context, ownerID string, plan Plan, limit, offset int) ([]Lead, error)
	Count(ctx context.Context, ownerID string, plan Plan) (int64, error)
	CountOwned(ctx context.Context, ownerID string) (int64, error)
	Assign(ctx context.Context, id, advisorID string, method AssignmentMethod, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	UpdateTags(ctx context.Context, id string, tags []string, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, ownerID string) (map[Status]int64, error)
	FilterOptions(ctx context.Context, ownerID string) (*FilterOptions, error)
}

// ActivityStore persists audit entries
type ActivityStore interface {
	AppendActivity(ctx context.Context, a *Activity) error
	ListActivities(ctx context.Context, leadID string) ([]Activity, error)
}

// DemoAccessStore holds the per-identity demo flag
type DemoAccessStore interface {
	HasDemoAccess(ctx context.Context, userID string) (bool, error)
	SetDemoAccess(ctx context.Context, userID string, enabled bool) error
}

var (
	_ LeadStore       = (*Repository)(nil)
	_ ActivityStore   = (*Repository)(nil)
	_ DemoAccessStore = (*Repository)(nil)
)
