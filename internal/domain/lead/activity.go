package lead

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityLogger appends audit entries for mutations with business meaning.
// It never updates or removes prior entries.
type ActivityLogger struct {
	store ActivityStore
	now   func() time.Time
}

// NewActivityLogger creates activity logger
func NewActivityLogger(store ActivityStore) *ActivityLogger {
	return &ActivityLogger{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Append records one activity. Failures are returned to the caller.
func (a *ActivityLogger) Append(ctx context.Context, leadID, activityType, description string, payload map[string]any, performedBy string) (*Activity, error) {
	entry := &Activity{
		ID:           uuid.NewString(),
		LeadID:       leadID,
		ActivityType: activityType,
		Description:  description,
		Payload:      payload,
		PerformedBy:  performedBy,
		CreatedAt:    a.now(),
	}
	if err := a.store.AppendActivity(ctx, entry); err != nil {
		return nil, fmt.Errorf("append %s activity for lead %s: %w", activityType, leadID, err)
	}
	return entry, nil
}

// History returns the activities of a lead, newest first
func (a *ActivityLogger) History(ctx context.Context, leadID string) ([]Activity, error) {
	entries, err := a.store.ListActivities(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities for lead %s: %w", leadID, err)
	}
	return entries, nil
}
