package lead

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"admissions/internal/metrics"
)

// OperationKind names a bulk operation
type OperationKind string

const (
	OpAssign       OperationKind = "assign"
	OpStatusChange OperationKind = "status_change"
	OpDelete       OperationKind = "delete"
	OpTagAdd       OperationKind = "tag_add"
	OpTagRemove    OperationKind = "tag_remove"
)

// BulkOperation is one of AssignOperation, StatusChangeOperation,
// DeleteOperation, TagAddOperation or TagRemoveOperation.
type BulkOperation interface {
	Kind() OperationKind
	validate() error
}

// AssignOperation hands leads to an advisor
type AssignOperation struct {
	AdvisorID string
	Method    AssignmentMethod
}

// StatusChangeOperation moves leads to a new status
type StatusChangeOperation struct {
	Status Status
	Note   string
}

// DeleteOperation removes leads permanently
type DeleteOperation struct{}

// TagAddOperation adds tags to each lead's tag set
type TagAddOperation struct {
	Tags []string
}

// TagRemoveOperation removes tags from each lead's tag set
type TagRemoveOperation struct {
	Tags []string
}

func (AssignOperation) Kind() OperationKind       { return OpAssign }
func (StatusChangeOperation) Kind() OperationKind { return OpStatusChange }
func (DeleteOperation) Kind() OperationKind       { return OpDelete }
func (TagAddOperation) Kind() OperationKind       { return OpTagAdd }
func (TagRemoveOperation) Kind() OperationKind    { return OpTagRemove }

func (o AssignOperation) validate() error {
	if strings.TrimSpace(o.AdvisorID) == "" {
		return errors.New("advisor id is required")
	}
	switch o.Method {
	case "", AssignmentManual, AssignmentRoundRobin, AssignmentAI, AssignmentBulk:
		return nil
	}
	return fmt.Errorf("unknown assignment method %q", o.Method)
}

func (o StatusChangeOperation) validate() error {
	if !o.Status.Valid() {
		return fmt.Errorf("unknown status %q", o.Status)
	}
	return nil
}

func (DeleteOperation) validate() error { return nil }

func (o TagAddOperation) validate() error    { return validateTags(o.Tags) }
func (o TagRemoveOperation) validate() error { return validateTags(o.Tags) }

func validateTags(tags []string) error {
	if len(nonEmpty(tags)) == 0 {
		return errors.New("at least one tag is required")
	}
	return nil
}

// BulkRequest applies Operation to every id in LeadIDs
type BulkRequest struct {
	Operation BulkOperation
	LeadIDs   []string
}

// BulkResult tallies a bulk run. Success+Failed equals the number of ids.
type BulkResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// BulkExecutor runs one operation across many leads with per-item isolation.
type BulkExecutor struct {
	leads       LeadStore
	activities  *ActivityLogger
	concurrency int
	metrics     *metrics.Lead
	logger      *zap.Logger
	now         func() time.Time
}

// NewBulkExecutor creates bulk executor. concurrency bounds in-flight items.
func NewBulkExecutor(leads LeadStore, activities *ActivityLogger, concurrency int, m *metrics.Lead, logger *zap.Logger) *BulkExecutor {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkExecutor{
		leads:       leads,
		activities:  activities,
		concurrency: concurrency,
		metrics:     m,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute validates the request, then processes every id independently.
// Only a malformed request returns an error; item failures land in the result.
func (e *BulkExecutor) Execute(ctx context.Context, actorID string, req BulkRequest) (*BulkResult, error) {
	if req.Operation == nil {
		return nil, fmt.Errorf("%w: operation is required", ErrInvalidOperation)
	}
	if len(req.LeadIDs) == 0 {
		return nil, fmt.Errorf("%w: lead ids are required", ErrInvalidOperation)
	}
	if err := req.Operation.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidOperation, req.Operation.Kind(), err)
	}

	kind := req.Operation.Kind()
	outcomes := make([]error, len(req.LeadIDs))

	// repeated ids are kept and run in input order on one worker
	positions := make(map[string][]int, len(req.LeadIDs))
	var order []string
	for i, id := range req.LeadIDs {
		if _, seen := positions[id]; !seen {
			order = append(order, id)
		}
		positions[id] = append(positions[id], i)
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, id := range order {
		id := id
		g.Go(func() error {
			for _, i := range positions[id] {
				outcomes[i] = e.apply(ctx, actorID, req.Operation, id)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &BulkResult{Errors: []string{}}
	for i, err := range outcomes {
		e.metrics.BulkItem(string(kind), err == nil)
		if err == nil {
			result.Success++
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("lead %s: %v", req.LeadIDs[i], err))
		e.logger.Debug("bulk item failed",
			zap.String("operation", string(kind)),
			zap.String("lead_id", req.LeadIDs[i]),
			zap.Error(err))
	}

	e.logger.Info("bulk operation finished",
		zap.String("operation", string(kind)),
		zap.String("actor_id", actorID),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed))

	return result, nil
}

func (e *BulkExecutor) apply(ctx context.Context, actorID string, op BulkOperation, id string) error {
	switch op := op.(type) {
	case AssignOperation:
		return e.assign(ctx, actorID, id, op)
	case StatusChangeOperation:
		return e.changeStatus(ctx, actorID, id, op)
	case DeleteOperation:
		return e.leads.Delete(ctx, id)
	case TagAddOperation:
		return e.retag(ctx, id, func(current []string) []string { return unionTags(current, op.Tags) })
	case TagRemoveOperation:
		return e.retag(ctx, id, func(current []string) []string { return subtractTags(current, op.Tags) })
	default:
		return fmt.Errorf("%w: %T", ErrInvalidOperation, op)
	}
}

func (e *BulkExecutor) assign(ctx context.Context, actorID, id string, op AssignOperation) error {
	method := op.Method
	if method == "" {
		method = AssignmentManual
	}
	if err := e.leads.Assign(ctx, id, op.AdvisorID, method, e.now()); err != nil {
		return err
	}
	_, err := e.activities.Append(ctx, id, ActivityAssignment,
		fmt.Sprintf("Lead assigned to %s", op.AdvisorID),
		map[string]any{"assigned_to": op.AdvisorID, "assignment_method": string(method)},
		actorID)
	return err
}

func (e *BulkExecutor) changeStatus(ctx context.Context, actorID, id string, op StatusChangeOperation) error {
	current, err := e.leads.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := e.leads.UpdateStatus(ctx, id, op.Status, e.now()); err != nil {
		return err
	}

	payload := map[string]any{"old_status": string(current.Status), "new_status": string(op.Status)}
	if op.Note != "" {
		payload["note"] = op.Note
	}
	_, err = e.activities.Append(ctx, id, ActivityStatusChange,
		fmt.Sprintf("Status changed from %s to %s", current.Status, op.Status),
		payload, actorID)
	return err
}

func (e *BulkExecutor) retag(ctx context.Context, id string, next func([]string) []string) error {
	current, err := e.leads.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return e.leads.UpdateTags(ctx, id, next(current.Tags), e.now())
}

// unionTags keeps current order and appends unseen tags
func unionTags(current, add []string) []string {
	out := make([]string, 0, len(current)+len(add))
	for _, t := range current {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	for _, t := range nonEmpty(add) {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func subtractTags(current, remove []string) []string {
	remove = nonEmpty(remove)
	out := make([]string, 0, len(current))
	for _, t := range current {
		if !slices.Contains(remove, t) {
			out = append(out, t)
		}
	}
	return out
}
