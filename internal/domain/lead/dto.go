package lead

import (
	"fmt"
	"slices"
	"strings"

	"admissions/internal/pkg/pagination"
)

// PaginatedResult is one page of items plus page metadata
type PaginatedResult[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

func newPaginatedResult[T any](items []T, p pagination.Page) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:       items,
		Total:       p.Total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
	}
}

// Match types of a suggestion
const (
	MatchEmail = "email"
	MatchName  = "name"
)

// Suggestion is a typeahead hit
type Suggestion struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	MatchType string `json:"match_type"`
}

// FilterOptions lists the distinct values a caller can filter on
type FilterOptions struct {
	Sources    []string `json:"sources"`
	Statuses   []string `json:"statuses"`
	Priorities []string `json:"priorities"`
	Assignees  []string `json:"assignees"`
	Programs   []string `json:"programs"`
}

func (o *FilterOptions) normalize() {
	o.Sources = distinctSorted(o.Sources)
	o.Statuses = distinctSorted(o.Statuses)
	o.Priorities = distinctSorted(o.Priorities)
	o.Assignees = distinctSorted(o.Assignees)
	o.Programs = distinctSorted(o.Programs)
}

func distinctSorted(values []string) []string {
	out := nonEmpty(values)
	slices.Sort(out)
	return slices.Compact(out)
}

// Stats holds lead counts by status
type Stats struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"by_status"`
}

// BulkOperationRequest is the JSON body of POST /leads/bulk
type BulkOperationRequest struct {
	Operation        OperationKind `json:"operation" validate:"required,oneof=assign status_change delete tag_add tag_remove"`
	LeadIDs          []string      `json:"lead_ids" validate:"required,min=1,dive,required"`
	AdvisorID        string        `json:"advisor_id"`
	AssignmentMethod string        `json:"assignment_method"`
	Status           string        `json:"status"`
	Note             string        `json:"note"`
	Tags             []string      `json:"tags"`
}

// ToBulkRequest builds the operation variant named by Operation
func (r *BulkOperationRequest) ToBulkRequest() (BulkRequest, error) {
	var op BulkOperation
	switch r.Operation {
	case OpAssign:
		op = AssignOperation{AdvisorID: strings.TrimSpace(r.AdvisorID), Method: AssignmentMethod(r.AssignmentMethod)}
	case OpStatusChange:
		op = StatusChangeOperation{Status: Status(r.Status), Note: r.Note}
	case OpDelete:
		op = DeleteOperation{}
	case OpTagAdd:
		op = TagAddOperation{Tags: r.Tags}
	case OpTagRemove:
		op = TagRemoveOperation{Tags: r.Tags}
	default:
		return BulkRequest{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidOperation, r.Operation)
	}
	return BulkRequest{Operation: op, LeadIDs: r.LeadIDs}, nil
}

// DemoAccessRequest toggles the caller's demo flag
type DemoAccessRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}
