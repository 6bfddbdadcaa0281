package lead

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec orders a lead listing by one field
type SortSpec struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort is applied when a FilterSpec carries no sort
var DefaultSort = SortSpec{Field: "created_at", Direction: SortDesc}

// FilterSpec describes a lead query. Every field is optional and a zero
// value never restricts the result.
type FilterSpec struct {
	Search string `json:"search,omitempty"`

	Statuses   []Status   `json:"status,omitempty"`
	Sources    []Source   `json:"source,omitempty"`
	Priorities []Priority `json:"priority,omitempty"`
	AssignedTo []string   `json:"assigned_to,omitempty"`

	ProgramInterest []string `json:"program_interest,omitempty"`
	Tags            []string `json:"tags,omitempty"`

	CreatedFrom *time.Time `json:"created_from,omitempty"`
	CreatedTo   *time.Time `json:"created_to,omitempty"`

	ScoreMin *int `json:"score_min,omitempty"`
	ScoreMax *int `json:"score_max,omitempty"`

	Sort *SortSpec `json:"sort,omitempty"`
}

// Plan is a compiled FilterSpec: clauses combined with AND, plus ordering.
type Plan struct {
	Clauses []Clause
	Sort    SortSpec
}

// Matches reports whether l satisfies every clause of the plan
func (p Plan) Matches(l *Lead) bool {
	for _, c := range p.Clauses {
		if !c.Match(l) {
			return false
		}
	}
	return true
}

type sortField struct {
	column  string
	compare func(a, b *Lead) int
}

var sortFields = map[string]sortField{
	"created_at": {"created_at", func(a, b *Lead) int { return a.CreatedAt.Compare(b.CreatedAt) }},
	"updated_at": {"updated_at", func(a, b *Lead) int { return a.UpdatedAt.Compare(b.UpdatedAt) }},
	"first_name": {"first_name", func(a, b *Lead) int { return cmp.Compare(a.FirstName, b.FirstName) }},
	"last_name":  {"last_name", func(a, b *Lead) int { return cmp.Compare(a.LastName, b.LastName) }},
	"email":      {"email", func(a, b *Lead) int { return cmp.Compare(a.Email, b.Email) }},
	"lead_score": {"lead_score", func(a, b *Lead) int { return cmp.Compare(a.LeadScore, b.LeadScore) }},
	"ai_score":   {"ai_score", func(a, b *Lead) int { return cmp.Compare(a.AIScore, b.AIScore) }},
	"status":     {"status", func(a, b *Lead) int { return cmp.Compare(a.Status, b.Status) }},
	"priority":   {"priority", func(a, b *Lead) int { return cmp.Compare(a.Priority, b.Priority) }},
	"source":     {"source", func(a, b *Lead) int { return cmp.Compare(a.Source, b.Source) }},
}

// SortableFields lists the field names accepted by SortSpec.Field
func SortableFields() []string {
	fields := make([]string, 0, len(sortFields))
	for name := range sortFields {
		fields = append(fields, name)
	}
	slices.Sort(fields)
	return fields
}

// Compile turns a FilterSpec into a Plan.
func Compile(spec FilterSpec) (Plan, error) {
	plan := Plan{Sort: DefaultSort}

	if spec.Sort != nil && spec.Sort.Field != "" {
		if _, ok := sortFields[spec.Sort.Field]; !ok {
			return Plan{}, fmt.Errorf("%w: %q", ErrInvalidSortField, spec.Sort.Field)
		}
		dir := SortDirection(strings.ToLower(string(spec.Sort.Direction)))
		switch dir {
		case "":
			dir = SortDesc
		case SortAsc, SortDesc:
		default:
			return Plan{}, fmt.Errorf("%w: direction %q", ErrInvalidSortField, spec.Sort.Direction)
		}
		plan.Sort = SortSpec{Field: spec.Sort.Field, Direction: dir}
	}

	if term := strings.TrimSpace(spec.Search); term != "" {
		plan.Clauses = append(plan.Clauses, searchClause{term: strings.ToLower(term)})
	}

	if c, ok := membership("status", toStrings(spec.Statuses), func(l *Lead) string { return string(l.Status) }); ok {
		plan.Clauses = append(plan.Clauses, c)
	}
	if c, ok := membership("source", toStrings(spec.Sources), func(l *Lead) string { return string(l.Source) }); ok {
		plan.Clauses = append(plan.Clauses, c)
	}
	if c, ok := membership("priority", toStrings(spec.Priorities), func(l *Lead) string { return string(l.Priority) }); ok {
		plan.Clauses = append(plan.Clauses, c)
	}
	if c, ok := membership("assigned_to", spec.AssignedTo, (*Lead).AssigneeID); ok {
		plan.Clauses = append(plan.Clauses, c)
	}

	if c, ok := overlap("program_interest", spec.ProgramInterest, func(l *Lead) []string { return l.ProgramInterest }); ok {
		plan.Clauses = append(plan.Clauses, c)
	}
	if c, ok := overlap("tags", spec.Tags, func(l *Lead) []string { return l.Tags }); ok {
		plan.Clauses = append(plan.Clauses, c)
	}

	if spec.CreatedFrom != nil || spec.CreatedTo != nil {
		if spec.CreatedFrom != nil && spec.CreatedTo != nil && spec.CreatedFrom.After(*spec.CreatedTo) {
			return Plan{}, fmt.Errorf("%w: created_from is after created_to", ErrInvalidFilter)
		}
		plan.Clauses = append(plan.Clauses, newCreatedRange(spec.CreatedFrom, spec.CreatedTo))
	}

	if spec.ScoreMin != nil || spec.ScoreMax != nil {
		if spec.ScoreMin != nil && spec.ScoreMax != nil && *spec.ScoreMin > *spec.ScoreMax {
			return Plan{}, fmt.Errorf("%w: score_min is greater than score_max", ErrInvalidFilter)
		}
		plan.Clauses = append(plan.Clauses, scoreRangeClause{min: spec.ScoreMin, max: spec.ScoreMax})
	}

	return plan, nil
}

// Apply filters and sorts leads in memory with the same semantics as the store query.
func (p Plan) Apply(leads []Lead) []Lead {
	out := make([]Lead, 0, len(leads))
	for i := range leads {
		if p.Matches(&leads[i]) {
			out = append(out, leads[i])
		}
	}

	field := sortFields[p.Sort.Field]
	if field.compare == nil {
		field = sortFields[DefaultSort.Field]
	}
	desc := p.Sort.Direction == SortDesc
	slices.SortStableFunc(out, func(a, b Lead) int {
		c := field.compare(&a, &b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// nonEmpty drops blank entries so that a list like [""] does not restrict anything
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
