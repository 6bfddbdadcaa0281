package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"admissions/internal/metrics"
	"admissions/internal/pkg/pagination"
)

// ServiceConfig tunes paging and bulk execution
type ServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	SuggestionLimit int
	BulkConcurrency int
}

// Service is the data-access contract consumed by the UI and reporting layers.
// Every call takes the caller's identity explicitly.
type Service struct {
	store      LeadStore
	flags      DemoAccessStore
	demo       *DemoResolver
	activities *ActivityLogger
	bulk       *BulkExecutor
	cfg        ServiceConfig
	metrics    *metrics.Lead
	logger     *zap.Logger
}

// NewService creates lead service
func NewService(store LeadStore, activities ActivityStore, flags DemoAccessStore, cfg ServiceConfig, m *metrics.Lead, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	activityLogger := NewActivityLogger(activities)
	return &Service{
		store:      store,
		flags:      flags,
		demo:       NewDemoResolver(flags, store, logger),
		activities: activityLogger,
		bulk:       NewBulkExecutor(store, activityLogger, cfg.BulkConcurrency, m, logger),
		cfg:        cfg,
		metrics:    m,
		logger:     logger,
	}
}

// ListLeads returns one page of the caller's leads matching filters
func (s *Service) ListLeads(ctx context.Context, userID string, page, pageSize int, filters FilterSpec) (*PaginatedResult[Lead], error) {
	plan, err := Compile(filters)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}

	if s.demo.ShouldServeDemo(ctx, userID) {
		s.metrics.Read("list", true)
		all := plan.Apply(DemoLeads())
		p := pagination.Paginate(page, pageSize, s.cfg.MaxPageSize, int64(len(all)))
		return newPaginatedResult(pagination.Slice(all, p), p), nil
	}
	s.metrics.Read("list", false)

	total, err := s.store.Count(ctx, userID, plan)
	if err != nil {
		return nil, fmt.Errorf("list leads: count: %w", err)
	}
	p := pagination.Paginate(page, pageSize, s.cfg.MaxPageSize, total)
	if int64(p.Offset) >= total {
		return newPaginatedResult([]Lead{}, p), nil
	}

	items, err := s.store.Find(ctx, userID, plan, p.PageSize, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return newPaginatedResult(items, p), nil
}

// GetLeadSuggestions returns up to limit typeahead hits for query
func (s *Service) GetLeadSuggestions(ctx context.Context, userID, query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.SuggestionLimit
	}
	if s.cfg.MaxPageSize > 0 && limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	plan, err := Compile(FilterSpec{Search: query})
	if err != nil {
		return nil, err
	}

	var leads []Lead
	if s.demo.ShouldServeDemo(ctx, userID) {
		s.metrics.Read("suggestions", true)
		leads = plan.Apply(DemoLeads())
		if len(leads) > limit {
			leads = leads[:limit]
		}
	} else {
		s.metrics.Read("suggestions", false)
		leads, err = s.store.Find(ctx, userID, plan, limit, 0)
		if err != nil {
			return nil, fmt.Errorf("get lead suggestions: %w", err)
		}
	}

	needle := strings.ToLower(query)
	out := make([]Suggestion, 0, len(leads))
	for i := range leads {
		l := &leads[i]
		matchType := MatchName
		if strings.Contains(strings.ToLower(l.Email), needle) {
			matchType = MatchEmail
		}
		out = append(out, Suggestion{ID: l.ID, Name: l.FullName(), Email: l.Email, MatchType: matchType})
	}
	return out, nil
}

// PerformBulkOperation applies one mutation across many leads
func (s *Service) PerformBulkOperation(ctx context.Context, userID string, req BulkRequest) (*BulkResult, error) {
	return s.bulk.Execute(ctx, userID, req)
}

// ExportLeads renders every lead matching filters as CSV, unpaginated
func (s *Service) ExportLeads(ctx context.Context, userID string, filters FilterSpec) (string, error) {
	plan, err := Compile(filters)
	if err != nil {
		return "", err
	}

	var leads []Lead
	if s.demo.ShouldServeDemo(ctx, userID) {
		s.metrics.Read("export", true)
		leads = plan.Apply(DemoLeads())
	} else {
		s.metrics.Read("export", false)
		leads, err = s.store.Find(ctx, userID, plan, 0, 0)
		if err != nil {
			return "", fmt.Errorf("export leads: %w", err)
		}
	}

	var b strings.Builder
	if err := WriteCSV(&b, leads); err != nil {
		return "", fmt.Errorf("export leads: write csv: %w", err)
	}
	return b.String(), nil
}

// GetFilterOptions projects the caller's own authentic leads, never the demo set
func (s *Service) GetFilterOptions(ctx context.Context, userID string) (*FilterOptions, error) {
	opts, err := s.store.FilterOptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get filter options: %w", err)
	}
	return opts, nil
}

// GetStats returns the caller's lead counts by status
func (s *Service) GetStats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[Status]int64)}

	if s.demo.ShouldServeDemo(ctx, userID) {
		s.metrics.Read("stats", true)
		for _, l := range DemoLeads() {
			stats.ByStatus[l.Status]++
			stats.Total++
		}
		return stats, nil
	}
	s.metrics.Read("stats", false)

	counts, err := s.store.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get lead stats: %w", err)
	}
	for status, n := range counts {
		stats.ByStatus[status] = n
		stats.Total += n
	}
	return stats, nil
}

// GetLead returns one of the caller's leads. Demo callers can open demo leads.
func (s *Service) GetLead(ctx context.Context, userID, id string) (*Lead, error) {
	if s.demo.ShouldServeDemo(ctx, userID) {
		for _, l := range DemoLeads() {
			if l.ID == id {
				return &l, nil
			}
		}
		return nil, ErrLeadNotFound
	}

	l, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrLeadNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead %s: %w", id, err)
	}
	// other counselors' leads are reported as missing
	if l.OwnerID != userID {
		return nil, ErrLeadNotFound
	}
	return l, nil
}

// ListActivities returns the audit history of a lead
func (s *Service) ListActivities(ctx context.Context, leadID string) ([]Activity, error) {
	return s.activities.History(ctx, leadID)
}

// SetDemoAccess sets or clears the caller's demo flag
func (s *Service) SetDemoAccess(ctx context.Context, userID string, enabled bool) error {
	if err := s.flags.SetDemoAccess(ctx, userID, enabled); err != nil {
		return fmt.Errorf("set demo access: %w", err)
	}
	return nil
}
