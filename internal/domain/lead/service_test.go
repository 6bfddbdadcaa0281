package lead

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"admissions/internal/metrics"
)

var testServiceConfig = ServiceConfig{
	DefaultPageSize: 20,
	MaxPageSize:     100,
	SuggestionLimit: 10,
	BulkConcurrency: 2,
}

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	svc := NewService(repo, repo, repo, testServiceConfig, metrics.NewLead(prometheus.NewRegistry()), zap.NewNop())
	return svc, repo
}

func TestService_DemoServedUntilFirstAuthenticLead(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetDemoAccess(ctx, "counselor-1", true))

	res, err := svc.ListLeads(ctx, "counselor-1", 1, 20, FilterSpec{})
	require.NoError(t, err)
	assert.EqualValues(t, len(DemoLeads()), res.Total)
	assert.Equal(t, DemoOwnerID, res.Items[0].OwnerID)

	require.NoError(t, repo.Create(ctx, &Lead{OwnerID: "counselor-1", FirstName: "Real", LastName: "Person", Email: "real@example.com"}))

	res, err = svc.ListLeads(ctx, "counselor-1", 1, 20, FilterSpec{})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, "real@example.com", res.Items[0].Email)
}

func TestService_NoDemoWithoutFlag(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.ListLeads(context.Background(), "counselor-1", 1, 20, FilterSpec{})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.TotalPages)
}

func TestService_ListLeads_ChenScenarioOnDemoAndStore(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetDemoAccess(ctx, "demo-user", true))
	seedOwner(t, repo, "counselor-1")

	spec := FilterSpec{Search: "chen", Statuses: []Status{StatusContacted}, AssignedTo: []string{"advisor-anna"}}
	for _, user := range []string{"demo-user", "counselor-1"} {
		t.Run(user, func(t *testing.T) {
			res, err := svc.ListLeads(ctx, user, 1, 20, spec)
			require.NoError(t, err)
			require.EqualValues(t, 1, res.Total)
			assert.Equal(t, "m.chen@example.com", res.Items[0].Email)
		})
	}
}

func TestService_ListLeads_Pagination(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seedOwner(t, repo, "counselor-1")

	sort := &SortSpec{Field: "lead_score", Direction: SortDesc}

	res, err := svc.ListLeads(ctx, "counselor-1", 3, 3, FilterSpec{Sort: sort})
	require.NoError(t, err)
	assert.EqualValues(t, 8, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Items, 2)
	assert.False(t, res.HasNextPage)
	assert.True(t, res.HasPrevPage)

	res, err = svc.ListLeads(ctx, "counselor-1", 9, 3, FilterSpec{Sort: sort})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.EqualValues(t, 8, res.Total)

	res, err = svc.ListLeads(ctx, "counselor-1", 0, 0, FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, testServiceConfig.DefaultPageSize, res.PageSize)
	assert.Len(t, res.Items, 8)
}

func TestService_ListLeads_HugePageIsEmpty(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetDemoAccess(ctx, "demo-user", true))
	seedOwner(t, repo, "counselor-1")

	for _, user := range []string{"demo-user", "counselor-1"} {
		t.Run(user, func(t *testing.T) {
			res, err := svc.ListLeads(ctx, user, 1<<62, 4, FilterSpec{})
			require.NoError(t, err)
			assert.Empty(t, res.Items)
			assert.EqualValues(t, 8, res.Total)
			assert.Equal(t, 1<<62, res.Page)
			assert.False(t, res.HasNextPage)
		})
	}
}

func TestService_ListLeads_InvalidSort(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListLeads(context.Background(), "u1", 1, 20, FilterSpec{Sort: &SortSpec{Field: "owner_id; DROP TABLE leads"}})
	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestService_ListLeads_CountFailure(t *testing.T) {
	store := new(MockLeadStore)
	flags := new(MockDemoAccessStore)
	flags.On("HasDemoAccess", mock.Anything, "u1").Return(false, nil)
	store.On("Count", mock.Anything, "u1", mock.Anything).Return(int64(0), errors.New("connection reset"))

	svc := NewService(store, new(MockActivityStore), flags, testServiceConfig, nil, nil)

	_, err := svc.ListLeads(context.Background(), "u1", 1, 20, FilterSpec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	store.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetLeadSuggestions(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seedOwner(t, repo, "counselor-1")

	got, err := svc.GetLeadSuggestions(ctx, "counselor-1", "chen", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Suggestion{ID: got[0].ID, Name: "Michael Chen", Email: "m.chen@example.com", MatchType: MatchEmail}, got[0])

	got, err = svc.GetLeadSuggestions(ctx, "counselor-1", "Michael", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m.chen@example.com", got[0].Email)
	assert.Equal(t, MatchName, got[0].MatchType)

	got, err = svc.GetLeadSuggestions(ctx, "counselor-1", "example.com", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = svc.GetLeadSuggestions(ctx, "counselor-1", "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_GetLeadSuggestions_Demo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetDemoAccess(ctx, "u1", true))

	got, err := svc.GetLeadSuggestions(ctx, "u1", "sofia", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "demo-lead-07", got[0].ID)
}

func TestService_PerformBulkOperation_EndToEnd(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seeded := seedOwner(t, repo, "counselor-1")

	ids := []string{seeded[0].ID, "missing", seeded[6].ID}
	result, err := svc.PerformBulkOperation(ctx, "counselor-1", BulkRequest{
		Operation: StatusChangeOperation{Status: StatusQualified},
		LeadIDs:   ids,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"lead missing: lead not found"}, result.Errors)

	got, err := repo.GetByID(ctx, seeded[6].ID)
	require.NoError(t, err)
	assert.Equal(t, StatusQualified, got.Status)

	history, err := svc.ListActivities(ctx, seeded[6].ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ActivityStatusChange, history[0].ActivityType)
	assert.Equal(t, "lost", history[0].Payload["old_status"])
	assert.Equal(t, "qualified", history[0].Payload["new_status"])
}

func TestService_ExportLeads(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seedOwner(t, repo, "counselor-1")

	out, err := svc.ExportLeads(ctx, "counselor-1", FilterSpec{Tags: []string{"mba"}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], `"First Name"`))
	assert.Contains(t, out, `"m.chen@example.com"`)
	assert.Contains(t, out, `"jwilson@example.com"`)
}

func TestService_ExportLeads_BeyondPageLimit(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	for i := 0; i < testServiceConfig.MaxPageSize+5; i++ {
		require.NoError(t, repo.Create(ctx, &Lead{
			OwnerID: "bulk-owner", FirstName: "L", LastName: "N",
			Email: strings.Repeat("x", i+1) + "@example.com",
		}))
	}

	out, err := svc.ExportLeads(ctx, "bulk-owner", FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, testServiceConfig.MaxPageSize+6, strings.Count(out, "\n"))
}

func TestService_GetFilterOptions_NeverDemo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetDemoAccess(ctx, "u1", true))

	opts, err := svc.GetFilterOptions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, opts.Programs)
	assert.Empty(t, opts.Assignees)
}

func TestService_GetStats(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetDemoAccess(ctx, "demo-user", true))
	seedOwner(t, repo, "counselor-1")

	for _, user := range []string{"demo-user", "counselor-1"} {
		stats, err := svc.GetStats(ctx, user)
		require.NoError(t, err)
		assert.EqualValues(t, 8, stats.Total)
		assert.EqualValues(t, 2, stats.ByStatus[StatusNew])
	}
}

func TestService_GetLead(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetDemoAccess(ctx, "demo-user", true))
	seeded := seedOwner(t, repo, "counselor-1")

	l, err := svc.GetLead(ctx, "demo-user", "demo-lead-02")
	require.NoError(t, err)
	assert.Equal(t, "Michael", l.FirstName)

	_, err = svc.GetLead(ctx, "demo-user", seeded[0].ID)
	assert.ErrorIs(t, err, ErrLeadNotFound)

	l, err = svc.GetLead(ctx, "counselor-1", seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "sarah.johnson@example.com", l.Email)

	_, err = svc.GetLead(ctx, "counselor-1", "demo-lead-02")
	assert.ErrorIs(t, err, ErrLeadNotFound)

	_, err = svc.GetLead(ctx, "counselor-2", seeded[0].ID)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}
