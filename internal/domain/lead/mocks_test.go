package lead

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

/* ==================== MOCKS ==================== */

type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) Create(ctx context.Context, l *Lead) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLeadStore) GetByID(ctx context.Context, id string) (*Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lead), args.Error(1)
}

func (m *MockLeadStore) Find(ctx context.Context, ownerID string, plan Plan, limit, offset int) ([]Lead, error) {
	args := m.Called(ctx, ownerID, plan, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Lead), args.Error(1)
}

func (m *MockLeadStore) Count(ctx context.Context, ownerID string, plan Plan) (int64, error) {
	args := m.Called(ctx, ownerID, plan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadStore) CountOwned(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadStore) Assign(ctx context.Context, id, advisorID string, method AssignmentMethod, at time.Time) error {
	return m.Called(ctx, id, advisorID, method, at).Error(0)
}

func (m *MockLeadStore) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

func (m *MockLeadStore) UpdateTags(ctx context.Context, id string, tags []string, at time.Time) error {
	return m.Called(ctx, id, tags, at).Error(0)
}

func (m *MockLeadStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLeadStore) CountByStatus(ctx context.Context, ownerID string) (map[Status]int64, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[Status]int64), args.Error(1)
}

func (m *MockLeadStore) FilterOptions(ctx context.Context, ownerID string) (*FilterOptions, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FilterOptions), args.Error(1)
}

type MockActivityStore struct {
	mock.Mock
}

func (m *MockActivityStore) AppendActivity(ctx context.Context, a *Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockActivityStore) ListActivities(ctx context.Context, leadID string) ([]Activity, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Activity), args.Error(1)
}

type MockDemoAccessStore struct {
	mock.Mock
}

func (m *MockDemoAccessStore) HasDemoAccess(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDemoAccessStore) SetDemoAccess(ctx context.Context, userID string, enabled bool) error {
	return m.Called(ctx, userID, enabled).Error(0)
}
