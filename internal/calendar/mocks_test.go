package calendar

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"github.com/hray3182/daybook/internal/models"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) CurrentUser(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) FindConfirmedSpans(ctx context.Context, userID int64, start, end time.Time) ([]models.ScheduledSpan, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScheduledSpan), args.Error(1)
}

func (m *mockEvents) FindCompletedLabelSpans(ctx context.Context, userID int64, labelID int, start, end time.Time) ([]models.ScheduledSpan, error) {
	args := m.Called(ctx, userID, labelID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScheduledSpan), args.Error(1)
}

func (m *mockEvents) CountCompletedByLabel(ctx context.Context, userID int64, labelID int, start, end time.Time) (int, error) {
	args := m.Called(ctx, userID, labelID, start, end)
	return args.Int(0), args.Error(1)
}

type mockRecurring struct {
	mock.Mock
}

func (m *mockRecurring) FindWindows(ctx context.Context, userID int64, from, to civil.Date) ([]models.RecurringWindow, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecurringWindow), args.Error(1)
}

type mockLabels struct {
	mock.Mock
}

func (m *mockLabels) GetByID(ctx context.Context, labelID int) (*models.Label, error) {
	args := m.Called(ctx, labelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Label), args.Error(1)
}

func (m *mockLabels) ValidateOwnership(ctx context.Context, labelID int, userID int64) error {
	return m.Called(ctx, labelID, userID).Error(0)
}

type mockStats struct {
	mock.Mock
}

func (m *mockStats) GetMonthlyDuration(ctx context.Context, userID int64, labelID int, year int, month time.Month) (mo.Option[int], error) {
	args := m.Called(ctx, userID, labelID, year, month)
	return args.Get(0).(mo.Option[int]), args.Error(1)
}
