package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Append(ctx context.Context, e *journal.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockJournalRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*journal.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Event), args.Error(1)
}

func (m *MockJournalRepository) ListByShip(ctx context.Context, shipID string, limit, offset int) ([]*journal.Event, error) {
	args := m.Called(ctx, shipID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.Event), args.Error(1)
}

func (m *MockJournalRepository) CountByShip(ctx context.Context, shipID string) (int64, error) {
	args := m.Called(ctx, shipID)
	return args.Get(0).(int64), args.Error(1)
}

type MockProjectionService struct {
	mock.Mock
}

func (m *MockProjectionService) Project(ctx context.Context, event *journal.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
