package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/banking"
	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/outbox"
	"github.com/fueleu-compliance-ledger/internal/domain/pooling"
	"github.com/fueleu-compliance-ledger/internal/domain/route"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decEq(v string) interface{} {
	want := decimal.RequireFromString(v)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func eventOfType(eventType shared.EventType) interface{} {
	return mock.MatchedBy(func(msg *outbox.Message) bool { return msg.EventType == eventType })
}

// fakeTransactor runs the unit of work directly, without a database
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type MockShipLocker struct {
	mock.Mock
}

func (m *MockShipLocker) LockShips(ctx context.Context, tx pgx.Tx, shipIDs ...string) error {
	args := m.Called(ctx, shipIDs)
	return args.Error(0)
}

type MockComplianceRepository struct {
	mock.Mock
}

func (m *MockComplianceRepository) Get(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	args := m.Called(ctx, shipID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.Record), args.Error(1)
}

func (m *MockComplianceRepository) CreateIfAbsent(ctx context.Context, record *compliance.Record) (*compliance.Record, bool, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*compliance.Record), args.Bool(1), args.Error(2)
}

func (m *MockComplianceRepository) LockForUpdate(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	args := m.Called(ctx, shipID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.Record), args.Error(1)
}

func (m *MockComplianceRepository) UpdateBalance(ctx context.Context, id uuid.UUID, cb decimal.Decimal) error {
	args := m.Called(ctx, id, cb)
	return args.Error(0)
}

func (m *MockComplianceRepository) ListByYear(ctx context.Context, year int) ([]*compliance.Record, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*compliance.Record), args.Error(1)
}

func (m *MockComplianceRepository) WithTx(tx pgx.Tx) compliance.Repository {
	return m
}

type MockBankRepository struct {
	mock.Mock
}

func (m *MockBankRepository) Create(ctx context.Context, entry *banking.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBankRepository) ListByShip(ctx context.Context, shipID string, year *int) ([]*banking.Entry, error) {
	args := m.Called(ctx, shipID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*banking.Entry), args.Error(1)
}

func (m *MockBankRepository) ListUnapplied(ctx context.Context, shipID string) ([]*banking.Entry, error) {
	args := m.Called(ctx, shipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*banking.Entry), args.Error(1)
}

func (m *MockBankRepository) Update(ctx context.Context, entry *banking.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBankRepository) SumUnapplied(ctx context.Context, shipID string) (decimal.Decimal, error) {
	args := m.Called(ctx, shipID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBankRepository) SumAppliedToYear(ctx context.Context, shipID string, year int) (decimal.Decimal, error) {
	args := m.Called(ctx, shipID, year)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBankRepository) WithTx(tx pgx.Tx) banking.Repository {
	return m
}

type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) Create(ctx context.Context, pool *pooling.Pool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

func (m *MockPoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*pooling.Pool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pooling.Pool), args.Error(1)
}

func (m *MockPoolRepository) ListByYear(ctx context.Context, year int) ([]*pooling.Pool, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pooling.Pool), args.Error(1)
}

func (m *MockPoolRepository) WithTx(tx pgx.Tx) pooling.Repository {
	return m
}

type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) GetByRouteID(ctx context.Context, routeID string) (*route.Route, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) List(ctx context.Context, filter route.Filter) ([]*route.Route, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*route.Route), args.Error(1)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

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
