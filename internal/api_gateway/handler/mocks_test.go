package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fueleu-compliance-ledger/internal/domain/banking"
	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/pooling"
	"github.com/fueleu-compliance-ledger/internal/domain/route"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// PaginatedResponse is a generic version of Response for testing paginated data
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error *ErrorInfo             `json:"error"`
}

type listEnvelope struct {
	Data  []map[string]interface{} `json:"data"`
	Error *ErrorInfo               `json:"error"`
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(router *gin.Engine, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewBuffer(payload)
	}

	req, _ := http.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func decEq(v string) interface{} {
	want := decimal.RequireFromString(v)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

type MockComplianceService struct {
	mock.Mock
}

func (m *MockComplianceService) GetComplianceBalance(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	args := m.Called(ctx, shipID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.Record), args.Error(1)
}

func (m *MockComplianceService) GetAdjustedCompliance(ctx context.Context, shipID string, year int) (*compliance.Adjusted, error) {
	args := m.Called(ctx, shipID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.Adjusted), args.Error(1)
}

func (m *MockComplianceService) ListComplianceBalances(ctx context.Context, year int) ([]*compliance.Record, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*compliance.Record), args.Error(1)
}

func (m *MockComplianceService) ListAdjustedCompliance(ctx context.Context, year int) ([]*compliance.Adjusted, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*compliance.Adjusted), args.Error(1)
}

type MockBankingService struct {
	mock.Mock
}

func (m *MockBankingService) BankSurplus(ctx context.Context, shipID string, year int, amount decimal.Decimal) (*banking.Result, error) {
	args := m.Called(ctx, shipID, year, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.Result), args.Error(1)
}

func (m *MockBankingService) ApplyBanked(ctx context.Context, shipID string, deficitYear int, amount decimal.Decimal) (*banking.Result, error) {
	args := m.Called(ctx, shipID, deficitYear, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.Result), args.Error(1)
}

func (m *MockBankingService) GetAvailableBalance(ctx context.Context, shipID string) (decimal.Decimal, error) {
	args := m.Called(ctx, shipID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBankingService) GetBankingRecords(ctx context.Context, shipID string, year *int) ([]*banking.Entry, error) {
	args := m.Called(ctx, shipID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*banking.Entry), args.Error(1)
}

type MockPoolingService struct {
	mock.Mock
}

func (m *MockPoolingService) ValidatePool(ctx context.Context, year int, shipIDs []string) (*pooling.ValidationResult, error) {
	args := m.Called(ctx, year, shipIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pooling.ValidationResult), args.Error(1)
}

func (m *MockPoolingService) CreatePool(ctx context.Context, year int, shipIDs []string) (*pooling.Pool, error) {
	args := m.Called(ctx, year, shipIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pooling.Pool), args.Error(1)
}

func (m *MockPoolingService) GetPool(ctx context.Context, id uuid.UUID) (*pooling.Pool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pooling.Pool), args.Error(1)
}

func (m *MockPoolingService) ListPools(ctx context.Context, year int) ([]*pooling.Pool, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pooling.Pool), args.Error(1)
}

type MockRouteService struct {
	mock.Mock
}

func (m *MockRouteService) GetRoute(ctx context.Context, routeID string) (*route.Route, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteService) ListRoutes(ctx context.Context, filter route.Filter) ([]*route.Route, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*route.Route), args.Error(1)
}

type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) GetShipHistory(ctx context.Context, shipID string, page, perPage int) ([]*journal.Event, int64, error) {
	args := m.Called(ctx, shipID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*journal.Event), args.Get(1).(int64), args.Error(2)
}
