package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func appliedEvent() *journal.Event {
	ctx := shared.WithCorrelationID(context.Background(), "corr-apply")
	return journal.NewEvent(ctx, shared.EventTypeBankedApplied, "ROUTE-003", 2025,
		decimal.NewFromInt(7), decimal.NewFromInt(-10), decimal.NewFromInt(-3))
}

func projectedCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "fueleu_journal_projected_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestJournalProjectionService_Project(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("AppendsWithRecordedAt", func(t *testing.T) {
		repo := new(MockJournalRepository)
		reg := prometheus.NewRegistry()
		svc := NewJournalProjectionService(repo, metrics.NewWithRegisterer(reg), newTestLogger())
		svc.now = func() time.Time { return fixed }
		event := appliedEvent()

		repo.On("Append", ctx, mock.MatchedBy(func(e *journal.Event) bool {
			return e.EventID == event.EventID && e.RecordedAt != nil && e.RecordedAt.Equal(fixed)
		})).Return(nil).Once()

		require.NoError(t, svc.Project(ctx, event))
		repo.AssertExpectations(t)
		assert.Equal(t, 1.0, projectedCount(t, reg, metrics.OutcomeSuccess))
	})

	t.Run("DuplicateIsAcknowledged", func(t *testing.T) {
		repo := new(MockJournalRepository)
		reg := prometheus.NewRegistry()
		svc := NewJournalProjectionService(repo, metrics.NewWithRegisterer(reg), newTestLogger())
		event := appliedEvent()

		repo.On("Append", ctx, mock.Anything).Return(journal.ErrDuplicateEvent{EventID: event.EventID}).Once()

		require.NoError(t, svc.Project(ctx, event))
		assert.Equal(t, 1.0, projectedCount(t, reg, outcomeDuplicate))
	})

	t.Run("StorageErrorIsReturned", func(t *testing.T) {
		repo := new(MockJournalRepository)
		svc := NewJournalProjectionService(repo, nil, newTestLogger())
		storageErr := errors.New("no reachable servers")

		repo.On("Append", ctx, mock.Anything).Return(storageErr).Once()

		err := svc.Project(ctx, appliedEvent())
		assert.ErrorIs(t, err, storageErr)
	})
}
