package service

import (
	"context"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
)

// JournalServiceImpl implements the JournalService interface
type JournalServiceImpl struct {
	journalRepo journal.Repository
	logger      *slog.Logger
}

// NewJournalService creates a new journal service
func NewJournalService(logger *slog.Logger, journalRepo journal.Repository) JournalService {
	return &JournalServiceImpl{
		journalRepo: journalRepo,
		logger:      logger,
	}
}

// GetShipHistory retrieves a page of a ship's compliance events
// Returns events, total count, and any error
func (s *JournalServiceImpl) GetShipHistory(ctx context.Context, shipID string, page, perPage int) ([]*journal.Event, int64, error) {
	offset := (page - 1) * perPage

	events, err := s.journalRepo.ListByShip(ctx, shipID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.journalRepo.CountByShip(ctx, shipID)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
