package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/jackc/pgx/v5"
)

// ShipLocker takes transaction-scoped advisory locks keyed by ship id.
// Locks are acquired in sorted order so multi-ship operations cannot deadlock each other.
type ShipLocker struct {
	logger *slog.Logger
}

var _ compliance.ShipLocker = (*ShipLocker)(nil)

func NewShipLocker(logger *slog.Logger) *ShipLocker {
	return &ShipLocker{logger: logger}
}

func (l *ShipLocker) LockShips(ctx context.Context, tx pgx.Tx, shipIDs ...string) error {
	ids := make([]string, 0, len(shipIDs))
	seen := make(map[string]struct{}, len(shipIDs))
	for _, id := range shipIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "ship:"+id); err != nil {
			l.logger.Error("Failed to acquire ship lock", "ship_id", id, "error", err)
			return fmt.Errorf("failed to lock ship %s: %w", id, err)
		}
	}
	return nil
}
