package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/outbox"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	selectOutboxMessage = `
		SELECT id, event_id, ship_id, event_type, payload, status, attempts, created_at, last_attempt_at
		FROM compliance_outbox`
)

// OutboxRepository stores compliance events awaiting relay to Kafka.
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
	now     func() time.Time
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
		now:     time.Now,
	}
}

func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{
		querier: tx,
		logger:  r.logger,
		now:     r.now,
	}
}

// Create stores a pending message. It must run in the transaction that produced the event.
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	query := `
		INSERT INTO compliance_outbox (event_id, ship_id, event_type, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		message.EventID,
		message.ShipID,
		message.EventType,
		message.Payload,
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return outbox.ErrDuplicateMessage{EventID: message.EventID}
	}
	r.logger.Error("Failed to create outbox message",
		"event_id", message.EventID.String(),
		"ship_id", message.ShipID,
		"event_type", string(message.EventType),
		"error", err,
	)
	return fmt.Errorf("failed to create outbox message: %w", err)
}

// GetPending returns up to limit pending messages in commit order
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	query := selectOutboxMessage + `
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, shared.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to get pending outbox messages", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*outbox.Message, 0, limit)
	for rows.Next() {
		message, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over outbox messages: %w", err)
	}

	return messages, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	query := `
		UPDATE compliance_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3
	`

	if err := r.touch(ctx, id, query, status, r.now(), id); err != nil {
		return fmt.Errorf("failed to update outbox message status to %s: %w", status, err)
	}
	return nil
}

// IncrementAttempts records one more failed publish attempt
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	query := `
		UPDATE compliance_outbox
		SET attempts = attempts + 1, last_attempt_at = $1
		WHERE id = $2
	`

	if err := r.touch(ctx, id, query, r.now(), id); err != nil {
		return fmt.Errorf("failed to increment outbox message attempts: %w", err)
	}
	return nil
}

// touch runs a single-row update and reports a missing row as ErrMessageNotFound
func (r *OutboxRepository) touch(ctx context.Context, id int64, query string, args ...any) error {
	result, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update outbox message", "id", id, "error", err)
		return err
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

func (r *OutboxRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.Message, error) {
	message, err := scanOutboxMessage(r.querier.QueryRow(ctx, selectOutboxMessage+`
		WHERE event_id = $1
	`, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, outbox.ErrMessageNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get outbox message by event ID", "event_id", eventID.String(), "error", err)
		return nil, fmt.Errorf("failed to get outbox message by event ID: %w", err)
	}
	return message, nil
}

func scanOutboxMessage(row pgx.Row) (*outbox.Message, error) {
	var m outbox.Message
	err := row.Scan(
		&m.ID,
		&m.EventID,
		&m.ShipID,
		&m.EventType,
		&m.Payload,
		&m.Status,
		&m.Attempts,
		&m.CreatedAt,
		&m.LastAttemptAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
