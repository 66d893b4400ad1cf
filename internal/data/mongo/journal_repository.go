package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// JournalCollectionName is the collection holding compliance journal events
	JournalCollectionName = "compliance_journal"
)

// eventDocument is the stored shape of a journal.Event. Amounts are kept as
// Decimal128 so no precision is lost between Postgres and Mongo.
type eventDocument struct {
	EventID       string               `bson:"event_id"`
	Type          shared.EventType     `bson:"type"`
	ShipID        string               `bson:"ship_id"`
	Year          int                  `bson:"year"`
	Amount        primitive.Decimal128 `bson:"amount"`
	CBBefore      primitive.Decimal128 `bson:"cb_before"`
	CBAfter       primitive.Decimal128 `bson:"cb_after"`
	PoolID        string               `bson:"pool_id,omitempty"`
	CorrelationID string               `bson:"correlation_id,omitempty"`
	OccurredAt    time.Time            `bson:"occurred_at"`
	RecordedAt    time.Time            `bson:"recorded_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func toDocument(e *journal.Event, recordedAt time.Time) (*eventDocument, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	before, err := toDecimal128(e.CBBefore)
	if err != nil {
		return nil, fmt.Errorf("cb_before: %w", err)
	}
	after, err := toDecimal128(e.CBAfter)
	if err != nil {
		return nil, fmt.Errorf("cb_after: %w", err)
	}

	doc := &eventDocument{
		EventID:       e.EventID.String(),
		Type:          e.Type,
		ShipID:        e.ShipID,
		Year:          e.Year,
		Amount:        amount,
		CBBefore:      before,
		CBAfter:       after,
		CorrelationID: e.CorrelationID,
		OccurredAt:    e.OccurredAt,
		RecordedAt:    recordedAt,
	}
	if e.PoolID != nil {
		doc.PoolID = e.PoolID.String()
	}
	return doc, nil
}

func (d *eventDocument) toEvent() (*journal.Event, error) {
	eventID, err := uuid.Parse(d.EventID)
	if err != nil {
		return nil, fmt.Errorf("event_id: %w", err)
	}
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	before, err := fromDecimal128(d.CBBefore)
	if err != nil {
		return nil, fmt.Errorf("cb_before: %w", err)
	}
	after, err := fromDecimal128(d.CBAfter)
	if err != nil {
		return nil, fmt.Errorf("cb_after: %w", err)
	}

	recordedAt := d.RecordedAt
	e := &journal.Event{
		EventID:       eventID,
		Type:          d.Type,
		ShipID:        d.ShipID,
		Year:          d.Year,
		Amount:        amount,
		CBBefore:      before,
		CBAfter:       after,
		CorrelationID: d.CorrelationID,
		OccurredAt:    d.OccurredAt,
		RecordedAt:    &recordedAt,
	}
	if d.PoolID != "" {
		poolID, err := uuid.Parse(d.PoolID)
		if err != nil {
			return nil, fmt.Errorf("pool_id: %w", err)
		}
		e.PoolID = &poolID
	}
	return e, nil
}

// JournalRepository implements the journal.Repository interface for MongoDB
type JournalRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewJournalRepository(logger *slog.Logger, db *mongo.Database) *JournalRepository {
	return &JournalRepository{
		db:     db,
		logger: logger,
	}
}

var _ journal.Repository = (*JournalRepository)(nil)

// EnsureIndexes creates the unique event id index that makes Append idempotent,
// plus the per-ship history index.
func (r *JournalRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(JournalCollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "ship_id", Value: 1}, {Key: "occurred_at", Value: -1}},
		},
	})
	if err != nil {
		r.logger.Error("Failed to create journal indexes", "error", err)
		return fmt.Errorf("failed to create journal indexes: %w", err)
	}
	return nil
}

// Append stores the event. A replay of an already stored event yields ErrDuplicateEvent.
func (r *JournalRepository) Append(ctx context.Context, e *journal.Event) error {
	doc, err := toDocument(e, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to encode journal event: %w", err)
	}

	if _, err := r.db.Collection(JournalCollectionName).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return journal.ErrDuplicateEvent{EventID: e.EventID}
		}
		r.logger.Error("Failed to append journal event",
			"event_id", e.EventID.String(),
			"ship_id", e.ShipID,
			"error", err)
		return fmt.Errorf("failed to append journal event: %w", err)
	}

	return nil
}

func (r *JournalRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*journal.Event, error) {
	var doc eventDocument
	err := r.db.Collection(JournalCollectionName).FindOne(ctx, bson.M{"event_id": eventID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, journal.ErrEventNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get journal event", "event_id", eventID.String(), "error", err)
		return nil, fmt.Errorf("failed to get journal event: %w", err)
	}

	return doc.toEvent()
}

// ListByShip returns a page of a ship's history, newest first
func (r *JournalRepository) ListByShip(ctx context.Context, shipID string, limit, offset int) ([]*journal.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(JournalCollectionName).Find(ctx, bson.M{"ship_id": shipID}, opts)
	if err != nil {
		r.logger.Error("Failed to list journal events", "ship_id", shipID, "error", err)
		return nil, fmt.Errorf("failed to list journal events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode journal events", "ship_id", shipID, "error", err)
		return nil, fmt.Errorf("failed to decode journal events: %w", err)
	}

	events := make([]*journal.Event, 0, len(docs))
	for i := range docs {
		e, err := docs[i].toEvent()
		if err != nil {
			return nil, fmt.Errorf("failed to decode journal event: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *JournalRepository) CountByShip(ctx context.Context, shipID string) (int64, error) {
	count, err := r.db.Collection(JournalCollectionName).CountDocuments(ctx, bson.M{"ship_id": shipID})
	if err != nil {
		r.logger.Error("Failed to count journal events", "ship_id", shipID, "error", err)
		return 0, fmt.Errorf("failed to count journal events: %w", err)
	}
	return count, nil
}
