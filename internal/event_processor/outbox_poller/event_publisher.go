package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/outbox"
	"github.com/fueleu-compliance-ledger/internal/platform/messaging/producers"
	"github.com/segmentio/kafka-go"
)

// Header keys carried on every compliance event
const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
)

// EventPublisher relays one outbox message to the event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// ErrMalformedMessage marks an outbox row whose payload can never be published
type ErrMalformedMessage struct {
	ID  int64
	Err error
}

func (e ErrMalformedMessage) Error() string {
	return fmt.Sprintf("outbox message %d is malformed: %v", e.ID, e.Err)
}

func (e ErrMalformedMessage) Unwrap() error {
	return e.Err
}

// KafkaEventPublisher keys events by ship so each ship's history is consumed in order
type KafkaEventPublisher struct {
	producer producers.MessagePublisher
	logger   *slog.Logger
}

func NewKafkaEventPublisher(producer producers.MessagePublisher, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		logger:   logger,
	}
}

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		return ErrMalformedMessage{ID: message.ID, Err: err}
	}
	if !event.Type.Valid() || event.EventID != message.EventID {
		return ErrMalformedMessage{ID: message.ID, Err: fmt.Errorf("payload does not match row (type %q, event %s)", event.Type, event.EventID)}
	}

	headers := []kafka.Header{
		{Key: HeaderEventID, Value: []byte(event.EventID.String())},
		{Key: HeaderEventType, Value: []byte(event.Type)},
	}
	if event.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: HeaderCorrelationID, Value: []byte(event.CorrelationID)})
	}

	if err := p.producer.Publish(ctx, message.ShipID, message.Payload, headers...); err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventID, err)
	}
	return nil
}
