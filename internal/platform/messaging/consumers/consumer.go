package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fueleu-compliance-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const maxHandlerAttempts = 3

// MessageHandler returns nil once a message is fully handled. An error leaves it uncommitted.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// messageReader is the subset of *kafka.Reader the consumer loop drives
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ messageReader = (*kafka.Reader)(nil)

// KafkaConsumer reads the compliance events topic as part of a consumer group
type KafkaConsumer struct {
	reader     messageReader
	logger     *slog.Logger
	topic      string
	groupID    string
	retryDelay time.Duration
	done       chan struct{}
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	return &KafkaConsumer{
		logger:  logger,
		topic:   cfg.EventsTopic,
		groupID: cfg.ConsumerGroup,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.BrokerList(),
			Topic:       cfg.EventsTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
		retryDelay: time.Second,
		done:       make(chan struct{}),
	}
}

// Subscribe starts consuming in the background until ctx is canceled
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topic", "topic", c.topic, "group_id", c.groupID)

	go func() {
		defer close(c.done)
		c.consume(ctx, handler)
	}()
	return nil
}

// Done is closed once the consume loop has exited
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) consume(ctx context.Context, handler MessageHandler) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", "topic", c.topic, "error", err)
			if !c.wait(ctx) {
				return
			}
			continue
		}

		logger := c.logger.With(
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)

		if !c.handle(ctx, logger, handler, msg) {
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Error("Failed to commit message after successful processing", "error", err)
			continue
		}
		logger.Debug("Message committed")
	}
}

// handle retries the handler a few times before leaving the message uncommitted
func (c *KafkaConsumer) handle(ctx context.Context, logger *slog.Logger, handler MessageHandler, msg kafka.Message) bool {
	for attempt := 1; attempt <= maxHandlerAttempts; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		logger.Error("Failed to process message", "attempt", attempt, "error", err)
		if attempt < maxHandlerAttempts && !c.wait(ctx) {
			return false
		}
	}
	logger.Error("Giving up on message, offset not committed", "attempts", maxHandlerAttempts)
	return false
}

func (c *KafkaConsumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.retryDelay):
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
