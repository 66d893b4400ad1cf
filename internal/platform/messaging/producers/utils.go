package producers

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const topicReadAttempts = 5

var topicRetryDelay = 2 * time.Second

// ensureTopic creates topicName unless the broker already reports partitions for it.
// A broker that answers UnknownTopicOrPartition is not retried.
func ensureTopic(admin topicAdmin, topicName string, numPartitions, replicationFactor int, log *slog.Logger) error {
	var (
		partitions []kafka.Partition
		err        error
	)

	for attempt := 1; attempt <= topicReadAttempts; attempt++ {
		partitions, err = admin.ReadPartitions(topicName)
		if err == nil || errors.Is(err, kafka.UnknownTopicOrPartition) {
			break
		}
		log.Warn("Failed to read topic partitions, retrying", "topic", topicName, "attempt", attempt, "error", err)
		time.Sleep(topicRetryDelay)
	}

	if len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", topicName, "partitions", len(partitions))
		return nil
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}

	log.Info("Creating Kafka topic",
		"topic", topicName,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor,
		"last_read_error", err,
	)
	if err := admin.CreateTopics(topicConfig); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}
	return nil
}

// dialAndEnsureTopic opens a short-lived admin connection to the first reachable broker
func dialAndEnsureTopic(brokers []string, topicName string, numPartitions, replicationFactor int, log *slog.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	var dialErr error
	for _, broker := range brokers {
		conn, err := kafka.Dial("tcp", broker)
		if err != nil {
			dialErr = errors.Join(dialErr, err)
			continue
		}
		defer conn.Close()
		return ensureTopic(conn, topicName, numPartitions, replicationFactor, log)
	}
	return fmt.Errorf("failed to dial kafka: %w", dialErr)
}
