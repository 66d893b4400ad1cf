// Package config holds the configuration of the compliance services. Values come from
// an optional <name>.env file and the process environment, on top of defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config is the full configuration shared by the api_gateway and event_processor binaries.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Compliance  ComplianceConfig

	// Source is the config file that was read, empty when only defaults and the environment applied.
	Source string
}

type ApplicationConfig struct {
	Env  string
	Name string
}

type LoggingConfig struct {
	Level string
}

// ServerConfig configures the HTTP listener. The event_processor uses Port for its metrics endpoint.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig covers the compliance event topic, its consumer group and the dead letter topic.
type KafkaConfig struct {
	Brokers           string
	EventsTopic       string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64 // -1 starts new consumer groups at the newest offset
	DLQTopic          string // empty disables dead lettering
}

// BrokerList splits the comma separated broker string.
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig drives the relay that moves committed compliance events to Kafka.
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // publish attempts before a row is parked as failed
}

type WorkerPoolConfig struct {
	Size int
}

// ComplianceConfig carries the regulatory parameters used when deriving compliance balances.
type ComplianceConfig struct {
	TargetIntensity decimal.Decimal         // gCO2e/MJ applied when no per-year override exists
	TargetOverrides map[int]decimal.Decimal // per-year target intensities
}

// parseTargetOverrides reads "2025=89.3368,2030=85.6904" into a year keyed table.
// An empty string yields an empty table.
func parseTargetOverrides(raw string) (map[int]decimal.Decimal, error) {
	overrides := make(map[int]decimal.Decimal)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return overrides, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		yearText, valueText, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("malformed target override %q", pair)
		}

		var year int
		if _, err := fmt.Sscanf(strings.TrimSpace(yearText), "%d", &year); err != nil || year <= 0 {
			return nil, fmt.Errorf("malformed target override year %q", yearText)
		}

		value, err := decimal.NewFromString(strings.TrimSpace(valueText))
		if err != nil {
			return nil, fmt.Errorf("malformed target override value %q: %w", valueText, err)
		}
		if !value.IsPositive() {
			return nil, fmt.Errorf("target override for %d must be greater than 0", year)
		}
		overrides[year] = value
	}

	return overrides, nil
}

// problems accumulates human readable configuration errors keyed by env var name.
type problems []string

func (p *problems) require(ok bool, key, msg string) {
	if !ok {
		*p = append(*p, key+" "+msg)
	}
}

func (p *problems) positive(key string, d time.Duration) {
	p.require(d > 0, key, "must be greater than 0")
}

func (p *problems) count(key string, n int64) {
	p.require(n > 0, key, "must be greater than 0")
}

func (p *problems) present(key, value string) {
	p.require(strings.TrimSpace(value) != "", key, "is required")
}

func (s ServerConfig) check(p *problems) {
	p.require(s.Port > 0 && s.Port <= 65535, "SERVER_PORT", "must be between 1 and 65535")
	p.positive("SERVER_SHUTDOWN_TIMEOUT", s.ShutdownTimeout)
	p.positive("SERVER_READ_TIMEOUT", s.ReadTimeout)
	p.positive("SERVER_WRITE_TIMEOUT", s.WriteTimeout)
	p.positive("SERVER_IDLE_TIMEOUT", s.IdleTimeout)
}

func (k KafkaConfig) check(p *problems) {
	p.require(len(k.BrokerList()) > 0, "KAFKA_BROKERS", "is required")
	p.present("KAFKA_EVENTS_TOPIC", k.EventsTopic)
	p.present("KAFKA_CONSUMER_GROUP", k.ConsumerGroup)
	p.require(k.DLQTopic == "" || k.DLQTopic != k.EventsTopic, "KAFKA_DLQ_TOPIC", "must differ from KAFKA_EVENTS_TOPIC")
	p.count("KAFKA_CONSUMER_MIN_BYTES", int64(k.MinBytes))
	p.count("KAFKA_CONSUMER_MAX_BYTES", int64(k.MaxBytes))
	p.positive("KAFKA_CONSUMER_MAX_WAIT", k.MaxWait)
}

func (c PostgresConfig) check(p *problems) {
	p.present("POSTGRES_URL", c.URL)
	p.count("POSTGRES_MAX_CONNS", int64(c.MaxConns))
	p.count("POSTGRES_MIN_CONNS", int64(c.MinConns))
	p.require(c.MinConns <= c.MaxConns, "POSTGRES_MIN_CONNS", "must not exceed POSTGRES_MAX_CONNS")
	p.positive("POSTGRES_MAX_CONN_LIFETIME", c.ConnMaxLifetime)
	p.positive("POSTGRES_MAX_CONN_IDLE_TIME", c.ConnMaxIdleTime)
}

func (c MongoDBConfig) check(p *problems) {
	p.present("MONGO_URI", c.URI)
	p.present("MONGO_DATABASE", c.Database)
	p.positive("MONGO_TIMEOUT", c.Timeout)
	p.count("MONGO_MAX_POOL_SIZE", int64(c.MaxPoolSize))
	p.count("MONGO_MIN_POOL_SIZE", int64(c.MinPoolSize))
	p.positive("MONGO_MAX_CONN_IDLE_TIME", c.MaxConnIdleTime)
}

func (o OutboxConfig) check(p *problems) {
	p.positive("OUTBOX_POLLING_INTERVAL", o.PollingInterval)
	p.count("OUTBOX_BATCH_SIZE", int64(o.BatchSize))
	p.count("OUTBOX_MAX_RETRY_ATTEMPTS", int64(o.MaxRetryAttempts))
}

func (c ComplianceConfig) check(p *problems) {
	p.require(c.TargetIntensity.IsPositive(), "COMPLIANCE_TARGET_INTENSITY", "must be greater than 0")
}

// validate checks every section and reports all problems at once
func (c *Config) validate() error {
	var p problems
	c.Server.check(&p)
	c.Kafka.check(&p)
	c.Postgres.check(&p)
	c.MongoDB.check(&p)
	c.Outbox.check(&p)
	p.count("WORKER_POOL_SIZE", int64(c.WorkerPool.Size))
	c.Compliance.check(&p)

	if len(p) > 0 {
		return errors.New(strings.Join(p, ", "))
	}
	return nil
}
