package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/yigit/hireloop/internal/pkg/metrics"
)

// Event types
const (
	TypeApplicationStatusChanged = "application.status_changed"
	TypeApplicationSubmitted     = "application.submitted"
	TypeJobStatusChanged         = "job.status_changed"
)

// Envelope is the JSON document written to the topic
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// ApplicationStatusChanged is published after a committed status transition
type ApplicationStatusChanged struct {
	ApplicationID int64   `json:"applicationId"`
	JobID         int64   `json:"jobId"`
	CompanyID     int64   `json:"companyId"`
	CandidateID   int64   `json:"candidateId"`
	ConsultantID  *int64  `json:"consultantId,omitempty"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	ChangedBy     int64   `json:"changedBy"`
	PlacementFee  *string `json:"placementFee,omitempty"`
	JobFilled     bool    `json:"jobFilled,omitempty"`
}

// ApplicationSubmitted is published when a candidate applies
type ApplicationSubmitted struct {
	ApplicationID int64 `json:"applicationId"`
	JobID         int64 `json:"jobId"`
	CompanyID     int64 `json:"companyId"`
	CandidateID   int64 `json:"candidateId"`
	MatchScore    int   `json:"matchScore"`
}

// JobStatusChanged is published when a job moves through its lifecycle
type JobStatusChanged struct {
	JobID     int64  `json:"jobId"`
	CompanyID int64  `json:"companyId"`
	From      string `json:"from"`
	To        string `json:"to"`
	ChangedBy int64  `json:"changedBy"`
}

// Publisher publishes domain events
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	Close() error
}

// Config holds kafka producer settings
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	// PublishTimeout bounds how long Publish may hold up the caller
	PublishTimeout time.Duration
}

// KafkaPublisher writes events to a single kafka topic. Writes are async:
// Publish only enqueues, and delivery failures are logged by the writer's
// completion callback.
type KafkaPublisher struct {
	writer         *kafka.Writer
	publishTimeout time.Duration
	logger         zerolog.Logger
}

// NewKafkaPublisher creates a publisher. No connection is made until the first write.
func NewKafkaPublisher(cfg Config, logger zerolog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}

	p := &KafkaPublisher{publishTimeout: cfg.PublishTimeout, logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		Async:        true,
		Completion:   p.completed,
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("Kafka publisher configured")
	return p, nil
}

// completed runs on the writer's goroutine once a batch is acknowledged or has
// exhausted its attempts.
func (p *KafkaPublisher) completed(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range messages {
		metrics.RecordSideEffectFailure("event")
		p.logger.Error().Err(err).
			Str("eventType", headerValue(msg, "event-type")).
			Str("key", string(msg.Key)).
			Msg("Failed to deliver event")
	}
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// NewEnvelope wraps a payload with an id and timestamp
func NewEnvelope(eventType string, payload interface{}) Envelope {
	return Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publish writes one event keyed by key, so events of one aggregate stay ordered
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	data, err := json.Marshal(NewEnvelope(eventType, payload))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	}
	// the first write per topic still fetches partition metadata synchronously
	ctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).Str("eventType", eventType).Str("key", key).Msg("Failed to publish event")
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close flushes pending writes
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher logs events at debug level instead of publishing them
type NoopPublisher struct {
	Logger zerolog.Logger
}

func (p NoopPublisher) Publish(_ context.Context, eventType, key string, _ interface{}) error {
	p.Logger.Debug().Str("eventType", eventType).Str("key", key).Msg("Event publishing disabled")
	return nil
}

func (NoopPublisher) Close() error { return nil }
