package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hireloop/internal/pkg/metrics"
)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope(TypeApplicationStatusChanged, ApplicationStatusChanged{ApplicationID: 5, From: "SUBMITTED", To: "UNDER_REVIEW"})

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeApplicationStatusChanged, decoded["type"])
	assert.NotEmpty(t, decoded["id"])
	payload := decoded["payload"].(map[string]interface{})
	assert.EqualValues(t, 5, payload["applicationId"])
	assert.Equal(t, "UNDER_REVIEW", payload["to"])
}

func TestNewKafkaPublisherValidation(t *testing.T) {
	_, err := NewKafkaPublisher(Config{Topic: "t"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewKafkaPublisher(Config{Brokers: []string{"localhost:9092"}}, zerolog.Nop())
	assert.Error(t, err)

	p, err := NewKafkaPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "hireloop.events"}, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{Logger: zerolog.Nop()}
	assert.NoError(t, p.Publish(context.Background(), TypeJobStatusChanged, "1", nil))
}

func TestKafkaPublisherDoesNotStallWhenBrokerIsDown(t *testing.T) {
	p, err := NewKafkaPublisher(Config{
		Brokers:        []string{"127.0.0.1:1"},
		Topic:          "hireloop.events",
		PublishTimeout: 200 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, p.writer.Async)

	start := time.Now()
	_ = p.Publish(context.Background(), TypeApplicationStatusChanged, "5", ApplicationStatusChanged{ApplicationID: 5})
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestKafkaPublisherCountsFailedDeliveries(t *testing.T) {
	p, err := NewKafkaPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "hireloop.events"}, zerolog.Nop())
	require.NoError(t, err)

	failures := metrics.SideEffectFailures.WithLabelValues("event")
	before := testutil.ToFloat64(failures)

	msgs := []kafka.Message{
		{Key: []byte("1"), Headers: []kafka.Header{{Key: "event-type", Value: []byte(TypeJobStatusChanged)}}},
		{Key: []byte("2")},
	}
	p.completed(msgs, nil)
	assert.Equal(t, before, testutil.ToFloat64(failures))

	p.completed(msgs, errors.New("leader not available"))
	assert.Equal(t, before+2, testutil.ToFloat64(failures))
	assert.Equal(t, TypeJobStatusChanged, headerValue(msgs[0], "event-type"))
	assert.Empty(t, headerValue(msgs[1], "event-type"))
}
