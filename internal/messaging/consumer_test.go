package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/events"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errSinkDown = errors.New("sink unavailable")

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	topics       []string
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	m.mu.Lock()
	m.topics = append(m.topics, topic)
	m.mu.Unlock()

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

func createdEventMessage(t *testing.T, code shortener.Code, originalURL string) *message.Message {
	t.Helper()

	event := events.NewMappingCreatedEvent(&shortener.Mapping{
		ID:          7,
		Code:        code,
		OriginalURL: originalURL,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

func newCreatedConsumer(
	sub message.Subscriber,
	handler messaging.Handler[events.MappingCreatedEvent],
	logger *zap.Logger,
) *messaging.Consumer[events.MappingCreatedEvent] {
	return messaging.NewConsumer[events.MappingCreatedEvent](sub, events.TopicMappingCreated, handler, logger)
}

func acceptAll(_ context.Context, _ *events.MappingCreatedEvent) error { return nil }

func waitAcked(t *testing.T, msg *message.Message) {
	t.Helper()

	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatal("message was nacked")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack")
	}
}

func TestConsumer_Start(t *testing.T) {
	t.Run("subscribes to the mapping created topic", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newCreatedConsumer(sub, acceptAll, zap.NewNop())

		err := consumer.Start(context.Background())

		require.NoError(t, err)
		assert.Equal(t, events.TopicMappingCreated, consumer.Topic())
		assert.Equal(t, []string{events.TopicMappingCreated}, sub.topics)

		_ = consumer.Shutdown()
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := newCreatedConsumer(sub, acceptAll, zap.NewNop())

		err := consumer.Start(context.Background())

		assert.Error(t, err)
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("decodes the mapping and acks", func(t *testing.T) {
		sub := newMockSubscriber()
		received := make(chan *events.MappingCreatedEvent, 1)

		consumer := newCreatedConsumer(sub, func(_ context.Context, event *events.MappingCreatedEvent) error {
			received <- event

			return nil
		}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		msg := createdEventMessage(t, "abc123", "https://example.com/long")
		sub.msgChan <- msg

		waitAcked(t, msg)

		event := <-received
		assert.Equal(t, int64(7), event.ID)
		assert.Equal(t, "abc123", event.Code)
		assert.Equal(t, "https://example.com/long", event.OriginalURL)
		assert.True(t, event.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

		_ = consumer.Shutdown()
	})

	t.Run("acks and drops undecodable payloads", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		sub := newMockSubscriber()
		called := make(chan struct{}, 1)

		consumer := newCreatedConsumer(sub, func(_ context.Context, _ *events.MappingCreatedEvent) error {
			called <- struct{}{}

			return nil
		}, zap.New(core))

		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(uuid.NewString(), []byte(`{"shortCode":`))
		sub.msgChan <- msg

		waitAcked(t, msg)
		require.NoError(t, consumer.Shutdown())

		assert.Empty(t, called)

		dropped := logs.FilterMessage("dropping undecodable event").All()
		require.Len(t, dropped, 1)
		assert.Equal(t, events.TopicMappingCreated, dropped[0].ContextMap()["topic"])
		assert.Equal(t, msg.UUID, dropped[0].ContextMap()["message_id"])
	})

	t.Run("nacks when the sink fails", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newCreatedConsumer(sub, func(_ context.Context, _ *events.MappingCreatedEvent) error {
			return errSinkDown
		}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		msg := createdEventMessage(t, "abc123", "https://example.com")
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("feeds the log sink", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		logger := zap.New(core)
		sub := newMockSubscriber()

		consumer := events.NewMappingCreatedConsumer(sub, events.NewLogSink(logger), logger)
		require.NoError(t, consumer.Start(context.Background()))

		msg := createdEventMessage(t, "sink01", "https://example.com/sink")
		sub.msgChan <- msg

		waitAcked(t, msg)
		require.NoError(t, consumer.Shutdown())

		assert.Equal(t, 1, logs.Len())
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("shuts down gracefully", func(t *testing.T) {
		consumer := newCreatedConsumer(newMockSubscriber(), acceptAll, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("returns immediately when never started", func(t *testing.T) {
		consumer := newCreatedConsumer(newMockSubscriber(), acceptAll, zap.NewNop())

		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("returns after a failed start", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := newCreatedConsumer(sub, acceptAll, zap.NewNop())

		require.Error(t, consumer.Start(context.Background()))
		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("stops when the subscriber closes", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newCreatedConsumer(sub, acceptAll, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		require.NoError(t, sub.Close())

		assert.NoError(t, consumer.Shutdown())
	})
}
