package messaging

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable represents a component that can be started and shutdown.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup manages multiple consumers sharing one subscriber.
// Consumers are stopped in reverse start order before the subscriber is closed.
type ConsumerGroup struct {
	consumers  []Runnable
	started    int
	subscriber message.Subscriber
	logger     *zap.Logger
}

// NewConsumerGroup creates a new consumer group.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a consumer to the group.
func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

// Start starts all consumers in the group.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			g.stopStarted()

			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}

		g.started++
	}

	g.logger.Info("consumer group started", zap.Int("count", len(g.consumers)))

	return nil
}

// Shutdown stops all consumers gracefully and returns the first error seen.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group")

	firstErr := g.stopStarted()

	if err := g.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

func (g *ConsumerGroup) stopStarted() error {
	var firstErr error

	for ; g.started > 0; g.started-- {
		if err := g.consumers[g.started-1].Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
