package events

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// TopicMappingCreated is the topic mapping creation events are published on.
const TopicMappingCreated = "mapping.created"

// MappingCreatedEvent is emitted once for every newly persisted mapping.
type MappingCreatedEvent struct {
	ID          int64     `json:"id"`
	Code        string    `json:"shortCode"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewMappingCreatedEvent builds the event for a stored mapping.
func NewMappingCreatedEvent(mapping *shortener.Mapping) *MappingCreatedEvent {
	return &MappingCreatedEvent{
		ID:          mapping.ID,
		Code:        string(mapping.Code),
		OriginalURL: mapping.OriginalURL,
		CreatedAt:   mapping.CreatedAt,
	}
}

// Sink receives mapping events for auditing.
type Sink interface {
	RecordMappingCreated(ctx context.Context, event *MappingCreatedEvent) error
}

// NewMappingCreatedPublisher returns a publish function bound to TopicMappingCreated.
func NewMappingCreatedPublisher(publisher message.Publisher) messaging.Publish[MappingCreatedEvent] {
	return messaging.NewPublishFunc[MappingCreatedEvent](publisher, TopicMappingCreated)
}

// NewMappingCreatedConsumer returns a consumer that forwards TopicMappingCreated events to sink.
func NewMappingCreatedConsumer(
	subscriber message.Subscriber, sink Sink, logger *zap.Logger,
) *messaging.Consumer[MappingCreatedEvent] {
	return messaging.NewConsumer[MappingCreatedEvent](subscriber, TopicMappingCreated, sink.RecordMappingCreated, logger)
}
