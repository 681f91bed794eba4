package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventBus is the publish/subscribe contract the modules share.
type EventBus interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Publisher() message.Publisher
	Subscriber() message.Subscriber
	Close() error
}

// eventBus implements EventBus on top of watermill's in-process pub/sub.
type eventBus struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
}

// NewEventBus creates the in-process event bus shared by all modules.
func NewEventBus(logger *slog.Logger) EventBus {
	watermillLogger := watermill.NewSlogLogger(logger)

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 64,
			Persistent:          false,
		},
		watermillLogger,
	)

	return &eventBus{
		pubSub: pubSub,
		logger: logger,
	}
}

func (eb *eventBus) Publish(ctx context.Context, topic string, msg *message.Message) error {
	if msg.UUID == "" {
		msg.UUID = watermill.NewUUID()
	}
	msg.SetContext(ctx)

	eb.logger.Debug("Publishing message",
		slog.String("topic", topic),
		slog.String("message_id", msg.UUID),
	)

	if err := eb.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (eb *eventBus) Publisher() message.Publisher {
	return eb.pubSub
}

func (eb *eventBus) Subscriber() message.Subscriber {
	return eb.pubSub
}

func (eb *eventBus) Close() error {
	return eb.pubSub.Close()
}
