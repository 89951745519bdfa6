package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicLifecycle carries every engine lifecycle event in-process.
const TopicLifecycle = "cancellation.lifecycle"

// Publisher is the minimal publishing contract the engine depends on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Envelope is the wire form of an Event on the bus.
type Envelope struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt string                 `json:"occurred_at"`
}

// Bus is an in-process pub/sub built on watermill's gochannel transport.
type Bus struct {
	pubSub *gochannel.GoChannel
}

// NewBus creates the in-process event bus.
func NewBus() *Bus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	return &Bus{pubSub: pubSub}
}

// Publish serializes the event and pushes it onto the lifecycle topic.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	env := Envelope{
		Type:       event.EventType(),
		Payload:    event.Payload(),
		OccurredAt: event.Timestamp().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return b.pubSub.Publish(TopicLifecycle, msg)
}

// Subscribe returns a channel of raw lifecycle messages. Consumers must Ack
// every message.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, TopicLifecycle)
}

// Close shuts the underlying pub/sub down.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}
