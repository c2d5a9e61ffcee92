// internal/messaging/broadcaster.go
// Redis pub/sub fan-out so every API instance delivers events to its own
// websocket clients

package messaging

import (
    "context"
    "encoding/json"
    "fmt"
    "log"

    "github.com/go-redis/redis/v8"
)

// RedisBroadcaster publishes chat events on one Redis channel
type RedisBroadcaster struct {
    client  *redis.Client
    channel string
}

func NewRedisBroadcaster(client *redis.Client, channel string) *RedisBroadcaster {
    return &RedisBroadcaster{client: client, channel: channel}
}

// Publish sends the event without waiting for any subscriber
func (b *RedisBroadcaster) Publish(ctx context.Context, event Event) error {
    data, err := encodeEvent(event)
    if err != nil {
        RecordBroadcastFailure()
        return err
    }
    if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
        RecordBroadcastFailure()
        return fmt.Errorf("failed to publish on %s: %w", b.channel, err)
    }
    return nil
}

// Subscribe forwards every event on the channel to local until ctx is done
func (b *RedisBroadcaster) Subscribe(ctx context.Context, local Publisher) {
    pubsub := b.client.Subscribe(ctx, b.channel)
    defer pubsub.Close()

    log.Printf("📡 Subscribed to Redis channel %q", b.channel)
    ch := pubsub.Channel()
    for {
        select {
        case <-ctx.Done():
            log.Printf("Redis subscription to %q stopped", b.channel)
            return
        case msg, ok := <-ch:
            if !ok {
                return
            }
            event, err := decodeEvent([]byte(msg.Payload))
            if err != nil {
                RecordBroadcastFailure()
                log.Printf("Dropping malformed event on %s: %v", b.channel, err)
                continue
            }
            if err := local.Publish(ctx, event); err != nil {
                log.Printf("Failed to deliver event %s: %v", event.Payload.ID, err)
            }
        }
    }
}

func encodeEvent(event Event) ([]byte, error) {
    data, err := json.Marshal(event)
    if err != nil {
        return nil, fmt.Errorf("failed to encode event: %w", err)
    }
    return data, nil
}

func decodeEvent(data []byte) (Event, error) {
    var event Event
    if err := json.Unmarshal(data, &event); err != nil {
        return Event{}, err
    }
    if event.Event != EventNewMessage || event.Payload.ChatRoomID == "" {
        return Event{}, fmt.Errorf("unexpected event %q", event.Event)
    }
    return event, nil
}
