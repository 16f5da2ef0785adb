package repository

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "pommapper:invalidate"

// RedisNotifier fans change events out to other instances sharing a Redis
// server. Each notifier tags its messages with a random instance id and
// ignores its own messages on receipt.
type RedisNotifier struct {
	client   redis.UniversalClient
	channel  string
	instance string
	logger   *log.Logger
}

type notifyMessage struct {
	Instance string `json:"instance"`
	Event
}

// NewRedisNotifier creates a notifier on channel (DefaultChannel when empty).
// The client is not closed by the notifier.
func NewRedisNotifier(client redis.UniversalClient, channel string, logger *log.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RedisNotifier{
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
		logger:   logger.WithPrefix("notify"),
	}
}

// Instance returns the id stamped on published messages.
func (n *RedisNotifier) Instance() string { return n.instance }

// Publish sends ev to all other subscribed instances.
func (n *RedisNotifier) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(notifyMessage{Instance: n.instance, Event: ev})
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, data).Err()
}

// Subscribe delivers events published by other instances on out until ctx
// is done. Malformed messages are logged and dropped. It returns once the
// subscription is closed.
func (n *RedisNotifier) Subscribe(ctx context.Context, out chan<- Event) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, ok := n.decode(msg.Payload)
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Forward publishes every event read from in until in is closed or ctx is
// done, and passes each event on to out.
func (n *RedisNotifier) Forward(ctx context.Context, in <-chan Event, out chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			if err := n.Publish(ctx, ev); err != nil {
				n.logger.Warn("publish event", "path", ev.Path, "err", err)
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (n *RedisNotifier) decode(payload string) (Event, bool) {
	var m notifyMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		n.logger.Warn("drop malformed message", "err", err)
		return Event{}, false
	}
	if m.Instance == n.instance || m.Repository == "" {
		return Event{}, false
	}
	return m.Event, true
}
