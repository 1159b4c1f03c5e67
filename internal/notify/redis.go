package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/logging"
)

// ChannelPrefix prefixes the per-user Redis channels.
const ChannelPrefix = "diet:events:"

// Channel is the Redis channel of userID.
func Channel(userID string) string {
	return ChannelPrefix + userID
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisSink publishes events as JSON on the user's channel.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink creates a sink on client.
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

// Publish implements Sink.
func (s *RedisSink) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.client.Publish(ctx, Channel(ev.UserID), payload).Err()
}

// Relay forwards every event published on the Redis channels into hub, so
// each instance serves its own SSE subscribers. It returns when ctx ends.
func Relay(ctx context.Context, client *redis.Client, hub *Hub, log *slog.Logger) {
	pubsub := client.PSubscribe(ctx, ChannelPrefix+"*")
	defer pubsub.Close()

	log = log.With(slog.String("component", "redis_relay"))
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn("dropping undecodable event", slog.String("channel", msg.Channel), logging.Err(err))
				continue
			}
			if ev.UserID == "" {
				ev.UserID = strings.TrimPrefix(msg.Channel, ChannelPrefix)
			}
			_ = hub.Publish(ctx, ev)
		}
	}
}
