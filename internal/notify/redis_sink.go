package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bepa/internal/support"
)

const redisPublishTimeout = 5 * time.Second

// RedisSink publishes alert payloads to a pub/sub channel so another process
// on the host can react to them. Nothing is persisted; subscribers that are
// not listening at publish time simply miss the event.
type RedisSink struct {
	client  *redis.Client
	channel string
}

type redisAlertPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// NewRedisSink dials url (redis:// form) and returns a sink publishing to
// channel.
func NewRedisSink(url, channel string) (*RedisSink, error) {
	client, err := support.GetRedisClient(url)
	if err != nil {
		return nil, err
	}
	return &RedisSink{client: client, channel: channel}, nil
}

func (s *RedisSink) Notify(title, message string) error {
	payload, err := json.Marshal(redisAlertPayload{
		Title:   title,
		Message: message,
		SentAt:  time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPublishTimeout)
	defer cancel()
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	return nil
}
