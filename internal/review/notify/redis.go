package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultChannel = "reviewtree.events"
	// DefaultPublishTimeout bounds how long an action waits on redis.
	DefaultPublishTimeout = 250 * time.Millisecond
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Redis publishes events as JSON on a pub/sub channel.
type Redis struct {
	client  publisher
	channel string
	timeout time.Duration
}

// NewRedisClient returns a client tuned for fire-and-forget publishing:
// short dial and IO timeouts and no retries.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  DefaultPublishTimeout,
		WriteTimeout: DefaultPublishTimeout,
		MaxRetries:   -1,
	})
}

func NewRedis(client *redis.Client, channel string) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{client: client, channel: channel, timeout: DefaultPublishTimeout}
}

func (r *Redis) Notify(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("event_id", e.ID.String()).Msg("marshal event")
		return
	}

	timeout := r.timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", r.channel).Str("event_id", e.ID.String()).Msg("publish event")
	}
}
