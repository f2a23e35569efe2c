package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohamedkhairy/ta-engine/internal/config"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
)

// StreamMessage is one entry read from a Redis stream
type StreamMessage struct {
	ID     string
	Stream string
	Values map[string]interface{}
}

// Client wraps the Redis operations the indicator service needs: keyed JSON
// snapshot writes, pub/sub notifications, and stream consumption.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and verifies the connection
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
	)

	return &Client{rdb: rdb}, nil
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SetJSON marshals value to JSON and stores it under key with a TTL
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Publish marshals value to JSON and publishes it on a pub/sub channel
func (c *Client) Publish(ctx context.Context, channel string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := c.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	return nil
}

// PublishToStream appends a JSON-encoded entry to a Redis stream under the
// given field name
func (c *Client) PublishToStream(ctx context.Context, stream, field string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	err = c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{field: string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}
	return nil
}

// ConsumeFromStream consumes messages from a stream via a consumer group.
// The returned channel closes when ctx is cancelled. Messages must be
// acknowledged with Ack after successful processing.
func (c *Client) ConsumeFromStream(ctx context.Context, stream, group, consumer string) (<-chan StreamMessage, error) {
	if err := c.ensureGroup(ctx, stream, group); err != nil {
		return nil, err
	}

	messages := make(chan StreamMessage, 100)

	go func() {
		defer close(messages)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{stream, ">"},
				Count:    100,
				Block:    2 * time.Second,
			}).Result()
			if err != nil {
				if err == redis.Nil || ctx.Err() != nil {
					continue
				}
				logger.Warn("Stream read failed",
					logger.String("stream", stream),
					logger.ErrorField(err),
				)
				time.Sleep(time.Second)
				continue
			}

			for _, s := range streams {
				for _, msg := range s.Messages {
					values := make(map[string]interface{}, len(msg.Values))
					for k, v := range msg.Values {
						values[k] = v
					}
					select {
					case messages <- StreamMessage{ID: msg.ID, Stream: s.Stream, Values: values}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return messages, nil
}

// Ack acknowledges processed stream messages
func (c *Client) Ack(ctx context.Context, stream, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.rdb.XAck(ctx, stream, group, ids...).Err(); err != nil {
		return fmt.Errorf("failed to ack on stream %s: %w", stream, err)
	}
	return nil
}

// ensureGroup creates the consumer group, tolerating an existing one
func (c *Client) ensureGroup(ctx context.Context, stream, group string) error {
	err := c.rdb.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err == nil {
		logger.Debug("Created consumer group",
			logger.String("stream", stream),
			logger.String("group", group),
		)
		return nil
	}
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return fmt.Errorf("failed to create consumer group %s on %s: %w", group, stream, err)
}
