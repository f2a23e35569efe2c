package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mohamedkhairy/ta-engine/internal/models"
	"github.com/mohamedkhairy/ta-engine/internal/pubsub"
	"github.com/mohamedkhairy/ta-engine/internal/telemetry"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
)

// BarProcessor receives decoded bars from the consumer
type BarProcessor interface {
	ProcessBar(bar models.Bar) error
}

// ConsumerConfig holds bar consumer configuration
type ConsumerConfig struct {
	Stream        string
	ConsumerGroup string
	ConsumerName  string
	BarField      string // Stream field holding the JSON-encoded bar (default "bar")
}

// BarConsumer consumes finalized bars from a Redis stream consumer group and
// feeds them to a processor
type BarConsumer struct {
	redis     *pubsub.Client
	config    ConsumerConfig
	processor BarProcessor
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	running   bool

	stats ConsumerStats
}

// ConsumerStats holds counters for the consumer
type ConsumerStats struct {
	mu            sync.RWMutex
	BarsProcessed int64
	BarsFailed    int64
	LastBarTime   time.Time
}

// NewBarConsumer creates a new bar consumer
func NewBarConsumer(redis *pubsub.Client, config ConsumerConfig) *BarConsumer {
	if config.BarField == "" {
		config.BarField = "bar"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BarConsumer{
		redis:  redis,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetProcessor sets the bar processor
func (c *BarConsumer) SetProcessor(processor BarProcessor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processor = processor
}

// Start begins consuming from the stream
func (c *BarConsumer) Start() error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer is already running")
	}
	if c.processor == nil {
		c.mu.Unlock()
		return fmt.Errorf("no processor set")
	}
	c.running = true
	c.mu.Unlock()

	messages, err := c.redis.ConsumeFromStream(c.ctx, c.config.Stream, c.config.ConsumerGroup, c.config.ConsumerName)
	if err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	logger.Info("Starting bar consumer",
		logger.String("stream", c.config.Stream),
		logger.String("consumer_group", c.config.ConsumerGroup),
		logger.String("consumer", c.config.ConsumerName),
	)

	c.wg.Add(1)
	go c.consume(messages)
	return nil
}

// Stop stops the consumer and waits for in-flight work
func (c *BarConsumer) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	logger.Info("Stopping bar consumer")
	c.cancel()
	c.wg.Wait()
	logger.Info("Bar consumer stopped")
}

// IsRunning reports whether the consumer is active
func (c *BarConsumer) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Stats returns a copy of the consumer counters
func (c *BarConsumer) Stats() (processed, failed int64, lastBar time.Time) {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return c.stats.BarsProcessed, c.stats.BarsFailed, c.stats.LastBarTime
}

func (c *BarConsumer) consume(messages <-chan pubsub.StreamMessage) {
	defer c.wg.Done()

	for msg := range messages {
		bar, err := c.decodeBar(msg)
		if err != nil {
			telemetry.ConsumerErrors.WithLabelValues("decode").Inc()
			logger.Warn("Failed to decode bar",
				logger.String("message_id", msg.ID),
				logger.ErrorField(err),
			)
			// Ack malformed messages so they don't poison the group
			c.ack(msg)
			continue
		}

		if err := c.processor.ProcessBar(bar); err != nil {
			telemetry.ConsumerErrors.WithLabelValues("process").Inc()
			c.stats.mu.Lock()
			c.stats.BarsFailed++
			c.stats.mu.Unlock()
			logger.Warn("Failed to process bar",
				logger.String("symbol", bar.Symbol),
				logger.Time("bar_time", bar.Timestamp),
				logger.ErrorField(err),
			)
			c.ack(msg)
			continue
		}

		c.stats.mu.Lock()
		c.stats.BarsProcessed++
		c.stats.LastBarTime = bar.Timestamp
		c.stats.mu.Unlock()
		c.ack(msg)
	}
}

func (c *BarConsumer) decodeBar(msg pubsub.StreamMessage) (models.Bar, error) {
	raw, ok := msg.Values[c.config.BarField]
	if !ok {
		return models.Bar{}, fmt.Errorf("message %s has no %q field", msg.ID, c.config.BarField)
	}
	text, ok := raw.(string)
	if !ok {
		return models.Bar{}, fmt.Errorf("message %s field %q is not a string", msg.ID, c.config.BarField)
	}

	var bar models.Bar
	if err := json.Unmarshal([]byte(text), &bar); err != nil {
		return models.Bar{}, fmt.Errorf("failed to unmarshal bar: %w", err)
	}
	return bar, nil
}

func (c *BarConsumer) ack(msg pubsub.StreamMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.redis.Ack(ctx, c.config.Stream, c.config.ConsumerGroup, msg.ID); err != nil {
		telemetry.ConsumerErrors.WithLabelValues("ack").Inc()
		logger.Warn("Failed to ack message",
			logger.String("message_id", msg.ID),
			logger.ErrorField(err),
		)
	}
}
