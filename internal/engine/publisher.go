package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamedkhairy/ta-engine/internal/pubsub"
	"github.com/mohamedkhairy/ta-engine/internal/telemetry"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
)

// Publisher writes indicator snapshots to Redis and notifies subscribers
// on a pub/sub channel
type Publisher struct {
	redis  *pubsub.Client
	config PublisherConfig
}

// PublisherConfig holds publisher configuration
type PublisherConfig struct {
	SnapshotPrefix string        // Prefix for snapshot keys (default "ind:")
	SnapshotTTL    time.Duration // TTL for snapshot keys
	UpdateChannel  string        // Pub/sub channel for update notifications
}

// DefaultPublisherConfig returns default configuration
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		SnapshotPrefix: "ind:",
		SnapshotTTL:    10 * time.Minute,
		UpdateChannel:  "indicators.updated",
	}
}

// NewPublisher creates a new snapshot publisher
func NewPublisher(redis *pubsub.Client, config PublisherConfig) *Publisher {
	return &Publisher{redis: redis, config: config}
}

// PublishSnapshot writes the snapshot under its symbol key and announces the
// update. A failed announcement is logged but does not fail the publish.
func (p *Publisher) PublishSnapshot(ctx context.Context, symbol string, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}

	key := p.config.SnapshotPrefix + symbol
	snapshot := map[string]interface{}{
		"symbol":    symbol,
		"timestamp": time.Now().UTC(),
		"values":    values,
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.redis.SetJSON(ctx, key, snapshot, p.config.SnapshotTTL); err != nil {
		telemetry.PublishErrors.Inc()
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}

	update := map[string]interface{}{
		"symbol":    symbol,
		"timestamp": time.Now().UTC(),
	}
	if err := p.redis.Publish(ctx, p.config.UpdateChannel, update); err != nil {
		logger.Warn("Failed to announce snapshot update",
			logger.String("symbol", symbol),
			logger.String("channel", p.config.UpdateChannel),
			logger.ErrorField(err),
		)
	}

	telemetry.SnapshotsPublished.Inc()
	logger.Debug("Published snapshot",
		logger.String("symbol", symbol),
		logger.Int("value_count", len(values)),
	)
	return nil
}
