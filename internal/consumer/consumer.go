package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"pos-service/internal/entity"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// Consumer listens for sale events and drops the cached dashboard figures
// so the next read reflects the new sale.
type Consumer struct {
	reader    MessageReader
	dashboard CacheInvalidator
}

func NewConsumer(reader MessageReader, dashboard CacheInvalidator) *Consumer {
	return &Consumer{reader: reader, dashboard: dashboard}
}

// Start reads messages until ctx is cancelled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) {
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing kafka reader")
		}
	}()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info().Msg("Sale event consumer stopped")
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			continue
		}

		c.processMessage(ctx, msg)
	}
}

// processMessage handles one message. Keys look like "sale.created.<saleID>".
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	listKey := strings.Split(string(msg.Key), ".")
	if len(listKey) != 3 || listKey[0] != "sale" {
		log.Warn().Msgf("Ignoring message with unexpected key %q", msg.Key)
		return
	}

	switch eventType := listKey[1]; eventType {
	case "created":
		var event entity.SaleCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error().Msgf("Error unmarshalling message: %v", err)
			return
		}

		if err := c.dashboard.InvalidateCache(ctx); err != nil {
			log.Error().Err(err).Int64("sale_id", event.SaleID).Msg("Error invalidating dashboard cache")
			return
		}
		log.Debug().Str("event_id", event.EventID).Int64("sale_id", event.SaleID).Msg("Dashboard cache invalidated")
	default:
		log.Error().Msgf("Unknown sale event type: %s", eventType)
	}
}
