// Package events provides the in-process trade event bus (SPEC_FULL
// §2 component 9, §9): a watermill gochannel pub/sub, not backed by
// an external broker, since a single-process core has no distributed
// delivery requirement and the spec's Non-goals exclude market-data
// fan-out.
package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/abdoElHodaky/exchange-core/internal/tradelog"
	"go.uber.org/zap"
)

const tradeTopic = "trade.executed"

// Bus publishes TradeExecuted events and lets subscribers consume
// them without coupling the matching engine to specific consumers.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger *zap.Logger
}

// New builds a bus. watermill logs through its own standard logger;
// logger records the bus's own marshal/publish failures.
func New(logger *zap.Logger) *Bus {
	wmLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 1024,
		Persistent:          false,
	}, wmLogger)
	return &Bus{pubSub: pubSub, logger: logger}
}

// PublishTrade implements tradelog.Publisher.
func (b *Bus) PublishTrade(t tradelog.Trade) {
	payload, err := json.Marshal(t)
	if err != nil {
		b.logger.Warn("failed to marshal trade event", zap.Error(err))
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubSub.Publish(tradeTopic, msg); err != nil {
		b.logger.Warn("failed to publish trade event", zap.Error(err))
	}
}

// Subscribe runs handler for every published trade until ctx is
// cancelled. Used to wire the audit logger.
func (b *Bus) Subscribe(ctx context.Context, handler func(tradelog.Trade)) error {
	messages, err := b.pubSub.Subscribe(ctx, tradeTopic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			var t tradelog.Trade
			if err := json.Unmarshal(msg.Payload, &t); err != nil {
				b.logger.Warn("failed to unmarshal trade event", zap.Error(err))
				msg.Nack()
				continue
			}
			handler(t)
			msg.Ack()
		}
	}()
	return nil
}

// Close releases the underlying gochannel resources.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}
