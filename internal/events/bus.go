package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/scan2share/scan2share/internal/rewards"
)

const topicPrefix = "scan2share."

// Bus fans store activity out to in-process subscribers.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 100,
			Persistent:          false,
		},
		newZapAdapter(logger),
	)

	return &Bus{pubSub: pubSub, logger: logger}
}

func topic(kind string) string {
	return topicPrefix + kind
}

// Publish sends a to the topic of its kind.
func (b *Bus) Publish(ctx context.Context, a rewards.Activity) error {
	if a.Kind == "" {
		return errors.New("activity kind must not be empty")
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "marshal activity")
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("kind", a.Kind)
	msg.Metadata.Set("at", a.At.Format(time.RFC3339Nano))
	msg.SetContext(ctx)

	return errors.Wrapf(b.pubSub.Publish(topic(a.Kind), msg), "publish %s", a.Kind)
}

// Notify publishes a and logs failures. It satisfies rewards.Notifier.
func (b *Bus) Notify(ctx context.Context, a rewards.Activity) {
	if err := b.Publish(ctx, a); err != nil {
		b.logger.Warn("publish activity", zap.String("kind", a.Kind), zap.Error(err))
	}
}

// Subscribe streams activities of the given kind until ctx is cancelled.
// Messages that fail to decode are dropped.
func (b *Bus) Subscribe(ctx context.Context, kind string) (<-chan rewards.Activity, error) {
	msgs, err := b.pubSub.Subscribe(ctx, topic(kind))
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe %s", kind)
	}

	out := make(chan rewards.Activity)
	go func() {
		defer close(out)

		for msg := range msgs {
			var a rewards.Activity
			if err := json.Unmarshal(msg.Payload, &a); err != nil {
				b.logger.Warn("drop undecodable activity", zap.String("uuid", msg.UUID), zap.Error(err))
				msg.Ack()
				continue
			}

			select {
			case out <- a:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()

	return out, nil
}

// LogActivity logs every activity of the given kinds until ctx is done.
func (b *Bus) LogActivity(ctx context.Context, kinds ...string) error {
	for _, kind := range kinds {
		ch, err := b.Subscribe(ctx, kind)
		if err != nil {
			return err
		}
		go func() {
			for a := range ch {
				b.logger.Info("activity",
					zap.String("kind", a.Kind),
					zap.String("subject", a.Subject),
					zap.Stringer("amount", a.Amount),
					zap.Time("at", a.At),
				)
			}
		}()
	}
	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

var _ rewards.Notifier = (*Bus)(nil)
