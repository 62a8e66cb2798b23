// Package subscriber consumes product-created notifications from JetStream.
package subscriber

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

type ackableMsg interface {
	Data() []byte
	Subject() string
	Headers() nats.Header
	Ack() error
	Nak() error
}

// Start creates the durable consumer and runs the configured number of fetch workers until ctx is done.
func Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig, logger *slog.Logger) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubject: subscriberCfg.Subject,
		Durable:       subscriberCfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return err
	}
	logger = logger.With("component", "subscriber", "stream", subscriberCfg.Stream, "consumer", subscriberCfg.Consumer)
	g, gCtx := errgroup.WithContext(ctx)
	for range subscriberCfg.Workers {
		g.Go(func() error {
			return runWorker(gCtx, consumer, subscriberCfg, logger)
		})
	}
	return g.Wait()
}

func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.ErrorContext(ctx, "Failed to fetch messages", "error", err)
				time.Sleep(cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				handleMessage(ctx, msg, logger)
			}
			if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
				logger.WarnContext(ctx, "Fetch ended with error", "error", err)
			}
		}
	}
}

// handleMessage logs the announced product. Undecodable messages are negatively acknowledged.
func handleMessage(ctx context.Context, msg ackableMsg, logger *slog.Logger) {
	if msg == nil {
		logger.ErrorContext(ctx, "Received nil message")
		return
	}
	product, err := events.DecodeProductCreated(msg.Data())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to decode product created event", "subject", msg.Subject(), "error", err)
		if err := msg.Nak(); err != nil {
			logger.ErrorContext(ctx, "Failed to nak message", "error", err)
		}
		return
	}

	headers := msg.Headers()
	logger.InfoContext(ctx, "Product created",
		slog.String("subject", msg.Subject()),
		slog.String("product_id", product.ID),
		slog.String("title", product.Title),
		slog.String("priority", headers.Get("priority")),
		slog.String("inStock", headers.Get("inStock")))

	if err := msg.Ack(); err != nil {
		logger.ErrorContext(ctx, "Failed to ack message", "error", err)
	}
}
