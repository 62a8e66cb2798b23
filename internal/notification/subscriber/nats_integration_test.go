package subscriber

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/messaging/events"
	pnats "github.com/abgdnv/cloudshop/pkg/nats"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"golang.org/x/sync/errgroup"
)

const skipIntegrationTests = "NOTIFICATION_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

type SubscriberSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *nats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *SubscriberSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = nats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = pnats.NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")

	s.js, err = pnats.NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")
}

func (s *SubscriberSuite) TearDownSuite() {
	s.nc.Close()
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestSubscriberIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(SubscriberSuite))
}

type testCaseConfig struct {
	name      string
	publish   func(ctx context.Context, subject string) error
	condition func(info *jetstream.ConsumerInfo) bool
}

func (s *SubscriberSuite) TestReceiveMessage() {
	// given
	testCases := []testCaseConfig{
		{
			name: "product created event is acknowledged",
			publish: func(ctx context.Context, _ string) error {
				event := events.ProductCreatedEvent{Product: events.CreatedProduct{
					ID: uuid.NewString(), Title: "Mug", Description: "Coffee mug", Price: 12.5, Count: 30,
				}}
				return pnats.NewPublisher(s.js).Publish(ctx, event)
			},
			condition: func(info *jetstream.ConsumerInfo) bool {
				return info.NumAckPending == 0 && info.NumPending == 0 && info.AckFloor.Stream == 1
			},
		},
		{
			name: "invalid payload does not stop the worker",
			publish: func(ctx context.Context, subject string) error {
				if _, err := s.js.Publish(ctx, subject, []byte("invalid payload")); err != nil {
					return err
				}
				event := events.ProductCreatedEvent{Product: events.CreatedProduct{
					ID: uuid.NewString(), Title: "Cup", Description: "Tea cup", Price: 4, Count: 0,
				}}
				return pnats.NewPublisher(s.js).Publish(ctx, event)
			},
			condition: func(info *jetstream.ConsumerInfo) bool {
				return info.NumPending == 0 && info.Delivered.Stream >= 2
			},
		},
	}
	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			s.runTest(t, tc)
		})
	}
}

func (s *SubscriberSuite) runTest(t *testing.T, tc testCaseConfig) {
	testCtx, testCancel := context.WithTimeout(s.ctx, 8*time.Second)
	g, gCtx := errgroup.WithContext(testCtx)

	// every case gets its own stream so ack floors start at zero
	streamName := "PRODUCTS_" + uuid.NewString()[:8]
	consumerName := "notifier_" + uuid.NewString()[:8]
	subject := "products.created"
	require.NoError(t, pnats.EnsureStream(s.ctx, s.js, streamName, subject))
	t.Cleanup(func() {
		testCancel()
		require.ErrorIs(t, g.Wait(), context.Canceled)
		_ = s.js.DeleteStream(s.ctx, streamName)
	})

	cfg := config.SubscriberConfig{
		Stream:   streamName,
		Subject:  subject,
		Consumer: consumerName,
		Batch:    1,
		Timeout:  200 * time.Millisecond,
		Interval: 200 * time.Microsecond,
		Workers:  1,
	}
	g.Go(func() error {
		return Start(gCtx, s.js, cfg, s.logger)
	})

	// wait for the consumer so nothing is published before it exists
	require.Eventually(t, func() bool {
		_, err := s.js.Consumer(s.ctx, streamName, consumerName)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	// when
	require.NoError(t, tc.publish(s.ctx, subject))

	// then
	require.Eventually(t, func() bool {
		consumer, err := s.js.Consumer(s.ctx, streamName, consumerName)
		if err != nil {
			return false
		}
		info, err := consumer.Info(s.ctx)
		if err != nil {
			return false
		}
		return tc.condition(info)
	}, 5*time.Second, 100*time.Millisecond, "messages were not consumed in time")
}
