package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/cloudshop/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// HeaderDataTypeSuffix is appended to an attribute name to carry its data type as a separate header.
const HeaderDataTypeSuffix = "-Type"

type msgPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes events to JetStream; event attributes travel as message headers.
type Publisher struct {
	js msgPublisher
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	msg := nats.NewMsg(event.Subject())
	msg.Data = data
	for name, attr := range event.Attributes() {
		msg.Header.Set(name, attr.Value)
		msg.Header.Set(name+HeaderDataTypeSuffix, attr.DataType)
	}
	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}
