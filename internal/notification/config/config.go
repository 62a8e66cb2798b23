package config

import (
	"strings"

	"github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/config/configloader"
	"github.com/abgdnv/cloudshop/pkg/messaging"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Subscriber config.SubscriberConfig `koanf:"subscriber"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Nats.String())
	b.WriteString(c.Subscriber.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate defaults the subscription to the product-created stream and checks the rest.
func (c *Config) Validate() error {
	if c.Subscriber.Stream == "" {
		c.Subscriber.Stream = config.DefaultProductsStream
	}
	if c.Subscriber.Subject == "" {
		c.Subscriber.Subject = messaging.ProductsCreatedSubject
	}
	validators := []configloader.Validator{&c.Log, &c.PProf, &c.Nats, &c.Subscriber, &c.Shutdown}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
