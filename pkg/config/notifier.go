package config

import (
	"fmt"
	"strings"
)

const (
	NotifierDriverSNS  = "sns"
	NotifierDriverNATS = "nats"

	// DefaultProductsStream is the JetStream stream product-created notifications are stored in.
	DefaultProductsStream = "PRODUCTS"
)

// NotifierConfig selects where product-created notifications are published.
// Topic is the SNS topic ARN for the sns driver and the JetStream stream name for the nats driver.
type NotifierConfig struct {
	Driver  string `koanf:"driver"`
	Topic   string `koanf:"topic"`
	Subject string `koanf:"subject"`
}

// String returns a string representation of the notifier configuration.
func (c *NotifierConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Notifier ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  topic: %s\n", c.Topic))
	b.WriteString(fmt.Sprintf("  subject: %s\n", c.Subject))
	return b.String()
}

func (c *NotifierConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = NotifierDriverSNS
	}
	switch c.Driver {
	case NotifierDriverSNS:
		if c.Topic == "" {
			return fmt.Errorf("notifier topic ARN is not configured")
		}
		if c.Subject == "" {
			c.Subject = "New Product Created"
		}
	case NotifierDriverNATS:
		if c.Topic == "" {
			c.Topic = DefaultProductsStream
		}
	default:
		return fmt.Errorf("unsupported notifier driver: %q", c.Driver)
	}
	return nil
}
