package config

import (
	"fmt"
	"strings"
	"time"
)

// NATSConfig is the broker connection shared by the nats notifier driver and the notification service.
type NATSConfig struct {
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the NATS configuration.
func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.Url))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

// Validate requires a URL; the dial timeout defaults to 5s.
func (c *NATSConfig) Validate() error {
	if c.Url == "" {
		return fmt.Errorf("nats url is not configured")
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return nil
}
