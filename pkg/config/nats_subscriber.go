package config

import (
	"fmt"
	"strings"
	"time"
)

// SubscriberConfig describes the durable JetStream consumer of product-created notifications.
// Each of Workers fetches up to Batch messages, waiting at most Timeout, and backs off
// for Interval after a failed fetch.
type SubscriberConfig struct {
	Stream   string        `koanf:"stream"`
	Subject  string        `koanf:"subject"`
	Consumer string        `koanf:"consumer"`
	Batch    int           `koanf:"batch"`
	Timeout  time.Duration `koanf:"timeout"`
	Interval time.Duration `koanf:"interval"`
	Workers  int           `koanf:"workers"`
}

// String returns a string representation of the subscriber configuration.
func (c *SubscriberConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Subscriber ---\n")
	b.WriteString(fmt.Sprintf("  stream: %s\n", c.Stream))
	b.WriteString(fmt.Sprintf("  subject: %s\n", c.Subject))
	b.WriteString(fmt.Sprintf("  consumer: %s\n", c.Consumer))
	b.WriteString(fmt.Sprintf("  batch: %d, workers: %d\n", c.Batch, c.Workers))
	b.WriteString(fmt.Sprintf("  timeout: %s, interval: %s\n", c.Timeout, c.Interval))
	return b.String()
}

func (c *SubscriberConfig) Validate() error {
	required := map[string]string{"stream": c.Stream, "subject": c.Subject, "consumer": c.Consumer}
	for _, key := range []string{"stream", "subject", "consumer"} {
		if required[key] == "" {
			return fmt.Errorf("subscriber %s is not configured", key)
		}
	}
	positive := []struct {
		key string
		ok  bool
	}{
		{"batch", c.Batch > 0},
		{"timeout", c.Timeout > 0},
		{"interval", c.Interval > 0},
		{"workers", c.Workers > 0},
	}
	for _, p := range positive {
		if !p.ok {
			return fmt.Errorf("subscriber %s must be greater than zero", p.key)
		}
	}
	return nil
}
