package config

import (
	"fmt"
	"strings"
)

// AWSConfig selects the region and, for local stacks, an endpoint override shared by all SDK clients.
type AWSConfig struct {
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
}

// String returns a string representation of the AWS configuration.
func (c *AWSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- AWS ---\n")
	b.WriteString(fmt.Sprintf("  region: %s\n", c.Region))
	b.WriteString(fmt.Sprintf("  endpoint: %s\n", orDefault(c.Endpoint)))
	return b.String()
}

func (c *AWSConfig) Validate() error {
	if c.Endpoint != "" && !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("aws endpoint must be an http(s) URL: %s", c.Endpoint)
	}
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "<default>"
	}
	return s
}
