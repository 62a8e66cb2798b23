package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Credentials string           `koanf:"credentials"`
	Log         config.LogConfig `koanf:"log"`
}

// String never prints the credentials themselves.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- Authorizer ---\n")
	b.WriteString(fmt.Sprintf("  credentials: %d entries\n", strings.Count(c.Credentials, "=")))
	b.WriteString(c.Log.String())
	return b.String()
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Credentials) == "" {
		return fmt.Errorf("credentials are not configured")
	}
	return c.Log.Validate()
}
