package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// CacheConfig configures the gateway response cache.
type CacheConfig struct {
	Driver     string        `koanf:"driver"`
	Expiration time.Duration `koanf:"expiration"`
	Redis      RedisConfig   `koanf:"redis"`
}

// String returns a string representation of the cache configuration.
func (c *CacheConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Cache ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  expiration: %s\n", c.Expiration))
	if c.Driver == CacheDriverRedis {
		b.WriteString(c.Redis.String())
	}
	return b.String()
}

func (c *CacheConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = CacheDriverMemory
	}
	if c.Expiration <= 0 {
		c.Expiration = 2 * time.Minute
	}
	switch c.Driver {
	case CacheDriverMemory:
		return nil
	case CacheDriverRedis:
		return c.Redis.Validate()
	default:
		return fmt.Errorf("unsupported cache driver: %q", c.Driver)
	}
}
