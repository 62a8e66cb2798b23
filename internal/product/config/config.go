package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/config/configloader"
)

var (
	_ configloader.Validator = (*Config)(nil)
	_ configloader.Validator = (*BatchConfig)(nil)
)

// Config is the product HTTP service configuration.
type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Store      config.StoreConfig     `koanf:"store"`
	AWS        config.AWSConfig       `koanf:"aws"`
	CORS       config.CORSConfig      `koanf:"cors"`
	Auth       AuthConfig             `koanf:"auth"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
}

// AuthConfig guards POST /products with Basic credentials when set.
type AuthConfig struct {
	Credentials string `koanf:"credentials"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())
	b.WriteString(fmt.Sprintf("  auth.enabled: %t\n", c.Auth.Credentials != ""))

	b.WriteString(c.Store.String())
	b.WriteString(c.AWS.String())
	b.WriteString(c.CORS.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Telemetry.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer, &c.Store, &c.AWS, &c.CORS, &c.Log, &c.PProf, &c.Shutdown, &c.Telemetry,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if c.Telemetry.Metrics.Enabled && !c.PProf.Enabled {
		return fmt.Errorf("metrics are served on the pprof listener, enable pprof as well")
	}
	return nil
}

// BatchConfig is the catalog batch writer configuration.
type BatchConfig struct {
	Store    config.StoreConfig    `koanf:"store"`
	AWS      config.AWSConfig      `koanf:"aws"`
	Notifier config.NotifierConfig `koanf:"notifier"`
	Nats     config.NATSConfig     `koanf:"nats"`
	Batch    struct {
		Workers int `koanf:"workers"`
	} `koanf:"batch"`
	Log config.LogConfig `koanf:"log"`
}

func (c *BatchConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Batch Writer ---\n")
	b.WriteString(fmt.Sprintf("  batch.workers: %d\n", c.Batch.Workers))
	b.WriteString(c.Store.String())
	b.WriteString(c.AWS.String())
	b.WriteString(c.Notifier.String())
	if c.Notifier.Driver == config.NotifierDriverNATS {
		b.WriteString(c.Nats.String())
	}
	b.WriteString(c.Log.String())
	return b.String()
}

func (c *BatchConfig) Validate() error {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = 10
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.AWS.Validate(); err != nil {
		return err
	}
	if err := c.Notifier.Validate(); err != nil {
		return err
	}
	if c.Notifier.Driver == config.NotifierDriverNATS {
		if err := c.Nats.Validate(); err != nil {
			return err
		}
	}
	return c.Log.Validate()
}
