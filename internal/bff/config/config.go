package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Services   map[string]string      `koanf:"services"`
	Cache      config.CacheConfig     `koanf:"cache"`
	CORS       config.CORSConfig      `koanf:"cors"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())

	b.WriteString("\n--- Services Configuration ---\n")
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		b.WriteString(fmt.Sprintf("  %s: %s\n", name, c.Services[name]))
	}

	b.WriteString(c.Cache.String())
	b.WriteString(c.CORS.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("at least one service must be configured")
	}
	for name, raw := range c.Services {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("service %q has an invalid url %q", name, raw)
		}
	}
	validators := []configloader.Validator{
		&c.HTTPServer, &c.Cache, &c.CORS, &c.Log, &c.PProf, &c.Telemetry, &c.Shutdown,
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
