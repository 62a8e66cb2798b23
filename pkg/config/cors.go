package config

import (
	"fmt"
	"strings"
)

// CORSConfig lists the browser origins allowed to read responses. An empty list echoes any origin.
type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// String returns a string representation of the CORS configuration.
func (c *CORSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- CORS ---\n")
	b.WriteString(fmt.Sprintf("  origins: %s\n", strings.Join(c.Origins, ",")))
	return b.String()
}

// Validate accepts a single comma separated value, which is how the list arrives from the environment.
func (c *CORSConfig) Validate() error {
	if len(c.Origins) == 1 && strings.Contains(c.Origins[0], ",") {
		c.Origins = strings.Split(c.Origins[0], ",")
	}
	for i := range c.Origins {
		c.Origins[i] = strings.TrimSpace(c.Origins[i])
	}
	return nil
}
