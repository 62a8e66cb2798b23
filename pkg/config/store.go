package config

import (
	"fmt"
	"strings"
)

const (
	StoreDriverDynamoDB = "dynamodb"
	StoreDriverPostgres = "postgres"
)

// StoreConfig selects the catalog storage backend.
// Products and Stocks are table names for the dynamodb driver; the postgres driver uses Database.
type StoreConfig struct {
	Driver   string         `koanf:"driver"`
	Products string         `koanf:"products"`
	Stocks   string         `koanf:"stocks"`
	Database DatabaseConfig `koanf:"database"`
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	switch c.Driver {
	case StoreDriverPostgres:
		b.WriteString(fmt.Sprintf("  database.url: %s\n", MaskURL(c.Database.URL)))
		b.WriteString(fmt.Sprintf("  database.timeout: %s\n", c.Database.Timeout))
	default:
		b.WriteString(fmt.Sprintf("  products: %s\n", c.Products))
		b.WriteString(fmt.Sprintf("  stocks: %s\n", c.Stocks))
	}
	return b.String()
}

// Validate fills in the default driver and table names and checks the driver-specific settings.
func (c *StoreConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = StoreDriverDynamoDB
	}
	switch c.Driver {
	case StoreDriverDynamoDB:
		if c.Products == "" {
			c.Products = "ProductsTable"
		}
		if c.Stocks == "" {
			c.Stocks = "StocksTable"
		}
		return nil
	case StoreDriverPostgres:
		return c.Database.Validate()
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Driver)
	}
}
