package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/cloudshop/pkg/config"
	"github.com/abgdnv/cloudshop/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// Config is shared by the upload-URL issuer and the file parser.
type Config struct {
	Bucket struct {
		Name   string `koanf:"name"`
		Region string `koanf:"region"`
	} `koanf:"bucket"`
	Upload struct {
		Prefix     string        `koanf:"prefix"`
		Expiration time.Duration `koanf:"expiration"`
	} `koanf:"upload"`
	Parsed struct {
		Prefix string `koanf:"prefix"`
	} `koanf:"parsed"`
	Queue struct {
		URL     string `koanf:"url"`
		GroupID string `koanf:"groupid"`
	} `koanf:"queue"`
	Parser struct {
		Workers     int `koanf:"workers"`
		SendWorkers int `koanf:"sendworkers"`
	} `koanf:"parser"`
	AWS  config.AWSConfig  `koanf:"aws"`
	CORS config.CORSConfig `koanf:"cors"`
	Log  config.LogConfig  `koanf:"log"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- Import ---\n")
	b.WriteString(fmt.Sprintf("  bucket.name: %s\n", c.Bucket.Name))
	b.WriteString(fmt.Sprintf("  bucket.region: %s\n", c.Bucket.Region))
	b.WriteString(fmt.Sprintf("  upload.prefix: %s\n", c.Upload.Prefix))
	b.WriteString(fmt.Sprintf("  upload.expiration: %s\n", c.Upload.Expiration))
	b.WriteString(fmt.Sprintf("  parsed.prefix: %s\n", c.Parsed.Prefix))
	b.WriteString(fmt.Sprintf("  queue.url: %s\n", c.Queue.URL))
	b.WriteString(fmt.Sprintf("  queue.groupid: %s\n", c.Queue.GroupID))
	b.WriteString(fmt.Sprintf("  parser.workers: %d\n", c.Parser.Workers))
	b.WriteString(fmt.Sprintf("  parser.sendworkers: %d\n", c.Parser.SendWorkers))
	b.WriteString(c.AWS.String())
	b.WriteString(c.CORS.String())
	b.WriteString(c.Log.String())
	return b.String()
}

// Validate fills in defaults. A missing bucket name is not fatal here: the upload
// handler reports it per request as a configuration error.
func (c *Config) Validate() error {
	if c.Bucket.Region == "" {
		c.Bucket.Region = "eu-west-3"
	}
	if c.AWS.Region == "" {
		c.AWS.Region = c.Bucket.Region
	}
	if c.Upload.Prefix == "" {
		c.Upload.Prefix = "uploaded/"
	}
	if c.Parsed.Prefix == "" {
		c.Parsed.Prefix = "parsed/"
	}
	if !strings.HasSuffix(c.Upload.Prefix, "/") || !strings.HasSuffix(c.Parsed.Prefix, "/") {
		return fmt.Errorf("upload and parsed prefixes must end with '/'")
	}
	if c.Upload.Prefix == c.Parsed.Prefix {
		return fmt.Errorf("upload and parsed prefixes must differ")
	}
	if c.Upload.Expiration <= 0 {
		c.Upload.Expiration = time.Hour
	}
	if c.Queue.GroupID == "" {
		c.Queue.GroupID = "product-import-group"
	}
	if c.Parser.Workers <= 0 {
		c.Parser.Workers = 4
	}
	if c.Parser.SendWorkers <= 0 {
		c.Parser.SendWorkers = 16
	}
	if err := c.AWS.Validate(); err != nil {
		return err
	}
	if err := c.CORS.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
