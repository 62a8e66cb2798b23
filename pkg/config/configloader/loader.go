package configloader

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrConfiguration is returned when the loaded configuration is missing a required setting.
var ErrConfiguration = errors.New("invalid configuration")

type Validator interface {
	Validate() error
}

// Options overrides where configuration is read from. Zero values mean the defaults.
type Options struct {
	File    string
	EnvFile string
}

// Load reads the configuration of the named unit and validates it.
// Sources in increasing priority: config.yaml, .env, process environment.
// Environment keys use the upper-cased unit name as prefix, e.g. IMPORT_BUCKET_NAME -> bucket.name.
func Load[T any, PT interface {
	*T
	Validator
}](serviceName string) (*T, error) {
	return LoadWith[T, PT](serviceName, Options{})
}

// LoadWith is Load with explicit source locations.
func LoadWith[T any, PT interface {
	*T
	Validator
}](serviceName string, opts Options) (*T, error) {
	cfg := new(T)
	k := koanf.New(".")

	configFile := opts.File
	if configFile == "" {
		configFile = "config.yaml"
	}
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(serviceName))

	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	transform := keyTransformer(envPrefix)
	if envFileMap, err := godotenv.Read(envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[transform(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading %s config: %v", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: error reading %s file: %v", envFile, err)
	}

	// process environment wins
	if err := k.Load(env.Provider(envPrefix, ".", transform), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := PT(cfg).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// keyTransformer maps PREFIX_SECTION_KEY to section.key.
// Keys are lower-cased, so camelCase koanf tags are reached through the yaml file only.
func keyTransformer(prefix string) func(string) string {
	lower := strings.ToLower(prefix)
	return func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, lower)
		return strings.ReplaceAll(key, "_", ".")
	}
}
