package config

import (
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	httpsig "github.com/offblocks/httpsig-draft"
	"github.com/offblocks/httpsig-draft/internal/log"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the configuration shared by the command line tools and the demo service.
type Config struct {
	Log     LogConfig     `mapstructure:"log" structs:"log"`
	Server  ServerConfig  `mapstructure:"server" structs:"server"`
	Signing SigningConfig `mapstructure:"signing" structs:"signing"`
	Webhook WebhookConfig `mapstructure:"webhook" structs:"webhook"`
}

type LogConfig struct {
	Level log.Level `mapstructure:"level" structs:"level"`
	JSON  bool      `mapstructure:"json" structs:"json"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" structs:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" structs:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" structs:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" structs:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" structs:"max_body_bytes"`
}

type SigningConfig struct {
	KeyID          string `mapstructure:"key_id" structs:"key_id"`
	Algorithm      string `mapstructure:"algorithm" structs:"algorithm"`
	PrivateKeyPath string `mapstructure:"private_key_path" structs:"private_key_path"`
	PublicKeyPath  string `mapstructure:"public_key_path" structs:"public_key_path"`
}

type WebhookConfig struct {
	SharedSecret  string `mapstructure:"shared_secret" structs:"shared_secret"`
	PublicKeyPath string `mapstructure:"public_key_path" structs:"public_key_path"`
}

// Load reads the configuration from config.yaml in paths over the built in defaults.
func Load(paths ...string) (*Config, error) {
	c, err := ParseConfigWithEmbedded[Config](paths, defaultYAML)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that cannot be expressed by the yaml schema.
func (c *Config) Validate() error {
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be greater than zero")
	}
	if c.Signing.Algorithm != "" {
		if _, err := c.Signing.ParsedAlgorithm(); err != nil {
			return errors.Wrap(err, "signing.algorithm")
		}
	}
	if c.Signing.KeyID != "" {
		if _, err := uuid.Parse(c.Signing.KeyID); err != nil {
			return errors.Wrap(err, "signing.key_id must be a UUID")
		}
	}
	return nil
}

func (s SigningConfig) ParsedAlgorithm() (httpsig.Algorithm, error) {
	return httpsig.ParseAlgorithmName(s.Algorithm)
}
