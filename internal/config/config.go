package config

import (
	"bytes"
	"strings"

	"github.com/fatih/structs"
	"github.com/jeremywohl/flatten"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override, e.g.
// HTTPSIG_SERVER_PORT.
const EnvPrefix = "HTTPSIG"

// ParseConfig loads config.yaml from the first of configFilePaths that has one.
func ParseConfig[T interface{}](configFilePaths []string) (*T, error) {
	return ParseConfigWithEmbedded[T](configFilePaths, nil)
}

// ParseConfigWithEmbedded reads embeddedYAML as defaults (if provided), merges config.yaml
// from configFilePaths over it, then applies environment overrides.
func ParseConfigWithEmbedded[T interface{}](configFilePaths []string, embeddedYAML []byte) (*T, error) {
	v := viper.New()
	for _, p := range configFilePaths {
		v.AddConfigPath(p)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindAllConfigKeys[T](v); err != nil {
		return nil, err
	}

	if len(embeddedYAML) > 0 {
		if err := v.ReadConfig(bytes.NewReader(embeddedYAML)); err != nil {
			return nil, errors.Wrap(err, "failed to load embedded default config")
		}
	}

	if len(configFilePaths) > 0 {
		if err := v.MergeInConfig(); err != nil {
			var nfErr viper.ConfigFileNotFoundError
			if !errors.As(err, &nfErr) || len(embeddedYAML) == 0 {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	var c *T
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "Unable to decode into struct")
	}

	return c, nil
}

// Workaround for viper ignoring env variables of keys it has not seen,
// https://github.com/spf13/viper/issues/761
func bindAllConfigKeys[T interface{}](v *viper.Viper) error {
	var cd T
	confMap := structs.Map(cd)

	flat, err := flatten.Flatten(confMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "Unable to flatten config")
	}

	for key := range flat {
		if err := v.BindEnv(key); err != nil {
			return errors.Wrapf(err, "Unable to bind env var: %s", key)
		}
	}
	return nil
}
