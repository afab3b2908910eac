package resttree

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config describes a client declaratively, suitable for loading from a
// yaml file or environment. Zero values fall back to the package
// defaults.
type Config struct {
	// BaseURL is the root address of the remote service.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Credentials: Token wins over Username/Password when both are set.
	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	Token    string `json:"token,omitempty"    yaml:"token,omitempty"    mapstructure:"token"`

	// Headers and Params are applied to every request.
	Headers Headers `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`
	Params  Params  `json:"params,omitempty"  yaml:"params,omitempty"  mapstructure:"params"`

	// Retry and timeout policy for the transport adapter.
	RetryMax            int           `json:"retry_max,omitempty"             yaml:"retry_max,omitempty"             mapstructure:"retry_max"`
	BackoffFactor       time.Duration `json:"backoff_factor,omitempty"        yaml:"backoff_factor,omitempty"        mapstructure:"backoff_factor"`
	Timeout             time.Duration `json:"timeout,omitempty"               yaml:"timeout,omitempty"               mapstructure:"timeout"`
	IdempotentRetryOnly bool          `json:"idempotent_retry_only,omitempty" yaml:"idempotent_retry_only,omitempty" mapstructure:"idempotent_retry_only"`

	// Cache selects and configures a response cache backend.
	Cache *CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty" mapstructure:"cache"`
}

// LoadConfig reads a Config from the given file, with environment
// variables prefixed RESTTREE_ overriding file values.
func LoadConfig(path string) (*Config, error) {
	loader := viper.New()
	loader.SetConfigFile(path)
	loader.SetEnvPrefix("RESTTREE")
	loader.AutomaticEnv()

	err := loader.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config

	err = loader.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &config, nil
}

// Save writes the config to the given path as yaml.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// NewFromConfig builds a client from a Config. Additional options are
// applied after the config-derived ones and win on conflict.
func NewFromConfig(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	options := make([]ClientOption, 0, 8)

	switch {
	case config.Token != "":
		options = append(options, WithAuth(TokenAuth{Token: config.Token}))
	case config.Username != "":
		options = append(options, WithAuth(BasicAuth{Username: config.Username, Password: config.Password}))
	}

	if len(config.Headers) > 0 {
		options = append(options, WithDefaultHeaders(config.Headers))
	}

	if len(config.Params) > 0 {
		options = append(options, WithDefaultParams(config.Params))
	}

	if config.RetryMax > 0 {
		options = append(options, WithRetryMax(config.RetryMax))
	}

	if config.BackoffFactor > 0 {
		options = append(options, WithBackoffFactor(config.BackoffFactor))
	}

	if config.Timeout > 0 {
		options = append(options, WithTimeout(config.Timeout))
	}

	if config.IdempotentRetryOnly {
		options = append(options, WithIdempotentRetryOnly())
	}

	if config.Cache != nil {
		cache, err := NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("building cache from config: %w", err)
		}

		options = append(options, WithCache(cache))
	}

	return New(config.BaseURL, append(options, opts...)...)
}
