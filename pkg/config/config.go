// Package config holds the configuration of the snailcrypt command line client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope/keyfetch"
	"github.com/snailcrypt/snailcrypt-go/pkg/shareurl"
)

// ClientVersionAuto lets the client pick the envelope version per message.
const ClientVersionAuto = "auto"

// Config wraps the options of the snailcrypt client.
type Config struct {
	// APIURL is the base URL of the key-release service.
	APIURL string `yaml:"api_url"`
	// ShareURL is the web app page share links point to.
	ShareURL string `yaml:"share_url"`
	// Timeout bounds every request to the key-release service.
	Timeout time.Duration `yaml:"timeout"`
	// KeyCacheTTL is how long public keys are reused. Zero disables caching.
	KeyCacheTTL time.Duration `yaml:"key_cache_ttl"`
	// ClientVersion is "auto" or the envelope version used to encrypt.
	ClientVersion string `yaml:"client_version"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		APIURL:        keyfetch.DefaultBaseURL,
		ShareURL:      shareurl.DefaultBaseURL,
		Timeout:       30 * time.Second,
		KeyCacheTTL:   keyfetch.DefaultPublicKeyCacheTTL,
		ClientVersion: ClientVersionAuto,
	}
}

// Dump generates a YAML string of the Config object
func (c *Config) Dump() (string, error) {
	d, err := yaml.Marshal(&c)

	if err != nil {
		return "", errors.Wrap(err, "failed to generate YAML dump of config")
	}

	return string(d), nil
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validateURL(c.APIURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("api_url: %w", err))
	}

	if err := validateURL(c.ShareURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("share_url: %w", err))
	}

	if c.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}

	if c.KeyCacheTTL < 0 {
		result = multierror.Append(result, fmt.Errorf("key_cache_ttl cannot be negative, got %s", c.KeyCacheTTL))
	}

	if _, err := c.EnvelopeVersion(); err != nil {
		result = multierror.Append(result, fmt.Errorf("client_version: %w", err))
	}

	return result.ErrorOrNil()
}

// EnvelopeVersion returns the configured envelope version, or 0 for "auto".
func (c *Config) EnvelopeVersion() (envelope.Version, error) {
	if c.ClientVersion == "" || c.ClientVersion == ClientVersionAuto {
		return 0, nil
	}
	return envelope.ParseVersion(c.ClientVersion)
}

// ParseConfig reads a YAML configuration. Fields missing from data keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	config := Default()

	err := yaml.UnmarshalStrict(data, &config)
	if err != nil {
		return config, errors.Wrap(err, "failed to parse config")
	}

	if err = config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// LoadFile reads and parses the configuration file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
	}

	return ParseConfig(data)
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("host is required")
	}

	return nil
}
