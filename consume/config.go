package consume

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fwojciec/linkpub"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config describes a consumer installation.
type Config struct {
	Hosts              []string      `env:"LINKPUB_HOSTS" envSeparator:","`
	ConsumerGUID       string        `env:"LINKPUB_CONSUMER_GUID" envDefault:"91734bd4-dd94-498d-808a-d05235c853f9"`
	SiteGUID           string        `env:"LINKPUB_SITE_GUID"`
	InstanceGUID       string        `env:"LINKPUB_INSTANCE_GUID"`
	CachePath          string        `env:"LINKPUB_CACHE_PATH"`
	CacheBackend       string        `env:"LINKPUB_CACHE_BACKEND" envDefault:"file"`
	UserAgent          string        `env:"LINKPUB_USER_AGENT" envDefault:"LinkPub client"`
	ConnectTimeout     time.Duration `env:"LINKPUB_CONNECT_TIMEOUT" envDefault:"6s"`
	Lifetime           time.Duration `env:"LINKPUB_CACHE_LIFETIME" envDefault:"1h"`
	RetryTimeout       time.Duration `env:"LINKPUB_RETRY_TIMEOUT" envDefault:"10m"`
	DisabledStrategies []string      `env:"LINKPUB_DISABLED_STRATEGIES" envSeparator:","`
}

// ParseEnv loads configuration from the process environment.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ParseEnvFrom loads configuration from the given variables instead of the
// process environment.
func ParseEnvFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate returns EINVALID if the configuration cannot produce a consumer.
func (c Config) Validate() error {
	if len(c.Hosts) == 0 {
		return linkpub.Errorf(linkpub.EINVALID, "LINKPUB_HOSTS required")
	}
	if err := linkpub.ValidateGUID(c.ConsumerGUID); err != nil {
		return linkpub.Errorf(linkpub.EINVALID, "consumer GUID: %s", linkpub.ErrorMessage(err))
	}
	if c.CachePath == "" {
		return linkpub.Errorf(linkpub.EINVALID, "cache path required")
	}
	switch c.CacheBackend {
	case BackendFile, BackendSQLite:
	default:
		return linkpub.Errorf(linkpub.EINVALID, "unknown cache backend %q", c.CacheBackend)
	}
	if c.ConnectTimeout <= 0 || c.Lifetime <= 0 || c.RetryTimeout <= 0 {
		return linkpub.Errorf(linkpub.EINVALID, "timeouts must be positive")
	}
	if _, err := linkpub.ParseStrategies(c.DisabledStrategies); err != nil {
		return err
	}
	return nil
}

// Policy returns the freshness policy described by the configuration.
func (c Config) Policy() linkpub.FreshnessPolicy {
	return linkpub.FreshnessPolicy{Lifetime: c.Lifetime, RetryTimeout: c.RetryTimeout}
}

// Identity returns the consumer identity described by the configuration.
// The site GUID is assigned after construction, as an installation would
// on first registration.
func (c Config) Identity() (*linkpub.Identity, error) {
	id, err := linkpub.NewIdentity(c.ConsumerGUID, "", c.InstanceGUID)
	if err != nil {
		return nil, err
	}
	if c.SiteGUID != "" {
		if err := id.SetSiteGUID(c.SiteGUID); err != nil {
			return nil, err
		}
	}
	return id, nil
}

// HostRotation returns a rotation over the configured hosts.
func (c Config) HostRotation() (*linkpub.HostRotation, error) {
	return linkpub.NewHostRotation(c.Hosts)
}
