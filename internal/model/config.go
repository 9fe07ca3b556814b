package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Default values applied when neither the config file nor the
// environment provides one.
const (
	DefaultBaseURL         = "https://sanofi.atlassian.net"
	DefaultDestinationName = "jira"
	DefaultLogLevel        = "info"
)

// JiraConfig holds the static (environment) connection settings for the
// issue tracker.
type JiraConfig struct {
	// BaseURL is the root URL of the Jira Cloud site.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Username is the account email used for basic auth.
	Username string `mapstructure:"username" yaml:"username"`

	// APIToken is the API token paired with Username. When empty, the
	// token is looked up in the system keyring.
	APIToken string `mapstructure:"api_token" yaml:"api_token"`

	// RequestsPerSecond paces outbound calls. Zero means unlimited.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// DestinationConfig holds the delegated-auth broker settings.
type DestinationConfig struct {
	// Enabled requests delegated mode explicitly (USE_DESTINATION).
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Name is the destination to resolve from the broker.
	Name string `mapstructure:"name" yaml:"name"`

	// ServiceURL is the destination service REST root. When empty the
	// broker is considered unconfigured.
	ServiceURL string `mapstructure:"service_url" yaml:"service_url"`

	// TokenURL, ClientID and ClientSecret authenticate against the
	// destination service with the client-credentials grant.
	TokenURL     string `mapstructure:"token_url" yaml:"token_url"`
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
}

// CacheConfig locates the local issue cache database.
type CacheConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// Environment is the runtime environment name (NODE_ENV).
	Environment string `mapstructure:"environment" yaml:"environment"`

	Jira        JiraConfig        `mapstructure:"jira" yaml:"jira"`
	Destination DestinationConfig `mapstructure:"destination" yaml:"destination"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// DelegatedMode reports whether credentials should be resolved through
// the destination broker. Production environments always use it.
func (c *AppConfig) DelegatedMode() bool {
	return c.Destination.Enabled || c.Environment == "production"
}

// envBindings maps config keys to the environment variables recognized
// for them.
var envBindings = []struct {
	key string
	env string
}{
	{"environment", "NODE_ENV"},
	{"jira.base_url", "JIRA_BASE_URL"},
	{"jira.username", "JIRA_USERNAME"},
	{"jira.api_token", "JIRA_API_TOKEN"},
	{"jira.requests_per_second", "JIRA_REQUESTS_PER_SECOND"},
	{"destination.enabled", "USE_DESTINATION"},
	{"destination.name", "JIRA_DESTINATION_NAME"},
	{"destination.service_url", "DESTINATION_SERVICE_URL"},
	{"destination.token_url", "DESTINATION_TOKEN_URL"},
	{"destination.client_id", "DESTINATION_CLIENT_ID"},
	{"destination.client_secret", "DESTINATION_CLIENT_SECRET"},
	{"cache.path", "JIRA_CACHE_PATH"},
	{"log.level", "LOG_LEVEL"},
}

// DefaultCachePath returns the default location of the issue cache,
// ~/.config/jirasvc/cache.db.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache.db")
	}
	return filepath.Join(home, ".config", "jirasvc", "cache.db")
}

// LoadConfig builds the configuration from defaults, an optional file at
// path and the environment, in increasing order of precedence. The file
// may be YAML or a dotenv file named ".env". A missing file is not an
// error.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("environment", "")
	v.SetDefault("jira.base_url", DefaultBaseURL)
	v.SetDefault("jira.requests_per_second", 0)
	v.SetDefault("destination.enabled", false)
	v.SetDefault("destination.name", DefaultDestinationName)
	v.SetDefault("cache.path", DefaultCachePath())
	v.SetDefault("log.level", DefaultLogLevel)

	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.env, err)
		}
	}

	if path != "" {
		if err := readConfigFile(v, path); err != nil {
			return nil, err
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Jira.BaseURL = strings.TrimRight(cfg.Jira.BaseURL, "/")
	return cfg, nil
}

// readConfigFile merges the file at path into v. Dotenv files use the
// environment variable names, so their values are mapped through
// envBindings and installed as defaults to keep the real environment in
// charge.
func readConfigFile(v *viper.Viper, path string) error {
	if filepath.Base(path) != ".env" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if isMissingConfig(err) {
				return nil
			}
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}

	fv := viper.New()
	fv.SetConfigFile(path)
	fv.SetConfigType("env")
	if err := fv.ReadInConfig(); err != nil {
		if isMissingConfig(err) {
			return nil
		}
		return fmt.Errorf("reading dotenv %s: %w", path, err)
	}

	for _, b := range envBindings {
		name := strings.ToLower(b.env)
		if fv.IsSet(name) {
			v.SetDefault(b.key, fv.Get(name))
		}
	}
	return nil
}

func isMissingConfig(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return true
	}
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}
