// Package config defines the application configuration and loads it from a
// YAML file, with environment variables overriding individual keys.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iwvelando/credit-wizard/internal/simulator"
	"github.com/iwvelando/credit-wizard/pkg/constants"
	"github.com/iwvelando/credit-wizard/pkg/validation"
)

// EnvPrefix prefixes environment overrides, e.g. CREDIT_WIZARD_SESSION_SECRET.
const EnvPrefix = "CREDIT_WIZARD"

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Configuration holds all configuration for credit-wizard.
type Configuration struct {
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging,omitempty"`
	Output        OutputConfig        `mapstructure:"output" yaml:"output,omitempty"`
	Simulator     SimulatorConfig     `mapstructure:"simulator" yaml:"simulator,omitempty"`
	Wizard        WizardConfig        `mapstructure:"wizard" yaml:"wizard,omitempty"`
	Session       SessionConfig       `mapstructure:"session" yaml:"session,omitempty"`
	Database      DatabaseConfig      `mapstructure:"database" yaml:"database,omitempty"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv
}

// SimulatorConfig overrides the published tariff.
type SimulatorConfig struct {
	Tariff simulator.Tariff `mapstructure:"tariff" yaml:"tariff,omitempty"`
}

// WizardConfig tunes the application wizard.
type WizardConfig struct {
	DebounceInterval     time.Duration `mapstructure:"debounceInterval" yaml:"debounceInterval,omitempty"`
	MaxDocumentSizeBytes int64         `mapstructure:"maxDocumentSizeBytes" yaml:"maxDocumentSizeBytes,omitempty"`
	IdleTTL              time.Duration `mapstructure:"idleTTL" yaml:"idleTTL,omitempty"`
}

// SessionConfig selects the session store and signs session tokens.
type SessionConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend,omitempty"`
	Secret  string        `mapstructure:"secret" yaml:"secret,omitempty"`
	Issuer  string        `mapstructure:"issuer" yaml:"issuer,omitempty"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl,omitempty"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis,omitempty"`
}

// RedisConfig locates the Redis session store.
type RedisConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr,omitempty"`
	Password  string `mapstructure:"password" yaml:"password,omitempty"`
	DB        int    `mapstructure:"db" yaml:"db,omitempty"`
	KeyPrefix string `mapstructure:"keyPrefix" yaml:"keyPrefix,omitempty"`
}

// DatabaseConfig locates the request database. An empty DSN keeps requests in memory.
type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn" yaml:"dsn,omitempty"`
	AutoMigrate bool   `mapstructure:"autoMigrate" yaml:"autoMigrate,omitempty"`
}

// NotificationsConfig locates the Kafka cluster receiving request events.
// Without brokers no events are published.
type NotificationsConfig struct {
	Brokers []string `mapstructure:"brokers" yaml:"brokers,omitempty"`
	Topic   string   `mapstructure:"topic" yaml:"topic,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	tariff := simulator.DefaultTariff()
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("simulator.tariff.withProperty.min", tariff.WithProperty.Min)
	v.SetDefault("simulator.tariff.withProperty.max", tariff.WithProperty.Max)
	v.SetDefault("simulator.tariff.withoutProperty.min", tariff.WithoutProperty.Min)
	v.SetDefault("simulator.tariff.withoutProperty.max", tariff.WithoutProperty.Max)
	v.SetDefault("simulator.tariff.guaranteeWithProperty", tariff.GuaranteeWithProperty)
	v.SetDefault("simulator.tariff.guaranteeWithoutProperty", tariff.GuaranteeWithoutProperty)
	v.SetDefault("wizard.debounceInterval", constants.DefaultDebounceInterval)
	v.SetDefault("wizard.maxDocumentSizeBytes", constants.DefaultMaxDocumentSizeBytes)
	v.SetDefault("wizard.idleTTL", constants.DefaultWizardIdleTTL)
	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.issuer", constants.DefaultTokenIssuer)
	v.SetDefault("session.ttl", constants.DefaultSessionTTL)
	v.SetDefault("session.redis.addr", "")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.keyPrefix", "credit-wizard:")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("notifications.brokers", []string{})
	v.SetDefault("notifications.topic", constants.DefaultSubmissionTopic)
	return v
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	var configuration Configuration
	if err := newViper().Unmarshal(&configuration); err != nil {
		panic(fmt.Sprintf("decoding built-in defaults: %v", err))
	}
	return &configuration
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate rejects configurations the application cannot start with.
func (c *Configuration) Validate() error {
	if err := c.Simulator.Tariff.Validate(); err != nil {
		return fmt.Errorf("simulator: %w", err)
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if c.Wizard.DebounceInterval < 0 {
		return fmt.Errorf("wizard: debounceInterval cannot be negative")
	}
	if c.Wizard.MaxDocumentSizeBytes <= 0 {
		return fmt.Errorf("wizard: maxDocumentSizeBytes must be positive")
	}
	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Session.Redis.Addr == "" {
			return fmt.Errorf("session: redis backend requires session.redis.addr")
		}
	default:
		return fmt.Errorf("session: unknown backend %q, expected %s or %s", c.Session.Backend, BackendMemory, BackendRedis)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}
	return nil
}

// ValidateConfiguration returns warnings about settings that work but are
// probably not what a production deployment wants.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if c.Session.Secret == "" {
		warnings = append(warnings, "session.secret is empty: a random secret is generated and tokens do not survive restarts")
	} else if len(c.Session.Secret) < 32 {
		warnings = append(warnings, "session.secret is shorter than 32 bytes")
	}
	if c.Session.Backend == BackendMemory {
		warnings = append(warnings, "session.backend is memory: drafts are lost on restart and not shared between instances")
	}
	if c.Database.DSN == "" {
		warnings = append(warnings, "database.dsn is empty: submitted requests are kept in memory only")
	}
	if len(c.Notifications.Brokers) == 0 {
		warnings = append(warnings, "notifications.brokers is empty: request events are not published")
	}
	if c.Wizard.IdleTTL == 0 {
		warnings = append(warnings, "wizard.idleTTL is zero: idle wizards are never evicted")
	}
	return warnings
}
