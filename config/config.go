// Package config loads runtime settings and API credentials.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional config file, a .env file in the working directory and ZAIUS_
// environment variables. A nested key maps to an environment variable by
// upper-casing it and replacing dots with underscores, so export.endpoint
// is ZAIUS_EXPORT_ENDPOINT.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vegasq/zaius-export/export"
	"github.com/vegasq/zaius-export/storage"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "ZAIUS"

// Config holds all runtime settings
type Config struct {
	Export  ExportConfig  `mapstructure:"export"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ExportConfig configures the export API client
type ExportConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// StorageConfig configures result downloads
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	Endpoint   string `mapstructure:"endpoint"`
	Region     string `mapstructure:"region"`
	UseSSL     bool   `mapstructure:"use_ssl"`
	Workers    int    `mapstructure:"workers"`
	ScratchDir string `mapstructure:"scratch_dir"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `mapstructure:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `mapstructure:"format"` // json, text
}

// OutputConfig configures report output
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("export.endpoint", export.DefaultEndpoint)
	v.SetDefault("export.poll_interval", export.DefaultPollInterval)
	v.SetDefault("export.timeout", 30*time.Second)

	v.SetDefault("storage.backend", storage.BackendS3)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", storage.DefaultRegion)
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.workers", 0)
	v.SetDefault("storage.scratch_dir", "")

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "text")

	v.SetDefault("output.format", "csv")
}

// Load reads the configuration. path may be empty, in which case only
// defaults, .env and the environment are used.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	if c.Export.Endpoint == "" {
		return fmt.Errorf("export.endpoint must be set")
	}
	if c.Export.PollInterval <= 0 {
		return fmt.Errorf("export.poll_interval must be positive, got %s", c.Export.PollInterval)
	}
	if c.Storage.Workers < 0 {
		return fmt.Errorf("storage.workers must not be negative, got %d", c.Storage.Workers)
	}
	switch strings.ToLower(c.Storage.Backend) {
	case storage.BackendS3, storage.BackendMinio:
	default:
		return fmt.Errorf("%w: %q", storage.ErrUnknownBackend, c.Storage.Backend)
	}
	return nil
}

// StorageOptions combines the storage settings with the credentials
func (c *Config) StorageOptions(creds *Credentials) storage.Options {
	opts := storage.Options{
		Backend:  c.Storage.Backend,
		Endpoint: c.Storage.Endpoint,
		Region:   c.Storage.Region,
		UseSSL:   c.Storage.UseSSL,
	}
	if creds != nil {
		opts.AccessKeyID = creds.AWSAccessKeyID
		opts.SecretAccessKey = creds.AWSSecretAccessKey
	}
	return opts
}
