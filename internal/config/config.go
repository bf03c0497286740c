package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces every environment variable, e.g. SICK_SERVER_PORT.
const envPrefix = "SICK"

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Uploads UploadConfig  `yaml:"uploads" envconfig:"UPLOADS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50" validate:"min=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25" validate:"min=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// UploadConfig controls how uploaded scan files are handled.
type UploadConfig struct {
	// TempDir is where upload bytes are spooled while a file is parsed.
	// Empty means the operating system default.
	TempDir string `yaml:"temp_dir" envconfig:"TEMP_DIR"`
	// MaxFileSize caps a single uploaded file, in bytes.
	MaxFileSize int64 `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"16777216" validate:"min=1"`
	// MaxFiles caps the number of files in one batch.
	MaxFiles int `yaml:"max_files" envconfig:"MAX_FILES" default:"16" validate:"min=1"`
	// RejectRagged rejects files whose blocks disagree on coordinate
	// length instead of padding the table with missing cells.
	RejectRagged bool `yaml:"reject_ragged" envconfig:"REJECT_RAGGED" default:"false"`
}

// Load loads configuration from environment variables and, when
// present, the given YAML file. Environment values take precedence;
// the file fills in what the environment left at its default.
func Load(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = merge(*fileCfg, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with every field at its default,
// bypassing the environment. Used by tests, the CLI, and merge logic.
// Values mirror the envconfig default tags above.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       RateLimitConfig{Enabled: true, RPS: 50, Burst: 25},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Uploads: UploadConfig{
			MaxFileSize: 16 << 20,
			MaxFiles:    16,
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays env config on top of file config. Only fields the
// environment left unset (still at the envconfig default or zero) fall
// back to the file's value.
func merge(fileCfg, envCfg Config) Config {
	def := Default()

	if envCfg.Server.Port == def.Server.Port && fileCfg.Server.Port != 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Server.ReadTimeout == def.Server.ReadTimeout && fileCfg.Server.ReadTimeout != 0 {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout == def.Server.WriteTimeout && fileCfg.Server.WriteTimeout != 0 {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if envCfg.Server.IdleTimeout == def.Server.IdleTimeout && fileCfg.Server.IdleTimeout != 0 {
		envCfg.Server.IdleTimeout = fileCfg.Server.IdleTimeout
	}
	if envCfg.Server.ShutdownTimeout == def.Server.ShutdownTimeout && fileCfg.Server.ShutdownTimeout != 0 {
		envCfg.Server.ShutdownTimeout = fileCfg.Server.ShutdownTimeout
	}
	if envCfg.Logging.Level == def.Logging.Level && fileCfg.Logging.Level != "" {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if envCfg.Logging.Output == def.Logging.Output && fileCfg.Logging.Output != "" {
		envCfg.Logging.Output = fileCfg.Logging.Output
	}
	if envCfg.Logging.FilePath == def.Logging.FilePath && fileCfg.Logging.FilePath != "" {
		envCfg.Logging.FilePath = fileCfg.Logging.FilePath
	}
	if envCfg.Uploads.TempDir == "" {
		envCfg.Uploads.TempDir = fileCfg.Uploads.TempDir
	}
	if envCfg.Uploads.MaxFileSize == def.Uploads.MaxFileSize && fileCfg.Uploads.MaxFileSize != 0 {
		envCfg.Uploads.MaxFileSize = fileCfg.Uploads.MaxFileSize
	}
	if envCfg.Uploads.MaxFiles == def.Uploads.MaxFiles && fileCfg.Uploads.MaxFiles != 0 {
		envCfg.Uploads.MaxFiles = fileCfg.Uploads.MaxFiles
	}
	if fileCfg.Uploads.RejectRagged {
		envCfg.Uploads.RejectRagged = true
	}
	if fileCfg.Server.RateLimit.Enabled != envCfg.Server.RateLimit.Enabled && !envLimitSet() {
		envCfg.Server.RateLimit = fileCfg.Server.RateLimit
	}
	return envCfg
}

// envLimitSet reports whether any rate limit variable was set in the
// environment, in which case the file's rate limit block is ignored.
func envLimitSet() bool {
	for _, key := range []string{
		envPrefix + "_SERVER_RATE_LIMIT_ENABLED",
		envPrefix + "_SERVER_RATE_LIMIT_RPS",
		envPrefix + "_SERVER_RATE_LIMIT_BURST",
	} {
		if _, ok := os.LookupEnv(key); ok {
			return true
		}
	}
	return false
}
