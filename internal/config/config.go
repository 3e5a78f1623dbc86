package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the backend.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config configures the archive of completed session reports.
// Archiving is disabled when BucketName is empty.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether report archiving should be wired.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// SessionConfig tunes workout session handling on the server.
type SessionConfig struct {
	DefaultRestSeconds int           `mapstructure:"default_rest_seconds"`
	AbandonAfter       time.Duration `mapstructure:"abandon_after"` // open sessions older than this are swept
	SweepSchedule      string        `mapstructure:"sweep_schedule"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "befit")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("session.default_rest_seconds", 60)
	v.SetDefault("session.abandon_after", "24h")
	v.SetDefault("session.sweep_schedule", "@every 30m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	if err = readOptional(v); err != nil {
		return
	}

	// Duration strings ("24h", "30m") decode straight into time.Duration fields.
	err = v.Unmarshal(&config)
	return config, err
}

// ClientConfig configures the befit command line client.
type ClientConfig struct {
	API  APIConfig  `mapstructure:"api"`
	Data DataConfig `mapstructure:"data"`
	Log  LogConfig  `mapstructure:"log"`
	Sync SyncConfig `mapstructure:"sync"`
}

type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// SyncConfig selects how per-set progress writes reach the backend.
type SyncConfig struct {
	Mode string `mapstructure:"mode"` // "direct" or "outbox"
}

const (
	SyncModeDirect = "direct"
	SyncModeOutbox = "outbox"
)

// LoadClientConfig reads befit.yaml from path and BEFIT_* environment variables.
func LoadClientConfig(path string) (config ClientConfig, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("befit")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("befit")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("api.url", "http://localhost:8080/api/v1")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("data.dir", defaultDataDir())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("sync.mode", SyncModeDirect)

	if err = readOptional(v); err != nil {
		return
	}
	err = v.Unmarshal(&config)
	return config, err
}

// readOptional reads the config file, tolerating its absence.
func readOptional(v *viper.Viper) error {
	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}
	return err
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".befit"
	}
	return filepath.Join(home, ".befit")
}
