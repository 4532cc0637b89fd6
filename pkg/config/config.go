package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/JorgeHRP/renato-bi/pkg/layout"
	"github.com/JorgeHRP/renato-bi/pkg/store/backend"
)

const envPrefix = "RENATO_BI"

type Store struct {
	Backend  string `mapstructure:"backend"`
	DSN      string `mapstructure:"dsn"`
	Database string `mapstructure:"database"`
	Bucket   string `mapstructure:"bucket"`
}

type Config struct {
	Addr      string `mapstructure:"addr"`
	LogLevel  string `mapstructure:"log_level"`
	DataDir   string `mapstructure:"data_dir"`
	UploadDir string `mapstructure:"upload_dir"`
	// Layout is the path of a layout file; empty means the built-in one.
	Layout string `mapstructure:"layout"`
	Store  Store  `mapstructure:"store"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":         "addr",
	"log-level":    "log_level",
	"data-dir":     "data_dir",
	"upload-dir":   "upload_dir",
	"layout":       "layout",
	"store":        "store.backend",
	"store-dsn":    "store.dsn",
	"store-db":     "store.database",
	"store-bucket": "store.bucket",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "0.0.0.0:3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", "data")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("layout", "")
	v.SetDefault("store.backend", backend.File)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.database", "")
	v.SetDefault("store.bucket", "")
}

// Build resolves the configuration from, lowest to highest precedence:
// defaults, the config file, .env and RENATO_BI_* variables, and flags that
// were set explicitly. Without cfgFile an optional ./config.yaml is read.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	return &cfg, nil
}

// RegisterFlags adds the flags Build knows how to bind.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("addr", "", "Listen address")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("data-dir", "", "Directory for the file store")
	flags.String("upload-dir", "", "Directory where raw uploads are kept")
	flags.String("layout", "", "Layout file describing the spreadsheets")
	flags.String("store", "", "Store backend (file, memory, sqlite, postgres, mongo, gcs)")
	flags.String("store-dsn", "", "Connection string for sqlite, postgres or mongo")
	flags.String("store-db", "", "Mongo database name")
	flags.String("store-bucket", "", "GCS bucket name")
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger(prefix string) *log.Logger {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
}

func (c *Config) StoreOptions() backend.Options {
	return backend.Options{
		Backend:  c.Store.Backend,
		DataDir:  c.DataDir,
		DSN:      c.Store.DSN,
		Database: c.Store.Database,
		Bucket:   c.Store.Bucket,
	}
}

func (c *Config) LoadLayout() (*layout.Layout, error) {
	if c.Layout == "" {
		return layout.Default(), nil
	}
	return layout.Load(c.Layout)
}
