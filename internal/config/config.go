// Package config loads runtime settings from defaults, config.yaml,
// PRESENCE_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/constants"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppDir         = "~/.go-presence-timeline"
	DefaultLogFile = AppDir + "/logs/app.log"
	DefaultDataDir = AppDir + "/history"
	DefaultDBPath  = AppDir + "/history.db"

	envPrefix = "PRESENCE"
)

// Config holds all runtime settings
type Config struct {
	Source          string        `mapstructure:"source"` // file | http | sqlite
	DataDir         string        `mapstructure:"data_dir"`
	BaseURL         string        `mapstructure:"base_url"`
	DBPath          string        `mapstructure:"db_path"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	Timezone        string        `mapstructure:"timezone"`
	ListenAddr      string        `mapstructure:"listen_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	Concurrency     int           `mapstructure:"concurrency"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`

	// Rows shown in device lists; absent or non-positive means the default
	Rows int `mapstructure:"visible_rows"`

	Devices []model.Device `mapstructure:"devices"`
}

// flagKeys maps config keys to the flag names that override them
var flagKeys = map[string]string{
	"source":           "source",
	"data_dir":         "dir",
	"base_url":         "base-url",
	"db_path":          "db",
	"refresh_interval": "interval",
	"http_timeout":     "http-timeout",
	"timezone":         "timezone",
	"listen_addr":      "listen",
	"metrics_addr":     "metrics-addr",
	"concurrency":      "concurrency",
	"visible_rows":     "rows",
	"log_level":        "log-level",
}

// LoadOptions selects the config file and the flags bound over it
type LoadOptions struct {
	ConfigFile string
	Flags      *pflag.FlagSet
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", string(source.KindFile))
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("base_url", "")
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("refresh_interval", constants.DefaultRefreshInterval)
	v.SetDefault("http_timeout", 10*time.Second)
	v.SetDefault("timezone", "Local")
	v.SetDefault("listen_addr", "127.0.0.1:8086")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("concurrency", 4)
	v.SetDefault("visible_rows", constants.DefaultVisibleRows)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", DefaultLogFile)
}

// Load resolves the configuration and validates it
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(ExpandPath(opts.ConfigFile))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ExpandPath(AppDir))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, name := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalises values and fills defaults for zero fields
func (c *Config) Validate() error {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	switch source.Kind(c.Source) {
	case "":
		c.Source = string(source.KindFile)
	case source.KindFile, source.KindSQLite:
	case source.KindHTTP:
		if c.BaseURL == "" {
			return fmt.Errorf("source %q requires base_url", c.Source)
		}
	default:
		return fmt.Errorf("%w: %q", source.ErrUnknownSource, c.Source)
	}

	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	c.DataDir = ExpandPath(c.DataDir)
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	c.DBPath = ExpandPath(c.DBPath)
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	c.LogFile = ExpandPath(c.LogFile)

	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = constants.DefaultRefreshInterval
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return nil
}

// VisibleRows returns the row preference, falling back to the default
func (c *Config) VisibleRows() int {
	if c.Rows <= 0 {
		return constants.DefaultVisibleRows
	}
	return c.Rows
}

// SourceOptions builds source options for the configured backend
func (c *Config) SourceOptions(loc *time.Location) source.Options {
	return source.Options{
		Kind:     source.Kind(c.Source),
		DataDir:  c.DataDir,
		BaseURL:  c.BaseURL,
		DBPath:   c.DBPath,
		Timeout:  c.HTTPTimeout,
		Location: loc,
	}
}

// ResolveDevices returns the configured devices, replaced by ids when given.
// IDs that match a configured device keep its name and IP.
func (c *Config) ResolveDevices(ids []string) []model.Device {
	if len(ids) == 0 {
		out := make([]model.Device, len(c.Devices))
		copy(out, c.Devices)
		return out
	}
	known := make(map[string]model.Device, len(c.Devices))
	for _, d := range c.Devices {
		known[strings.ToLower(d.ID)] = d
	}
	out := make([]model.Device, 0, len(ids))
	for _, id := range ids {
		if d, ok := known[strings.ToLower(id)]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, model.Device{ID: id})
	}
	return out
}

// ExpandPath resolves a leading ~/ and makes the path absolute
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
