// Package config loads the versed server configuration from
// environment variables and an optional config file, via spf13/viper,
// replacing the teacher's hardcoded loadConfig. Command-line flags are
// applied on top by cmd/versed.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is versed's full runtime configuration (spec.md's
// "CLI argument parsing, configuration file loading" ambient surface).
type Config struct {
	ListenAddr       string        `mapstructure:"listen_addr"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	MaxSessions      int           `mapstructure:"max_sessions"`
	MaxOutboundBytes int           `mapstructure:"max_outbound_bytes"`
	SendBufferSize   int           `mapstructure:"send_buffer_size"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	LogLevel         string        `mapstructure:"log_level"`
}

// Defaults returns the zero-config starting point; every field can be
// overridden by a VERSE_* environment variable or the config file.
// cmd/versed also has flags for the listen address, metrics address,
// max sessions and log level.
func Defaults() Config {
	return Config{
		ListenAddr:       "0.0.0.0:7780",
		MetricsAddr:      "127.0.0.1:9780",
		MaxSessions:      1024,
		MaxOutboundBytes: 0,
		SendBufferSize:   64 * 1024,
		TickInterval:     50 * time.Millisecond,
		IdleTimeout:      30 * time.Second,
		LogLevel:         "info",
	}
}

// Load builds a viper instance seeded with Defaults, merges configFile
// (if non-empty), binds VERSE_*-prefixed environment variables, and
// unmarshals into a Config.
func Load(configFile string) (Config, error) {
	def := Defaults()
	v := viper.New()
	v.SetDefault("listen_addr", def.ListenAddr)
	v.SetDefault("metrics_addr", def.MetricsAddr)
	v.SetDefault("max_sessions", def.MaxSessions)
	v.SetDefault("max_outbound_bytes", def.MaxOutboundBytes)
	v.SetDefault("send_buffer_size", def.SendBufferSize)
	v.SetDefault("tick_interval", def.TickInterval)
	v.SetDefault("idle_timeout", def.IdleTimeout)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("verse")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
