// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Data      DataConfig      `mapstructure:"data"`
	Session   SessionConfig   `mapstructure:"session"`
	Daily     DailyConfig     `mapstructure:"daily"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// DataConfig locates the static game assets.
type DataConfig struct {
	PokedexPath string `mapstructure:"pokedex_path"`
	SpritesDir  string `mapstructure:"sprites_dir"`
}

// SessionConfig holds the multi-round session timing parameters.
type SessionConfig struct {
	AnswerWindow time.Duration `mapstructure:"answer_window"`
	HintAfter    time.Duration `mapstructure:"hint_after"`
	HintTTL      time.Duration `mapstructure:"hint_ttl"`
	StartDelay   time.Duration `mapstructure:"start_delay"`
	AdvanceDelay time.Duration `mapstructure:"advance_delay"`
	RevealTTL    time.Duration `mapstructure:"reveal_ttl"`
	MaxRounds    int           `mapstructure:"max_rounds"`
}

// DailyConfig holds the daily challenge parameters.
type DailyConfig struct {
	Window          time.Duration `mapstructure:"window"`
	WrongLimit      int           `mapstructure:"wrong_limit"`
	ResetHour       int           `mapstructure:"reset_hour"`
	Timezone        string        `mapstructure:"timezone"`
	BroadcastChatID int64         `mapstructure:"broadcast_chat_id"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, DAILY_RESET_HOUR.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pokebot")
	v.SetDefault("database.name", "pokebot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Asset defaults
	v.SetDefault("data.pokedex_path", "data/pokedex.json")
	v.SetDefault("data.sprites_dir", "data/sprites")

	// Session defaults
	v.SetDefault("session.answer_window", "15s")
	v.SetDefault("session.hint_after", "10s")
	v.SetDefault("session.hint_ttl", "5s")
	v.SetDefault("session.start_delay", "2s")
	v.SetDefault("session.advance_delay", "2s")
	v.SetDefault("session.reveal_ttl", "10s")
	v.SetDefault("session.max_rounds", 20)

	// Daily challenge defaults
	v.SetDefault("daily.window", "60s")
	v.SetDefault("daily.wrong_limit", 5)
	v.SetDefault("daily.reset_hour", 8)
	v.SetDefault("daily.timezone", "Europe/Amsterdam")
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
