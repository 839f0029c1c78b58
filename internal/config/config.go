// Package config loads the card linker settings from an optional YAML file
// and the environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codyseavey/card-linker/internal/models"
)

// Config holds process settings (read-only after Load)
type Config struct {
	// Chat platform
	Token          string           `yaml:"token,omitempty"`
	BotUserID      models.Snowflake `yaml:"bot_user_id,omitempty"`
	ChatAPIBaseURL string           `yaml:"chat_api_base_url,omitempty"`
	ChatRateLimit  float64          `yaml:"chat_rate_limit,omitempty"` // requests per second

	// Catalog
	GoogleSheetID string        `yaml:"google_sheet_id,omitempty"`
	CardFilePath  string        `yaml:"card_file_path,omitempty"`
	WatchCardFile bool          `yaml:"watch_card_file,omitempty"`
	LoadWait      time.Duration `yaml:"load_wait,omitempty"`
	// RefreshInterval reloads the catalog periodically; zero disables it
	RefreshInterval time.Duration `yaml:"refresh_interval,omitempty"`

	// HTTP and storage
	Port        string   `yaml:"port,omitempty"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
	DBPath      string   `yaml:"db_path,omitempty"`
	// MissRetention prunes lookup misses not seen for this long; zero keeps them
	MissRetention time.Duration `yaml:"miss_retention,omitempty"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		CardFilePath: "./data/cards.tsv",
		LoadWait:     time.Second,
		Port:         "8080",
		CORSOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
		DBPath:       "./card_linker.db",
		// 90 days
		MissRetention: 2160 * time.Hour,
	}
}

// Load reads the YAML file at path when it exists (an empty path skips the
// file) and then applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Environment-only configuration
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Token = v
	} else if keyPath := os.Getenv("DISCORD_TOKEN_FILE"); keyPath != "" {
		if data, err := os.ReadFile(keyPath); err == nil {
			c.Token = strings.TrimSpace(string(data))
		}
	}
	if v := os.Getenv("BOT_USER_ID"); v != "" {
		id, err := models.ParseSnowflake(v)
		if err != nil {
			return fmt.Errorf("invalid BOT_USER_ID %q: %w", v, err)
		}
		c.BotUserID = id
	}
	if v := os.Getenv("CHAT_API_BASE_URL"); v != "" {
		c.ChatAPIBaseURL = v
	}
	if v := os.Getenv("CHAT_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid CHAT_RATE_LIMIT %q: %w", v, err)
		}
		c.ChatRateLimit = limit
	}
	if v := os.Getenv("GOOGLE_SHEET_ID"); v != "" {
		c.GoogleSheetID = v
	}
	if v := os.Getenv("CARD_FILE_PATH"); v != "" {
		c.CardFilePath = v
	}
	if v := os.Getenv("WATCH_CARD_FILE"); v != "" {
		c.WatchCardFile = v == "true" || v == "1"
	}
	if v := os.Getenv("LOAD_WAIT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LOAD_WAIT %q: %w", v, err)
		}
		c.LoadWait = d
	}
	if v := os.Getenv("CATALOG_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CATALOG_REFRESH_INTERVAL %q: %w", v, err)
		}
		c.RefreshInterval = d
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("MISS_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid MISS_RETENTION %q: %w", v, err)
		}
		c.MissRetention = d
	}
	return nil
}

// Validate checks the settings the server cannot run without
func (c *Config) Validate() error {
	if c.CardFilePath == "" {
		return fmt.Errorf("card file path is required")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}
	if c.MissRetention < 0 {
		return fmt.Errorf("miss retention cannot be negative")
	}
	if c.WatchCardFile && c.GoogleSheetID != "" {
		return fmt.Errorf("watch_card_file cannot be combined with google_sheet_id: every download rewrites the card file")
	}
	return nil
}
