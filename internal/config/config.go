package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	NATS     NATSConfig     `yaml:"nats"`
	Settings SettingsConfig `yaml:"settings"`
	Log      LogConfig      `yaml:"log"`
}

type DiscordConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	BotToken     string        `yaml:"bot_token"`
	APIURL       string        `yaml:"api_url"`
	OAuthTimeout time.Duration `yaml:"oauth_timeout"`
	StateSecret  string        `yaml:"state_secret"`
}

type ServerConfig struct {
	Port           string  `yaml:"port"`
	DashboardURL   string  `yaml:"dashboard_url"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// StorageConfig selects the persistence backend: file, postgres, sqlite or
// memory.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DataPath    string `yaml:"data_path"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type SettingsConfig struct {
	UpdateMode string `yaml:"update_mode"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RedirectURI is where Discord sends the browser back after consent.
func (c *Config) RedirectURI() string {
	return strings.TrimRight(c.Server.DashboardURL, "/") + "/callback"
}

func Default() *Config {
	return &Config{
		Discord: DiscordConfig{
			APIURL:       "https://discord.com/api",
			OAuthTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Port:           "8001",
			DashboardURL:   "http://localhost:3000",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Storage: StorageConfig{
			Driver:     "file",
			DataPath:   "data",
			SQLitePath: "data/toothless.db",
		},
		Settings: SettingsConfig{UpdateMode: "replace"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads .env (if present), then the YAML file (if present), then
// applies environment overrides.
func Load(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"CLIENT_ID":            &cfg.Discord.ClientID,
		"CLIENT_SECRET":        &cfg.Discord.ClientSecret,
		"TOKEN":                &cfg.Discord.BotToken,
		"DISCORD_API_URL":      &cfg.Discord.APIURL,
		"STATE_SECRET":         &cfg.Discord.StateSecret,
		"PORT":                 &cfg.Server.Port,
		"DASHBOARD_URL":        &cfg.Server.DashboardURL,
		"STORAGE_DRIVER":       &cfg.Storage.Driver,
		"DATA_PATH":            &cfg.Storage.DataPath,
		"DATABASE_URL":         &cfg.Storage.DatabaseURL,
		"SQLITE_PATH":          &cfg.Storage.SQLitePath,
		"NATS_URL":             &cfg.NATS.URL,
		"SETTINGS_UPDATE_MODE": &cfg.Settings.UpdateMode,
		"LOG_LEVEL":            &cfg.Log.Level,
		"LOG_FORMAT":           &cfg.Log.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("OAUTH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid OAUTH_TIMEOUT %q: %w", v, err)
		}
		cfg.Discord.OAuthTimeout = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.Server.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		cfg.Server.RateLimitBurst = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "memory", "sqlite":
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Settings.UpdateMode {
	case "replace", "merge":
	default:
		return fmt.Errorf("unknown settings update mode %q", c.Settings.UpdateMode)
	}
	if c.Discord.OAuthTimeout <= 0 {
		return errors.New("oauth timeout must be positive")
	}
	return nil
}
