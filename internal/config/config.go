// Package config loads application configuration from file, environment,
// and defaults via viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// App identity defaults.
const (
	defaultAppName    = "vigia"
	defaultAppVersion = "1.0.0"
)

// AppConfig identifies the running service.
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// LoggerConfig mirrors internal/logger.Config.
type LoggerConfig struct {
	Level       string
	Encoding    string
	Development bool
}

// ServerConfig tunes the HTTP surface.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// CrawlConfig tunes crawl sessions.
type CrawlConfig struct {
	Concurrency     int
	MaxLinksPerPage int
	MonthsBack      int
	SeedTimeout     time.Duration
	LinkTimeout     time.Duration
	UserAgent       string
}

// SearchConfig holds the web search API settings.
type SearchConfig struct {
	Endpoint    string
	APIKey      string
	EngineID    string
	NumResults  int
	Geolocation string
	Timeout     time.Duration
}

// EmbedConfig holds the embeddings endpoint settings.
type EmbedConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// WatchConfig drives scheduled re-investigation.
type WatchConfig struct {
	Schedule string
	Targets  []string
}

// Config is the full application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Database DatabaseConfig
	Crawl    CrawlConfig
	Search   SearchConfig
	Embed    EmbedConfig
	Watch    WatchConfig
}

// Load reads configuration from the optional config file, the
// environment, and defaults, in that order of precedence.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: .env file not loaded: %v\n", err)
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	bindEnvVars(v)

	return &Config{
		App: AppConfig{
			Name:        v.GetString("app.name"),
			Version:     v.GetString("app.version"),
			Environment: v.GetString("app.environment"),
			Debug:       v.GetBool("app.debug"),
		},
		Logger: LoggerConfig{
			Level:       v.GetString("logger.level"),
			Encoding:    v.GetString("logger.encoding"),
			Development: v.GetBool("logger.development"),
		},
		Server: ServerConfig{
			Address:      v.GetString("server.address"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetString("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Crawl: CrawlConfig{
			Concurrency:     v.GetInt("crawl.concurrency"),
			MaxLinksPerPage: v.GetInt("crawl.max_links_per_page"),
			MonthsBack:      v.GetInt("crawl.months_back"),
			SeedTimeout:     v.GetDuration("crawl.seed_timeout"),
			LinkTimeout:     v.GetDuration("crawl.link_timeout"),
			UserAgent:       v.GetString("crawl.user_agent"),
		},
		Search: SearchConfig{
			Endpoint:    v.GetString("search.endpoint"),
			APIKey:      v.GetString("search.api_key"),
			EngineID:    v.GetString("search.engine_id"),
			NumResults:  v.GetInt("search.num_results"),
			Geolocation: v.GetString("search.geolocation"),
			Timeout:     v.GetDuration("search.timeout"),
		},
		Embed: EmbedConfig{
			BaseURL: v.GetString("embed.base_url"),
			APIKey:  v.GetString("embed.api_key"),
			Model:   v.GetString("embed.model"),
			Timeout: v.GetDuration("embed.timeout"),
		},
		Watch: WatchConfig{
			Schedule: v.GetString("watch.schedule"),
			Targets:  v.GetStringSlice("watch.targets"),
		},
	}, nil
}

// bindEnvVars maps the common flat environment variables onto config keys.
func bindEnvVars(v *viper.Viper) {
	pairs := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"app.debug":         {"APP_DEBUG"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.encoding":   {"LOG_FORMAT"},
		"database.host":     {"DB_HOST"},
		"database.port":     {"DB_PORT"},
		"database.user":     {"DB_USER"},
		"database.password": {"DB_PASSWORD"},
		"database.dbname":   {"DB_NAME"},
		"database.sslmode":  {"DB_SSLMODE"},
		"search.api_key":    {"API_KEY_SEARCH", "SEARCH_API_KEY"},
		"search.engine_id":  {"SEARCH_ENGINE_ID"},
		"embed.base_url":    {"EMBED_BASE_URL"},
		"embed.api_key":     {"EMBED_API_KEY", "OPENAI_API_KEY"},
		"embed.model":       {"EMBED_MODEL"},
	}
	for key, envs := range pairs {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// setDefaults sets production-safe defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app", map[string]any{
		"name":        defaultAppName,
		"version":     defaultAppVersion,
		"environment": "production",
		"debug":       false,
	})

	v.SetDefault("logger", map[string]any{
		"level":       "info",
		"encoding":    "json",
		"development": false,
	})

	v.SetDefault("server", map[string]any{
		"address":       ":8080",
		"read_timeout":  "15s",
		"write_timeout": "30s",
		"idle_timeout":  "60s",
	})

	v.SetDefault("database", map[string]any{
		"host":     "127.0.0.1",
		"port":     "5432",
		"user":     "vigia",
		"password": "",
		"dbname":   "vigia",
		"sslmode":  "disable",
	})

	v.SetDefault("crawl", map[string]any{
		"concurrency":        5,
		"max_links_per_page": 8,
		"months_back":        6,
		"seed_timeout":       "30s",
		"link_timeout":       "15s",
		"user_agent":         "",
	})

	v.SetDefault("search", map[string]any{
		"endpoint":    "https://www.googleapis.com/customsearch/v1",
		"num_results": 5,
		"geolocation": "co",
		"timeout":     "15s",
	})

	v.SetDefault("embed", map[string]any{
		"base_url": "https://api.openai.com/v1",
		"model":    "text-embedding-3-small",
		"timeout":  "30s",
	})

	v.SetDefault("watch", map[string]any{
		"schedule": "0 6 * * *",
		"targets":  []string{},
	})
}
