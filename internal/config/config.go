package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Tree     TreeConfig     `mapstructure:"tree"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StoreConfig selects the persistent key-value backend
type StoreConfig struct {
	Backend        string `mapstructure:"backend"`   // file, memory, redis or postgres
	FilePath       string `mapstructure:"file_path"` // empty: user config dir
	DefaultPathKey string `mapstructure:"default_path_key"`
}

// TreeConfig describes where the bookmark tree is read from
type TreeConfig struct {
	BookmarksFile string   `mapstructure:"bookmarks_file"`
	RootSelectors []string `mapstructure:"root_selectors"`
}

// MetadataConfig holds page metadata resolution settings
type MetadataConfig struct {
	CachePrefix          string        `mapstructure:"cache_prefix"`
	FallbackService      string        `mapstructure:"fallback_service"`
	UntitledPlaceholder  string        `mapstructure:"untitled_placeholder"`
	UserAgent            string        `mapstructure:"user_agent"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRetries           int           `mapstructure:"max_retries"`
	MaxWorkers           int           `mapstructure:"max_workers"`
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"`
	CoalesceRequests     bool          `mapstructure:"coalesce_requests"`
	ViewWait             time.Duration `mapstructure:"view_wait"`
	Proxies              []string      `mapstructure:"proxies"`
	ProxyTestURL         string        `mapstructure:"proxy_test_url"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN returns the pgx connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path searches for config.yaml in the current directory; a missing
// file is not an error there, defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.file_path", "")
	v.SetDefault("store.default_path_key", "defaultBookmarkIds")

	v.SetDefault("tree.bookmarks_file", "")
	v.SetDefault("tree.root_selectors", []string{
		"$.roots.bookmark_bar",
		"$.roots.other",
		"$.roots.synced",
	})

	v.SetDefault("metadata.cache_prefix", "bookmark_")
	v.SetDefault("metadata.fallback_service", "https://www.google.com/s2/favicons?domain={hostname}&sz=64")
	v.SetDefault("metadata.untitled_placeholder", "Untitled")
	v.SetDefault("metadata.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("metadata.timeout", 15*time.Second)
	v.SetDefault("metadata.max_retries", 0)
	v.SetDefault("metadata.max_workers", 8)
	v.SetDefault("metadata.max_requests_per_second", 20)
	v.SetDefault("metadata.coalesce_requests", false)
	v.SetDefault("metadata.view_wait", 5*time.Second)
	v.SetDefault("metadata.proxies", []string{})
	v.SetDefault("metadata.proxy_test_url", "https://www.google.com")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "bookmarks")
	v.SetDefault("database.user", "bookmarks_user")
	v.SetDefault("database.password", "bookmarks_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "bookmarks:kv:")
}
