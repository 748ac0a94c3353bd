// Package config assembles the process configuration once at startup.
// Handlers and clients receive the resulting *Config; nothing reads the
// environment after Load returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr      = ":8080"
	DefaultPageSize        = 10
	DefaultSitemapPageSize = 1000
	DefaultCacheTTL        = time.Hour
)

type Config struct {
	// ListenAddr is the address the HTTP server binds, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`
	// SiteURL is the public base URL of this site, used for absolute
	// links in the sitemap and OGP metadata.
	SiteURL string `yaml:"site_url"`
	// CMSURL is the base URL of the headless CMS API.
	CMSURL string `yaml:"cms_url"`
	// RevalidateSecret is the bearer token the CMS webhook must present.
	RevalidateSecret string `yaml:"revalidate_secret"`

	SiteTitle       string `yaml:"site_title"`
	SiteDescription string `yaml:"site_description"`

	PageSize        int `yaml:"page_size"`
	SitemapPageSize int `yaml:"sitemap_page_size"`

	LogLevel string `yaml:"log_level"`

	Redis    RedisConfig   `yaml:"redis"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// RedisConfig configures the page cache backend. An empty address
// disables caching entirely.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ErrMissingCMSURL is returned when no CMS base URL is configured.
var ErrMissingCMSURL = errors.New("config: CMS_API_URL is required")

// Load reads .env (when present), an optional YAML config file named by
// CONFIG_FILE, and finally the environment, with the environment taking
// precedence over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{
		ListenAddr:      DefaultListenAddr,
		SiteURL:         "http://localhost:8080",
		SiteTitle:       "Blog",
		PageSize:        DefaultPageSize,
		SitemapPageSize: DefaultSitemapPageSize,
		LogLevel:        "info",
		CacheTTL:        DefaultCacheTTL,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.SiteURL = getEnv("APP_URL", cfg.SiteURL)
	cfg.CMSURL = getEnv("CMS_API_URL", cfg.CMSURL)
	cfg.RevalidateSecret = getEnv("REVALIDATE_SECRET", cfg.RevalidateSecret)
	cfg.SiteTitle = getEnv("SITE_TITLE", cfg.SiteTitle)
	cfg.SiteDescription = getEnv("SITE_DESCRIPTION", cfg.SiteDescription)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.PageSize = getEnvInt("PAGE_SIZE", cfg.PageSize)
	cfg.SitemapPageSize = getEnvInt("SITEMAP_PAGE_SIZE", cfg.SitemapPageSize)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("config: parse CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and normalizes defaults.
func (c *Config) Validate() error {
	if c.CMSURL == "" {
		return ErrMissingCMSURL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.SitemapPageSize <= 0 {
		c.SitemapPageSize = DefaultSitemapPageSize
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	return nil
}

// CacheEnabled reports whether a Redis page cache should be wired up.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
