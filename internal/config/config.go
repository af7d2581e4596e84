package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/crawler"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/session"
)

// FileName is the config file looked up by Load
const FileName = "hwenhancer.yaml"

// Config represents the application configuration
type Config struct {
	Crawl   CrawlConfig   `yaml:"crawl"`
	Session SessionConfig `yaml:"session"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
}

type CrawlConfig struct {
	NextSelector string        `yaml:"next_selector"`
	PageDelay    time.Duration `yaml:"page_delay"`
}

type SessionConfig struct {
	Backend string `yaml:"backend"` // memory, file or sqlite
	Dir     string `yaml:"dir"`
	ID      string `yaml:"id"`
}

type HTTPConfig struct {
	Proxy              string        `yaml:"proxy"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		Crawl: CrawlConfig{
			NextSelector: crawler.DefaultNextSelector,
			PageDelay:    crawler.DefaultPageDelay,
		},
		Session: SessionConfig{
			Backend: session.KindFile,
			Dir:     filepath.Join(os.TempDir(), "hwenhancer"),
			ID:      "default",
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration. An explicit path must exist; otherwise the
// usual locations are searched and defaults are used when none has a file.
// A .env file in the working directory and HW_* variables override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = findConfigPath()
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
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

func findConfigPath() string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "hwenhancer", FileName))
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HW_SESSION_BACKEND"); v != "" {
		cfg.Session.Backend = v
	}
	if v := os.Getenv("HW_SESSION_DIR"); v != "" {
		cfg.Session.Dir = v
	}
	if v := os.Getenv("HW_SESSION_ID"); v != "" {
		cfg.Session.ID = v
	}
	if v := os.Getenv("HW_PROXY"); v != "" {
		cfg.HTTP.Proxy = v
	}
	if v := os.Getenv("HW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HW_PAGE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.WithHint(errors.Wrap(err, "invalid HW_PAGE_DELAY"), "use a Go duration such as 1500ms")
		}
		cfg.Crawl.PageDelay = d
	}
	return nil
}

// Validate checks the configuration for values the program cannot run with
func (c *Config) Validate() error {
	switch strings.ToLower(c.Session.Backend) {
	case session.KindMemory, session.KindFile, session.KindSQLite:
		c.Session.Backend = strings.ToLower(c.Session.Backend)
	default:
		return errors.WithHint(errors.Newf("unknown session backend %q", c.Session.Backend),
			"use one of: memory, file, sqlite")
	}
	if c.Crawl.PageDelay < 0 {
		return errors.Newf("page_delay must not be negative, got %s", c.Crawl.PageDelay)
	}
	if strings.TrimSpace(c.Crawl.NextSelector) == "" {
		c.Crawl.NextSelector = crawler.DefaultNextSelector
	}
	if c.Session.ID == "" {
		c.Session.ID = "default"
	}
	return nil
}
