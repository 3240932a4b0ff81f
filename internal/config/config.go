package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "feeds.yaml"
	DefaultPromptFile = "prompt.txt"
	DefaultOutputDir  = "output"
	DefaultCacheFile  = "cache.json"

	DefaultMaxPerFeed   = 5
	DefaultMaxSummarize = 20
	DefaultFilterHours  = 48
	DefaultModel        = "llama3.2"
	DefaultOllamaHost   = "http://localhost:11434"

	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
	DefaultUserEnv  = "DAILYBRIEF_SMTP_USER"
	DefaultPassEnv  = "DAILYBRIEF_SMTP_PASS"
)

type Config struct {
	Settings Settings `yaml:"settings"`
	Feeds    []Feed   `yaml:"feeds"`
}

type Settings struct {
	MaxArticlesPerFeed     int       `yaml:"max_articles_per_feed"`
	MaxArticlesToSummarize int       `yaml:"max_articles_to_summarize"`
	FilterHours            int       `yaml:"filter_hours"`
	SummaryModel           string    `yaml:"summary_model"`
	OutputDir              string    `yaml:"output_dir"`
	OllamaHost             string    `yaml:"ollama_host"`
	PromptFile             string    `yaml:"prompt_file"`
	HistoryFile            string    `yaml:"history_file"`
	Keywords               []string  `yaml:"keywords"`
	VaultSync              VaultSync `yaml:"vault_sync"`
	Email                  Email     `yaml:"email"`
}

type VaultSync struct {
	Enabled   bool   `yaml:"enabled"`
	VaultPath string `yaml:"vault_path"`
}

type Email struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	To       string `yaml:"to"`
	UserEnv  string `yaml:"user_env"`
	PassEnv  string `yaml:"pass_env"`

	// Resolved from env vars at load time.
	User string `yaml:"-"`
	Pass string `yaml:"-"`
}

// Feed is one configured source. Days limits fetching to the named
// weekdays; an absent list means every day.
type Feed struct {
	Name     string   `yaml:"name"`
	URL      string   `yaml:"url"`
	Category string   `yaml:"category"`
	Days     []string `yaml:"days"`
}

// DefaultDir returns the config directory used when --config is not
// given: a project-local config/ if one exists, else the XDG location.
func DefaultDir() string {
	local := "config"
	if _, err := os.Stat(filepath.Join(local, DefaultConfigFile)); err == nil {
		return local
	}
	return filepath.Join(xdg.ConfigHome, "dailybrief")
}

// Load reads feeds.yaml from dir, applies defaults, resolves env vars, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg, dir)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// CachePath returns the article cache location inside the output dir.
func (c *Config) CachePath() string {
	return filepath.Join(c.Settings.OutputDir, DefaultCacheFile)
}

func applyDefaults(cfg *Config, dir string) {
	s := &cfg.Settings
	if s.MaxArticlesPerFeed == 0 {
		s.MaxArticlesPerFeed = DefaultMaxPerFeed
	}
	if s.MaxArticlesToSummarize == 0 {
		s.MaxArticlesToSummarize = DefaultMaxSummarize
	}
	if s.FilterHours == 0 {
		s.FilterHours = DefaultFilterHours
	}
	if s.SummaryModel == "" {
		s.SummaryModel = DefaultModel
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	if s.OllamaHost == "" {
		s.OllamaHost = DefaultOllamaHost
	}
	if s.PromptFile == "" {
		s.PromptFile = filepath.Join(dir, DefaultPromptFile)
	}
	if s.HistoryFile == "" {
		s.HistoryFile = filepath.Join(xdg.DataHome, "dailybrief", "history.db")
	}
	if s.Email.SMTPHost == "" {
		s.Email.SMTPHost = DefaultSMTPHost
	}
	if s.Email.SMTPPort == 0 {
		s.Email.SMTPPort = DefaultSMTPPort
	}
	if s.Email.UserEnv == "" {
		s.Email.UserEnv = DefaultUserEnv
	}
	if s.Email.PassEnv == "" {
		s.Email.PassEnv = DefaultPassEnv
	}
	for i := range cfg.Feeds {
		if cfg.Feeds[i].Category == "" {
			cfg.Feeds[i].Category = "General"
		}
	}
}

func resolveEnv(cfg *Config) {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.Settings.OllamaHost = host
	}
	if cfg.Settings.Email.UserEnv != "" {
		cfg.Settings.Email.User = os.Getenv(cfg.Settings.Email.UserEnv)
	}
	if cfg.Settings.Email.PassEnv != "" {
		cfg.Settings.Email.Pass = os.Getenv(cfg.Settings.Email.PassEnv)
	}
}

var weekdayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func validate(cfg *Config) error {
	s := cfg.Settings
	if s.MaxArticlesPerFeed < 0 {
		return fmt.Errorf("settings.max_articles_per_feed: must be positive, got %d", s.MaxArticlesPerFeed)
	}
	if s.MaxArticlesToSummarize < 0 {
		return fmt.Errorf("settings.max_articles_to_summarize: must be positive, got %d", s.MaxArticlesToSummarize)
	}
	if s.FilterHours < 0 {
		return fmt.Errorf("settings.filter_hours: must be positive, got %d", s.FilterHours)
	}
	if !strings.HasPrefix(s.OllamaHost, "http://") && !strings.HasPrefix(s.OllamaHost, "https://") {
		return fmt.Errorf("settings.ollama_host: %q must start with http:// or https://", s.OllamaHost)
	}
	if s.VaultSync.Enabled && strings.TrimSpace(s.VaultSync.VaultPath) == "" {
		return errors.New("settings.vault_sync: vault_path is required when enabled")
	}
	if s.Email.Enabled && strings.TrimSpace(s.Email.To) == "" {
		return errors.New("settings.email: to is required when enabled")
	}

	if len(cfg.Feeds) == 0 {
		return errors.New("feeds: at least one feed must be configured")
	}
	for i, f := range cfg.Feeds {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("feeds[%d]: name is required", i)
		}
		if !strings.HasPrefix(f.URL, "http://") && !strings.HasPrefix(f.URL, "https://") {
			return fmt.Errorf("feeds[%d] (%s): url must start with http:// or https://", i, f.Name)
		}
		for _, day := range f.Days {
			if !weekdayNames[strings.ToLower(day)] {
				return fmt.Errorf("feeds[%d] (%s): unknown day %q", i, f.Name, day)
			}
		}
	}

	return nil
}
