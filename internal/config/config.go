package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStart    = "2007-03-26"
	DefaultOutput   = "vixcentral_data.csv"
	DefaultProgress = 40
	DefaultCron     = "0 30 22 * * 1-5"

	SourceVixCentral = "vixcentral"
	SourceMock       = "mock"

	dateLayout = "2006-01-02"
)

// Config holds all application configuration.
type Config struct {
	Source struct {
		Kind              string        `yaml:"kind"`
		BaseURL           string        `yaml:"base_url"`
		RequestTimeout    time.Duration `yaml:"request_timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		CloudflareBypass  bool          `yaml:"cloudflare_bypass"`
	} `yaml:"source"`
	Pull struct {
		Start       string `yaml:"start"`
		Stop        string `yaml:"stop"` // empty means today
		Output      string `yaml:"output"`
		Progress    int    `yaml:"progress"`
		FlushOnHalt bool   `yaml:"flush_on_halt"`
	} `yaml:"pull"`
	Schedule struct {
		Cron      string `yaml:"cron"`
		StateFile string `yaml:"state_file"` // empty disables persistence
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Logging Logging `yaml:"logging"`
	Proxy   string  `yaml:"proxy"`
}

// Logging configures log level and the optional rotated log file.
type Logging struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("VIXPULL_BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv("VIXPULL_SOURCE"); v != "" {
		c.Source.Kind = v
	}
	if v := os.Getenv("VIXPULL_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("VIXPULL_REQUEST_TIMEOUT: %w", err)
		}
		c.Source.RequestTimeout = d
	}
	if v := os.Getenv("VIXPULL_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("VIXPULL_RPS: %w", err)
		}
		c.Source.RequestsPerSecond = rps
	}
	if v := os.Getenv("VIXPULL_OUTPUT"); v != "" {
		c.Pull.Output = v
	}
	if v := os.Getenv("CRON_PULL"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		c.Schedule.StateFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Source.Kind == "" {
		c.Source.Kind = SourceVixCentral
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = "http://vixcentral.com"
	}
	if c.Pull.Start == "" {
		c.Pull.Start = DefaultStart
	}
	if c.Pull.Output == "" {
		c.Pull.Output = DefaultOutput
	}
	if c.Pull.Progress == 0 {
		c.Pull.Progress = DefaultProgress
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultCron
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceVixCentral, SourceMock:
	default:
		return fmt.Errorf("source.kind must be %q or %q, got %q", SourceVixCentral, SourceMock, c.Source.Kind)
	}
	if c.Source.RequestTimeout < 0 {
		return fmt.Errorf("source.request_timeout must not be negative")
	}
	if c.Source.RequestsPerSecond < 0 {
		return fmt.Errorf("source.requests_per_second must not be negative")
	}
	if c.Pull.Progress <= 0 {
		return fmt.Errorf("pull.progress must be positive")
	}
	if _, err := time.Parse(dateLayout, c.Pull.Start); err != nil {
		return fmt.Errorf("pull.start: %w", err)
	}
	if c.Pull.Stop != "" {
		if _, err := time.Parse(dateLayout, c.Pull.Stop); err != nil {
			return fmt.Errorf("pull.stop: %w", err)
		}
	}
	if c.Pull.Output == "" {
		return fmt.Errorf("pull.output is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// Range parses the pull window. An empty stop resolves to today's date in now's location.
func (c *Config) Range(now time.Time) (start, stop time.Time, err error) {
	start, err = time.Parse(dateLayout, c.Pull.Start)
	if err != nil {
		return start, stop, fmt.Errorf("parse start: %w", err)
	}
	stopStr := c.Pull.Stop
	if stopStr == "" {
		stopStr = now.Format(dateLayout)
	}
	stop, err = time.Parse(dateLayout, stopStr)
	if err != nil {
		return start, stop, fmt.Errorf("parse stop: %w", err)
	}
	return start, stop, nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
