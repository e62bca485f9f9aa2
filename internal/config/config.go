// Load envs from .env
// Load YAML config
// Apply env overrides and defaults
// Validate config

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-job-harvester/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	SitesPath    string   `yaml:"sites_path"`
	Keywords     []string `yaml:"keywords"`
	OutputDir    string   `yaml:"output_dir"`
	FailuresPath string   `yaml:"failures_path"`
	LockPath     string   `yaml:"lock_path"`
	CookiesPath  string   `yaml:"cookies_path"`
	//cron expression used by cmd/server, empty disables scheduled runs
	Schedule   string        `yaml:"schedule"`
	RunTimeout time.Duration `yaml:"run_timeout"`

	Log           logger.Config       `yaml:"log"`
	Browser       BrowserConfig       `yaml:"browser"`
	LLM           LLMConfig           `yaml:"llm"`
	Extractor     ExtractorConfig     `yaml:"extractor"`
	Concurrency   ConcurrencyConfig   `yaml:"concurrency"`
	Salary        SalaryConfig        `yaml:"salary"`
	Filter        FilterConfig        `yaml:"filter"`
	Seen          SeenConfig          `yaml:"seen"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Retry         RetryConfig         `yaml:"retry"`
	Mail          MailConfig          `yaml:"mail"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	Server        ServerConfig        `yaml:"server"`
}

type BrowserConfig struct {
	Headless          *bool         `yaml:"headless"`
	UserAgent         string        `yaml:"user_agent"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	WaitTimeout       time.Duration `yaml:"wait_timeout"`
	SettleInterval    time.Duration `yaml:"settle_interval"`
	ScreenshotDir     string        `yaml:"screenshot_dir"`
}

type LLMConfig struct {
	//openai (any chat-completions compatible endpoint) or anthropic
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type ExtractorConfig struct {
	//http (colly) or browser (playwright) for pages the extractor fetches itself
	Fetcher           string        `yaml:"fetcher"`
	PageTimeout       time.Duration `yaml:"page_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	MaxHTMLChars      int           `yaml:"max_html_chars"`
}

type ConcurrencyConfig struct {
	Sites       int `yaml:"sites"`
	Extractions int `yaml:"extractions"`
}

type SalaryConfig struct {
	YearlyThreshold *float64 `yaml:"yearly_threshold"`
}

type FilterConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Keywords   []string `yaml:"keywords"`
	MaxAgeDays int      `yaml:"max_age_days"`
}

type SeenConfig struct {
	//empty disables the cross-run cache, otherwise file or redis
	Backend   string        `yaml:"backend"`
	Path      string        `yaml:"path"`
	RedisAddr string        `yaml:"redis_addr"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

type DatabaseConfig struct {
	//postgres or sqlite, empty disables persistence
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
	Table  string `yaml:"table"`
}

type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses"`
	Index     string   `yaml:"index"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	To       string `yaml:"to"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// Load reads .env, the YAML file at path (missing file is not an error),
// then env overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.SitesPath, "SITES_PATH")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.LLM.Provider, "LLM_PROVIDER", "PROVIDER")
	setString(&c.LLM.APIKey, "LLM_API_KEY", "OPENAI_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Seen.RedisAddr, "REDIS_ADDR")
	setString(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setString(&c.Mail.Host, "MAIL_SERVER", "MAIL_HOST")
	setString(&c.Mail.Username, "MAIL_USERNAME")
	setString(&c.Mail.Password, "MAIL_PASSWORD")
	setString(&c.Mail.From, "MAIL_FROM")
	setString(&c.Mail.FromName, "MAIL_FROM_NAME")
	setString(&c.Mail.To, "MAIL_TO")
	setString(&c.Server.Port, "PORT")

	if v := os.Getenv("ELASTICSEARCH_URL"); v != "" {
		c.Elasticsearch.Addresses = strings.Split(v, ",")
	}
	if v := os.Getenv("KEYWORDS"); v != "" {
		c.Keywords = strings.Split(v, ",")
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if port := os.Getenv("MAIL_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid MAIL_PORT: %w", err)
		}
		c.Mail.Port = p
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.SitesPath == "" {
		c.SitesPath = "configs/sites.csv"
	}
	if c.OutputDir == "" {
		c.OutputDir = "logs"
	}
	if c.FailuresPath == "" {
		c.FailuresPath = "failed_jobs.jsonl"
	}
	if c.LockPath == "" {
		c.LockPath = ".harvester.lock"
	}
	if c.RunTimeout == 0 {
		c.RunTimeout = 2 * time.Hour
	}

	if c.Browser.Headless == nil {
		headless := true
		c.Browser.Headless = &headless
	}
	if c.Browser.NavigationTimeout == 0 {
		c.Browser.NavigationTimeout = 30 * time.Second
	}
	if c.Browser.WaitTimeout == 0 {
		c.Browser.WaitTimeout = 10 * time.Second
	}
	if c.Browser.SettleInterval == 0 {
		c.Browser.SettleInterval = 2 * time.Second
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.TopP == 0 {
		c.LLM.TopP = 0.9
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2000
	}

	if c.Extractor.Fetcher == "" {
		c.Extractor.Fetcher = "http"
	}
	if c.Extractor.PageTimeout == 0 {
		c.Extractor.PageTimeout = 80 * time.Second
	}
	if c.Extractor.RequestsPerMinute == 0 {
		c.Extractor.RequestsPerMinute = 30
	}
	if c.Extractor.MaxHTMLChars == 0 {
		c.Extractor.MaxHTMLChars = 60000
	}

	if c.Concurrency.Sites <= 0 {
		c.Concurrency.Sites = 1
	}
	if c.Concurrency.Extractions <= 0 {
		c.Concurrency.Extractions = 1
	}

	if c.Salary.YearlyThreshold == nil {
		threshold := 10000.0
		c.Salary.YearlyThreshold = &threshold
	}

	if c.Filter.MaxAgeDays == 0 {
		c.Filter.MaxAgeDays = 15
	}

	if c.Seen.Path == "" {
		c.Seen.Path = ".cache"
	}
	if c.Seen.TTL == 0 {
		c.Seen.TTL = 30 * 24 * time.Hour
	}
	if c.Seen.Prefix == "" {
		c.Seen.Prefix = "harvester:seen"
	}

	if c.Database.Table == "" {
		c.Database.Table = "jobs"
	}
	if c.Elasticsearch.Index == "" {
		c.Elasticsearch.Index = "jobs"
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = 2 * time.Second
	}

	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
}

// Validate checks the fields a run cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("LLM_API_KEY is required"))
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	switch c.Extractor.Fetcher {
	case "http", "browser":
	default:
		errs = append(errs, fmt.Errorf("unknown extractor fetcher %q", c.Extractor.Fetcher))
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.Driver != "" && c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required when a database driver is set"))
	}
	switch c.Seen.Backend {
	case "", "file":
	case "redis":
		if c.Seen.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis seen cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown seen backend %q", c.Seen.Backend))
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set"))
	}
	return errors.Join(errs...)
}

// YearlyThreshold returns the salary heuristic threshold, 0 meaning disabled.
func (c *Config) YearlyThreshold() float64 {
	if c.Salary.YearlyThreshold == nil {
		return 0
	}
	return *c.Salary.YearlyThreshold
}
