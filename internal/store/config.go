package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/types"
)

type Config struct {
	Companies []types.Company `yaml:"companies" validate:"required,min=1,dive"`

	Sentiment struct {
		PositiveThreshold float64 `yaml:"positive_threshold" default:"0.1"`
		NegativeThreshold float64 `yaml:"negative_threshold" default:"-0.05"`
		FlatBandPct       float64 `yaml:"flat_band_pct" validate:"min=0"`
	} `yaml:"sentiment"`

	Market struct {
		QuoteProvider string `yaml:"quote_provider" default:"FINNHUB" validate:"oneof=FINNHUB KITE"`
		NewsProvider  string `yaml:"news_provider" default:"FINNHUB" validate:"oneof=FINNHUB SCRAPE"`
		Finnhub       struct {
			APIKey            string `yaml:"api_key"`
			BaseURL           string `yaml:"base_url" default:"https://finnhub.io/api/v1" validate:"url"`
			LookbackDays      int    `yaml:"lookback_days" default:"7" validate:"min=1"`
			RequestsPerMinute int    `yaml:"requests_per_minute" default:"60" validate:"min=0"`
			TimeoutSeconds    int    `yaml:"timeout_seconds" default:"30" validate:"min=1"`
		} `yaml:"finnhub"`
		Kite struct {
			APIKey      string `yaml:"api_key"`
			AccessToken string `yaml:"access_token"`
			Exchange    string `yaml:"exchange" default:"NSE"`
			BaseURL     string `yaml:"base_url"`
		} `yaml:"kite"`
		Scraper struct {
			BaseURL   string `yaml:"base_url" default:"https://news.google.com"`
			MaxItems  int    `yaml:"max_items" default:"10" validate:"min=1"`
			UserAgent string `yaml:"user_agent"`
		} `yaml:"scraper"`
	} `yaml:"market"`

	Collector struct {
		MaxInFlight int `yaml:"max_in_flight" validate:"min=0"`
	} `yaml:"collector"`

	LLM struct {
		Provider         string  `yaml:"provider" default:"GEMINI" validate:"oneof=GEMINI OPENAI CLAUDE NOOP"`
		Model            string  `yaml:"model"`
		APIKey           string  `yaml:"api_key"`
		BaseURL          string  `yaml:"base_url"`
		MaxTokens        int     `yaml:"max_tokens" default:"1024" validate:"min=1"`
		Temperature      float32 `yaml:"temperature" validate:"min=0,max=2"`
		TimeoutSeconds   int     `yaml:"timeout_seconds" default:"60" validate:"min=1"`
		SummaryHeadlines int     `yaml:"summary_headlines" default:"5" validate:"min=1"`
		AnalystFocus     string  `yaml:"analyst_focus" default:"quantum computing"`
	} `yaml:"llm"`

	Agent struct {
		RecommendWorkers int `yaml:"recommend_workers" default:"1" validate:"min=1"`
	} `yaml:"agent"`

	Memory struct {
		Backend string `yaml:"backend" default:"file" validate:"oneof=file redis"`
		File    string `yaml:"file" default:"agent_memory.json"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db" validate:"min=0"`
			Key      string `yaml:"key" default:"agent_memory"`
		} `yaml:"redis"`
	} `yaml:"memory"`

	DecisionLog struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir" default:"logs/decisions"`
		RetentionDays int    `yaml:"retention_days" default:"7" validate:"min=0"`
	} `yaml:"decision_log"`

	Metrics struct {
		Enabled      bool   `yaml:"enabled"`
		TextfilePath string `yaml:"textfile_path" default:"agent_metrics.prom"`
	} `yaml:"metrics"`

	Publish struct {
		Enabled             bool     `yaml:"enabled"`
		Brokers             []string `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic               string   `yaml:"topic" default:"investment-recommendations"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds" default:"10" validate:"min=1"`
	} `yaml:"publish"`
}

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[string]string{
	"GEMINI": "gemini-2.0-flash",
	"OPENAI": "gpt-4o-mini",
	"CLAUDE": "claude-3-5-haiku-latest",
	"NOOP":   "noop",
}

// apiKeyEnv maps each provider to the environment variable holding its key.
var apiKeyEnv = map[string]string{
	"GEMINI": "GEMINI_API_KEY",
	"OPENAI": "OPENAI_API_KEY",
	"CLAUDE": "CLAUDE_API_KEY",
}

// DefaultCompanies is the tracked universe used when the config lists none.
func DefaultCompanies() []types.Company {
	return []types.Company{
		{Symbol: "IBM", Name: "IBM", Sector: "Tech, diversified", Notes: "Superconducting qubits, IBM Quantum Experience"},
		{Symbol: "IONQ", Name: "IonQ", Sector: "Quantum Computing (Trapped-ion)", Notes: "Pure-play, high fidelity"},
		{Symbol: "QBTS", Name: "D-Wave Quantum Inc.", Sector: "Quantum Computing (Annealing)", Notes: "Optimization problems"},
		{Symbol: "RGTI", Name: "Rigetti Computing", Sector: "Quantum Computing (Superconducting)", Notes: "Hybrid systems"},
		{Symbol: "GOOGL", Name: "Alphabet Inc. (Google)", Sector: "Tech, diversified", Notes: "Quantum AI, Sycamore processor"},
		{Symbol: "MSFT", Name: "Microsoft Corp.", Sector: "Tech, diversified", Notes: "Azure Quantum, topological qubits research"},
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed '%s' check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	seen := make(map[string]bool, len(c.Companies))
	for _, co := range c.Companies {
		if seen[co.Symbol] {
			return fmt.Errorf("duplicate company symbol '%s'", co.Symbol)
		}
		seen[co.Symbol] = true
	}

	if c.Sentiment.NegativeThreshold >= c.Sentiment.PositiveThreshold {
		return fmt.Errorf("sentiment.negative_threshold (%.2f) must be below positive_threshold (%.2f)",
			c.Sentiment.NegativeThreshold, c.Sentiment.PositiveThreshold)
	}
	return nil
}

// LoadConfig reads path, applies environment overrides and defaults, then
// validates. A missing file is not an error: the built-in defaults are used.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn(context.Background(), "Config file not found, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	return finish(&c)
}

// Default returns the built-in configuration with environment overrides.
func Default() (*Config, error) {
	return finish(&Config{})
}

func finish(c *Config) (*Config, error) {
	c.applyEnv()

	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Companies) == 0 {
		c.Companies = DefaultCompanies()
	}
	for i := range c.Companies {
		c.Companies[i].Symbol = strings.ToUpper(strings.TrimSpace(c.Companies[i].Symbol))
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModels[c.LLM.Provider]
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Market.Finnhub.APIKey = v
	}
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		c.Market.Kite.APIKey = v
	}
	if v := os.Getenv("KITE_ACCESS_TOKEN"); v != "" {
		c.Market.Kite.AccessToken = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToUpper(v)
	}
	provider := c.LLM.Provider
	if provider == "" {
		provider = "GEMINI"
	}
	if env, ok := apiKeyEnv[provider]; ok && c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(env)
	}
	if v := os.Getenv("AGENT_MEMORY_FILE"); v != "" {
		c.Memory.File = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Memory.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Publish.Brokers = strings.Split(v, ",")
	}
}

// Symbols returns the tracked symbols in configured order.
func (c *Config) Symbols() []string {
	out := make([]string, len(c.Companies))
	for i, co := range c.Companies {
		out[i] = co.Symbol
	}
	return out
}

func (c *Config) FinnhubTimeout() time.Duration {
	return time.Duration(c.Market.Finnhub.TimeoutSeconds) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) PublishTimeout() time.Duration {
	return time.Duration(c.Publish.WriteTimeoutSeconds) * time.Second
}
