package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"llm-investment-agent/internal/advisor"
	"llm-investment-agent/internal/advisor/advisorobs"
	"llm-investment-agent/internal/agent"
	"llm-investment-agent/internal/analyzer"
	"llm-investment-agent/internal/collector"
	"llm-investment-agent/internal/decisionlog"
	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/llm"
	"llm-investment-agent/internal/llm/claude"
	"llm-investment-agent/internal/llm/gemini"
	"llm-investment-agent/internal/llm/llmobs"
	"llm-investment-agent/internal/llm/noop"
	"llm-investment-agent/internal/llm/openai"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/marketdata"
	"llm-investment-agent/internal/marketdata/finnhub"
	"llm-investment-agent/internal/marketdata/kite"
	"llm-investment-agent/internal/marketdata/marketobs"
	"llm-investment-agent/internal/memory"
	"llm-investment-agent/internal/metrics"
	"llm-investment-agent/internal/news"
	"llm-investment-agent/internal/publish"
	"llm-investment-agent/internal/store"
	"llm-investment-agent/internal/trace"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// dependencies holds everything a cycle needs plus what must be released
// after it.
type dependencies struct {
	agent     *agent.Agent
	journal   *decisionlog.Journal
	metrics   *metrics.Recorder
	publisher interfaces.Publisher
	closers   []func() error
	cfg       *store.Config
}

func (d *dependencies) close(ctx context.Context) {
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			logger.Warn(ctx, "Failed to close publisher", "error", err.Error())
		}
	}
	for _, c := range d.closers {
		_ = c()
	}
}

// exportMetrics writes the metrics textfile when metrics are enabled
func (d *dependencies) exportMetrics(ctx context.Context) {
	if d.metrics == nil {
		return
	}
	path := d.cfg.Metrics.TextfilePath
	if err := d.metrics.WriteTextfile(path); err != nil {
		logger.Warn(ctx, "Failed to export metrics", "path", path, "error", err.Error())
		return
	}
	logger.Debug(ctx, "Metrics exported", "path", path)
}

// initializeAgent wires every component of the cycle
func initializeAgent(ctx context.Context, cfg *store.Config) (*dependencies, error) {
	deps := &dependencies{cfg: cfg}
	if cfg.Metrics.Enabled {
		deps.metrics = metrics.New()
	}

	src := initializeMarketData(ctx, cfg)
	col := collector.New(src,
		collector.WithMaxInFlight(cfg.Collector.MaxInFlight),
		collector.WithMetrics(deps.metrics),
	)

	an := analyzer.New(analyzer.Config{
		PositiveThreshold: cfg.Sentiment.PositiveThreshold,
		NegativeThreshold: cfg.Sentiment.NegativeThreshold,
		FlatBandPct:       cfg.Sentiment.FlatBandPct,
	})

	gen := initializeGenerator(ctx, cfg, deps.metrics)
	adv := advisorobs.Wrap(advisor.New(gen, advisor.Config{
		SummaryHeadlines: cfg.LLM.SummaryHeadlines,
		AnalystFocus:     cfg.LLM.AnalystFocus,
	}), deps.metrics)

	mem, err := initializeMemory(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	opts := []agent.Option{
		agent.WithMetrics(deps.metrics),
		agent.WithRecommendWorkers(cfg.Agent.RecommendWorkers),
	}

	if cfg.DecisionLog.Enabled {
		deps.journal = decisionlog.New(cfg.DecisionLog.Dir)
		opts = append(opts, agent.WithJournal(deps.journal))
	}

	if cfg.Publish.Enabled {
		pub, err := publish.NewKafka(publish.Config{
			Brokers:      cfg.Publish.Brokers,
			Topic:        cfg.Publish.Topic,
			WriteTimeout: cfg.PublishTimeout(),
		}, deps.metrics)
		if err != nil {
			deps.close(ctx)
			return nil, fmt.Errorf("initialize publisher: %w", err)
		}
		deps.publisher = pub
		opts = append(opts, agent.WithPublisher(pub))
		logger.Info(ctx, "Publishing recommendations to Kafka", "topic", cfg.Publish.Topic, "brokers", cfg.Publish.Brokers)
	}

	deps.agent = agent.New(cfg.Companies, col, an, adv, mem, opts...)
	return deps, nil
}

// initializeMarketData builds the quote, news and sentiment sources with observability
func initializeMarketData(ctx context.Context, cfg *store.Config) interfaces.MarketData {
	fh := finnhub.New(finnhub.Config{
		APIKey:            cfg.Market.Finnhub.APIKey,
		BaseURL:           cfg.Market.Finnhub.BaseURL,
		LookbackDays:      cfg.Market.Finnhub.LookbackDays,
		RequestsPerMinute: cfg.Market.Finnhub.RequestsPerMinute,
		Timeout:           cfg.FinnhubTimeout(),
	})
	if cfg.Market.Finnhub.APIKey == "" {
		logger.Warn(ctx, "FINNHUB_API_KEY not set - Finnhub lookups will fail and yield empty data")
	}

	src := marketdata.Sources{Quotes: fh, News: fh, Sentiment: fh}

	if cfg.Market.QuoteProvider == "KITE" {
		src.Quotes = kite.New(kite.Config{
			APIKey:      cfg.Market.Kite.APIKey,
			AccessToken: cfg.Market.Kite.AccessToken,
			Exchange:    cfg.Market.Kite.Exchange,
			BaseURL:     cfg.Market.Kite.BaseURL,
			Timeout:     cfg.FinnhubTimeout(),
		})
		logger.Info(ctx, "Using Kite Connect quotes", "exchange", cfg.Market.Kite.Exchange)
	}

	if cfg.Market.NewsProvider == "SCRAPE" {
		names := make(map[string]string, len(cfg.Companies))
		for _, c := range cfg.Companies {
			names[c.Symbol] = c.Name
		}
		src.News = news.NewScraper(news.ScraperConfig{
			BaseURL:   cfg.Market.Scraper.BaseURL,
			MaxItems:  cfg.Market.Scraper.MaxItems,
			Timeout:   cfg.FinnhubTimeout(),
			UserAgent: cfg.Market.Scraper.UserAgent,
		}, names)
		logger.Info(ctx, "Using scraped news", "base_url", cfg.Market.Scraper.BaseURL)
	}

	// Wrap with observability middleware
	return marketobs.Wrap(src)
}

// initializeGenerator initializes the language model client with observability
func initializeGenerator(ctx context.Context, cfg *store.Config, m *metrics.Recorder) interfaces.Generator {
	lc := llm.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLMTimeout(),
	}

	var (
		gen interfaces.Generator
		err error
	)
	provider := cfg.LLM.Provider

	switch provider {
	case "GEMINI":
		gen, err = gemini.New(lc)
	case "OPENAI":
		gen, err = openai.New(lc)
	case "CLAUDE":
		gen, err = claude.New(lc)
	default:
		gen = noop.New()
	}

	if err != nil {
		logger.Warn(ctx, "LLM provider unavailable - using Noop generator (always HOLD)", "provider", provider, "error", err.Error())
		gen, provider = noop.New(), "NOOP"
	} else {
		logger.Info(ctx, "Using LLM provider", "provider", provider, "model", cfg.LLM.Model)
	}

	// Wrap with observability middleware
	return llmobs.Wrap(gen, provider, m)
}

// initializeMemory opens the configured memory backend
func initializeMemory(ctx context.Context, cfg *store.Config, deps *dependencies) (*memory.Store, error) {
	switch cfg.Memory.Backend {
	case "redis":
		backend, err := memory.NewRedisBackend(ctx, memory.RedisConfig{
			Addr:     cfg.Memory.Redis.Addr,
			Password: cfg.Memory.Redis.Password,
			DB:       cfg.Memory.Redis.DB,
			Key:      cfg.Memory.Redis.Key,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize memory: %w", err)
		}
		if deps != nil {
			deps.closers = append(deps.closers, backend.Close)
		}
		logger.Info(ctx, "Using redis memory", "addr", cfg.Memory.Redis.Addr, "key", cfg.Memory.Redis.Key)
		return memory.Open(ctx, backend), nil
	default:
		backend := memory.NewFileBackend(cfg.Memory.File)
		logger.Debug(ctx, "Using file memory", "file", backend.Path())
		return memory.Open(ctx, backend), nil
	}
}

// openMemory loads config and opens the memory store for the memory
// subcommands. The returned release func closes the backend.
func openMemory(parent context.Context) (context.Context, *memory.Store, func(), error) {
	if err := initializeSystem(); err != nil {
		return nil, nil, nil, err
	}
	ctx := parent
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	deps := &dependencies{cfg: cfg}
	mem, err := initializeMemory(ctx, cfg, deps)
	if err != nil {
		return nil, nil, nil, err
	}
	return ctx, mem, func() { deps.close(ctx) }, nil
}

// compressOldLogs compresses old decision log files if retention is configured
func compressOldLogs(ctx context.Context, cfg *store.Config, j *decisionlog.Journal) {
	if j == nil || cfg.DecisionLog.RetentionDays <= 0 {
		return
	}
	n, err := j.CompressOlder(cfg.DecisionLog.RetentionDays)
	if err != nil {
		logger.Warn(ctx, "Failed to compress old decision logs", "error", err.Error())
		return
	}
	if n > 0 {
		logger.Info(ctx, "Compressed old decision logs", "files", n)
	}
}
