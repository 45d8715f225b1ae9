package bootstrap

import (
	"context"
	"time"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/adapters/config"
	errnoop "github.com/Verdenroz/buff-ai/internal/adapters/errors/noop"
	"github.com/Verdenroz/buff-ai/internal/adapters/errors/sentry"
	"github.com/Verdenroz/buff-ai/internal/adapters/financequery"
	redisclient "github.com/Verdenroz/buff-ai/internal/adapters/redis"
	"github.com/Verdenroz/buff-ai/internal/adapters/scraper"
	"github.com/Verdenroz/buff-ai/internal/adapters/storage"
	"github.com/Verdenroz/buff-ai/internal/adapters/tavily"
	"github.com/Verdenroz/buff-ai/internal/adapters/telegram"
	"github.com/Verdenroz/buff-ai/internal/adapters/tts"
	"github.com/Verdenroz/buff-ai/internal/agents"
	"github.com/Verdenroz/buff-ai/internal/api"
	"github.com/Verdenroz/buff-ai/internal/api/health"
	"github.com/Verdenroz/buff-ai/internal/domain/post"
	"github.com/Verdenroz/buff-ai/internal/metrics"
	redisrepo "github.com/Verdenroz/buff-ai/internal/repository/redis"
	"github.com/Verdenroz/buff-ai/internal/services/posts"
	"github.com/Verdenroz/buff-ai/internal/tools"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
}

// ========================================
// Phase 2: Infrastructure
// ========================================

// MustInitInfrastructure connects to Redis
func (c *Container) MustInitInfrastructure() {
	var err error

	c.Log.Info("Connecting to Redis...")
	c.Redis, err = redisclient.NewClient(c.Context, c.Config.Redis)
	if err != nil {
		c.Log.Fatalf("failed to connect redis: %v", err)
	}
	c.Log.Infof("Redis connected at %s", c.Config.Redis.Addr())
}

// ========================================
// Phase 3: External Adapters
// ========================================

// MustInitAdapters builds the LLM, data, storage, speech and alert clients
func (c *Container) MustInitAdapters() {
	var err error

	c.Adapters.LLM, err = ai.NewClientFromConfig(c.Context, c.Config.AI, c.Redis.Client())
	if err != nil {
		c.Log.Fatalf("failed to create LLM client: %v", err)
	}
	c.Log.Infof("LLM client ready: provider=%s model=%s", c.Config.AI.Provider, c.Adapters.LLM.Model())

	c.Adapters.MarketData = financequery.NewClient(c.Config.MarketData)
	c.Adapters.Search = tavily.NewClient(c.Config.Search)
	if c.Config.Search.TavilyKey == "" {
		c.Log.Warn("TAVILY_API_KEY not set, web search tools will fail")
	}

	c.Adapters.Storage = provideStorage(c.Context, c.Config.Storage, c.Log)
	c.Adapters.Speech = provideSpeech(c.Config.TTS, c.Log)
	c.Adapters.Scraper = scraper.NewTruthSocial(c.Config.Scraper)
	c.Adapters.Notifier = provideNotifier(c.Config.Telegram, c.Log)
}

// ========================================
// Phase 4: Services
// ========================================

// MustInitServices builds the post store, tools, agents and ingestion pipeline
func (c *Container) MustInitServices() {
	var err error

	c.Services.Posts = post.NewService(redisrepo.NewPostRepository(c.Redis.Client()))

	c.Services.ToolRegistry = tools.NewRegistry()
	tools.RegisterAllTools(c.Services.ToolRegistry, tools.Deps{
		Market: c.Adapters.MarketData,
		Search: c.Adapters.Search,
		Posts:  c.Services.Posts,
		Log:    c.Log,
	})

	c.Services.Agents, err = agents.NewAgents(agents.FactoryDeps{
		LLM:          c.Adapters.LLM,
		ToolRegistry: c.Services.ToolRegistry,
		News:         c.Adapters.MarketData,
		Web:          c.Adapters.Search,
		MaxToolTurns: c.Config.AI.MaxToolTurns,
	})
	if err != nil {
		c.Log.Fatalf("failed to create agents: %v", err)
	}

	deps := posts.Deps{
		Scraper: c.Adapters.Scraper,
		Store:   c.Services.Posts,
		Filter:  posts.NewRelevanceFilter(c.Adapters.LLM, posts.DefaultRetryWait),
		Locker:  c.Redis,
	}
	// Typed nils must not reach the optional interfaces
	if c.Adapters.Speech != nil && c.Adapters.Storage != nil {
		deps.Speech = c.Adapters.Speech
		deps.Audio = c.Adapters.Storage
	}
	if c.Adapters.Notifier != nil {
		deps.Notifier = c.Adapters.Notifier
	}

	c.Services.Ingest, err = posts.NewService(deps, posts.Options{
		AuthorKey: c.Config.Scraper.AuthorKey,
		LockTTL:   c.Config.Scraper.Timeout + 5*time.Minute,
	})
	if err != nil {
		c.Log.Fatalf("failed to create ingestion service: %v", err)
	}

	c.Log.Infof("Services initialized: %d tools", len(c.Services.ToolRegistry.List()))
}

// ========================================
// Phase 5: Background
// ========================================

// MustInitBackground registers workers on a new scheduler
func (c *Container) MustInitBackground() {
	c.Background.WorkerScheduler = provideWorkers(c.Config.Workers, c.Services.Ingest)
}

// ========================================
// Phase 6: Application
// ========================================

// MustInitApplication builds the HTTP server
func (c *Container) MustInitApplication() {
	checks := map[string]health.Check{
		"redis": c.Redis.Health,
	}
	metrics.RegisterStoreCollector(metrics.NewStoreCollector(c.Redis.Client(), c.Config.Scraper.AuthorKey))

	c.Application.HealthHandler = health.New(c.Config.App.Name, c.Config.App.Version, checks, c.Background.WorkerScheduler)

	var audio api.AudioLinker
	if c.Adapters.Storage != nil {
		audio = c.Adapters.Storage
	}

	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		Port:         c.Config.HTTP.Port,
		ServiceName:  c.Config.App.Name,
		Version:      c.Config.App.Version,
		CORSOrigins:  c.Config.HTTP.CORSOrigins,
		ReadTimeout:  c.Config.HTTP.ReadTimeout,
		WriteTimeout: c.Config.HTTP.WriteTimeout,
	}, api.Handlers{
		Chat:   api.NewChatHandler(c.Services.Agents.Supervisor, c.Config.HTTP.CORSOrigins),
		Posts:  api.NewPostsHandler(c.Services.Posts, audio),
		Market: api.NewMarketHandler(c.Services.Agents.Sentiment, c.Adapters.MarketData),
		Health: c.Application.HealthHandler,
	})
}

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// provideStorage returns nil when S3 cannot be configured; audio is then skipped
func provideStorage(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) *storage.S3 {
	s3, err := storage.NewS3(ctx, cfg)
	if err != nil {
		log.Warnf("Blob storage disabled: %v", err)
		return nil
	}
	log.Infof("Blob storage ready: bucket=%s region=%s", cfg.Bucket, cfg.Region)
	return s3
}

func provideSpeech(cfg config.TTSConfig, log *logger.Logger) *tts.ElevenLabs {
	if cfg.APIKey == "" {
		log.Info("ELEVENLABS_API_KEY not set, posts are stored without audio")
		return nil
	}
	return tts.NewElevenLabs(cfg)
}

func provideNotifier(cfg config.TelegramConfig, log *logger.Logger) *telegram.Notifier {
	notifier, err := telegram.NewNotifierFromConfig(cfg)
	if err != nil {
		log.Warnf("Telegram alerts disabled: %v", err)
		return nil
	}
	if notifier == nil {
		log.Info("Telegram alerts disabled")
		return nil
	}
	log.Info("Telegram alerts enabled")
	return notifier
}
