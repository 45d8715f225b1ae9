package bootstrap

import (
	"context"
	"sync"

	"github.com/Verdenroz/buff-ai/internal/adapters/ai"
	"github.com/Verdenroz/buff-ai/internal/adapters/config"
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
	"github.com/Verdenroz/buff-ai/internal/services/posts"
	"github.com/Verdenroz/buff-ai/internal/tools"
	"github.com/Verdenroz/buff-ai/internal/workers"
	"github.com/Verdenroz/buff-ai/pkg/errors"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// Container holds all application dependencies and their lifecycle.
// Components are organized in initialization order.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	Redis *redisclient.Client

	Adapters    *Adapters
	Services    *Services
	Application *Application
	Background  *Background

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Adapters groups all external clients. Storage, Speech and Notifier are
// nil when not configured.
type Adapters struct {
	LLM        *ai.Client
	MarketData *financequery.Client
	Search     *tavily.Client
	Storage    *storage.S3
	Speech     *tts.ElevenLabs
	Scraper    *scraper.TruthSocial
	Notifier   *telegram.Notifier
}

// Services groups domain and application services
type Services struct {
	Posts        *post.Service
	Ingest       *posts.Service
	ToolRegistry *tools.Registry
	Agents       *agents.Agents
}

// Application groups the HTTP surface
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
}

// Background groups background processing components
type Background struct {
	WorkerScheduler *workers.Scheduler
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Adapters:    &Adapters{},
		Services:    &Services{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInitCore initializes everything the ingestion command needs.
// Panics on any initialization error (fail-fast at startup).
func (c *Container) MustInitCore() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitAdapters()
	c.MustInitServices()
}

// MustInit initializes all components for the serve command
func (c *Container) MustInit() {
	c.MustInitCore()
	c.MustInitBackground()
	c.MustInitApplication()
}

// Start launches the HTTP server and the worker scheduler
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // fatal HTTP error triggers shutdown
		}
	}()

	c.Log.Info("All systems operational")
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")
	c.Cancel()

	err := c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Background.WorkerScheduler,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
	if err != nil {
		c.Log.Warnf("Shutdown finished with errors: %v", err)
	}
}
