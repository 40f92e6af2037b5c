package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"profile-report/internal/artifacts"
	"profile-report/internal/llm"
	openai "profile-report/internal/llm/openai"
	"profile-report/internal/reports"
	"profile-report/internal/services/health"
	"profile-report/internal/shared/config"
	"profile-report/internal/shared/server"
	"profile-report/internal/shared/server/middleware"
	"profile-report/internal/shared/storage/db"
	"profile-report/internal/shared/telemetry"
	"profile-report/internal/templates"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	LLM              llm.Completer
	ArtifactsRepo    artifacts.Repo
	TemplatesRepo    templates.Repo
	ReportsRepo      reports.Repo
	TemplatesService *templates.Service
	ReportsService   *reports.Service
	ReportHandler    *reports.Handler
	Health           *health.Service
}

// Options allows callers to override dependencies, mainly for tests.
type Options struct {
	// LLM replaces the client built from configuration.
	LLM llm.Completer
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config, opts ...Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil && cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	llmClient := o.LLM
	if llmClient == nil {
		llmClient, err = buildLLM(cfg)
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		LLM:    llmClient,
		Health: health.NewService(sqlDB),
	}
	buildServices(app)
	if mem, ok := app.ArtifactsRepo.(*artifacts.MemoryRepo); ok && cfg.DevSeedUser != "" {
		if err := seedMemory(ctx, cfg.DevSeedUser, mem, app.TemplatesService, time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		Health:        app.Health,
		ReportHandler: app.ReportHandler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildLLM(cfg config.Config) (llm.Completer, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"reason": "OPENAI_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAITimeout)
}

func buildServices(app *App) {
	if app.DB != nil {
		app.ArtifactsRepo = &artifacts.PGRepo{DB: app.DB}
		app.TemplatesRepo = &templates.PGRepo{DB: app.DB}
		app.ReportsRepo = &reports.PGRepo{DB: app.DB}
	} else {
		app.ArtifactsRepo = artifacts.NewMemoryRepo()
		app.TemplatesRepo = templates.NewMemoryRepo()
		app.ReportsRepo = reports.NewMemoryRepo()
	}

	app.TemplatesService = templates.NewService(app.TemplatesRepo)
	app.ReportsService = &reports.Service{
		Artifacts: app.ArtifactsRepo,
		Templates: app.TemplatesService,
		Reports:   app.ReportsRepo,
		Generator: reports.NewGenerator(app.LLM, app.Config.ReportModel),
		Sessions:  reports.NewSessionStore(),
		Now:       time.Now,
	}

	rule := middleware.PerMinute(app.Config.GenerateRatePerMinute)
	rule.Scope = "report.generate"
	generateGuard := middleware.RateLimit(middleware.NewRateLimiter(nil), rule)
	app.ReportHandler = reports.NewHandler(app.ReportsService, generateGuard)
}
