package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dispute-backend/internal/analysis"
	"dispute-backend/internal/facts"
	"dispute-backend/internal/llm"
	openai "dispute-backend/internal/llm/openai"
	"dispute-backend/internal/queue"
	"dispute-backend/internal/services/health"
	"dispute-backend/internal/shared/config"
	"dispute-backend/internal/shared/server"
	"dispute-backend/internal/shared/storage/db"
)

// App holds shared dependencies for the API and worker processes.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Queue  queue.Client

	FactsRepo    facts.Repo
	AnalysisRepo analysis.Repo

	AnalysisService *analysis.Service
	AnalysisHandler *analysis.Handler
	FactsHandler    *facts.Handler
	Health          *health.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Queue:  queueClient,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
		FactsHandler:    app.FactsHandler,
		Health:          app.Health,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("DA_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.FactsRepo = &facts.PGRepo{DB: app.DB}
		app.AnalysisRepo = &analysis.PGRepo{DB: app.DB}
	} else {
		app.FactsRepo = facts.NewMemoryRepo()
		app.AnalysisRepo = analysis.NewMemoryRepo()
	}

	provider, err := buildProvider(app.Config)
	if err != nil {
		return err
	}

	app.AnalysisService = analysis.NewService(
		app.AnalysisRepo,
		app.FactsRepo,
		provider,
		analysis.WithModels(app.Config.LLMModel, app.Config.ScoringModel),
		analysis.WithFallbackPolicy(
			app.Config.FallbackSupportRate,
			app.Config.FallbackConfidence,
			app.Config.ContradictionPenaltyPer,
			app.Config.MaxContradictionPenalty,
		),
	)

	app.AnalysisHandler = analysis.NewHandler(app.AnalysisService, enqueueFunc(app))
	app.FactsHandler = facts.NewHandler(app.FactsRepo)
	app.Health = health.NewService(app.DB)
	return nil
}

// buildProvider selects the inference backend. An unset or unknown
// provider yields nil, which runs the whole pipeline on heuristics.
func buildProvider(cfg config.Config) (llm.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "openai":
		apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		if apiKey == "" {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: OPENAI_API_KEY empty; analysis runs on heuristic fallbacks")
				return nil, nil
			}
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		return openai.NewClient(apiKey, cfg.LLMModel, os.Getenv("OPENAI_BASE_URL"))
	case "none", "":
		return nil, nil
	default:
		return llm.Placeholder{}, nil
	}
}

// enqueueFunc routes new jobs to SQS when configured; otherwise nil so
// the handler processes jobs inline.
func enqueueFunc(app *App) func(c *gin.Context, job analysis.Job) error {
	if app.Queue == nil {
		return nil
	}
	return func(c *gin.Context, job analysis.Job) error {
		return app.Queue.Send(c.Request.Context(), queue.Message{
			CaseID:     job.CaseID,
			JobID:      job.ID,
			RequestID:  c.GetString("requestId"),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		})
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
