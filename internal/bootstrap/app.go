package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"contractreview-backend/internal/agreements"
	"contractreview-backend/internal/analysis"
	"contractreview-backend/internal/assessments"
	"contractreview-backend/internal/audit"
	"contractreview-backend/internal/clauses"
	"contractreview-backend/internal/llm"
	openai "contractreview-backend/internal/llm/openai"
	"contractreview-backend/internal/rules"
	"contractreview-backend/internal/services/health"
	"contractreview-backend/internal/shared/config"
	"contractreview-backend/internal/shared/server"
	"contractreview-backend/internal/shared/storage/db"
	"contractreview-backend/internal/shared/storage/object"
	localstore "contractreview-backend/internal/shared/storage/object/local"
	s3store "contractreview-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	LLM    llm.Client

	AgreementsRepo  agreements.Repo
	RulesRepo       rules.Repo
	ClausesRepo     clauses.Repo
	AssessmentsRepo assessments.Repo
	AuditRepo       audit.Repo

	AgreementsService *agreements.Service
	RulesService      *rules.Service
	Orchestrator      *analysis.Orchestrator
	Health            *health.Service

	AgreementHandler  *agreements.Handler
	RuleHandler       *rules.Handler
	AnalysisHandler   *analysis.Handler
	AssessmentHandler *assessments.Handler
	AuditHandler      *audit.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		LLM:    llmClient,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		Health:            app.Health,
		AgreementHandler:  app.AgreementHandler,
		RuleHandler:       app.RuleHandler,
		AnalysisHandler:   app.AnalysisHandler,
		AssessmentHandler: app.AssessmentHandler,
		AuditHandler:      app.AuditHandler,
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

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return analysis.NewRetryingClient(client, cfg.LLMRetries, cfg.LLMRetryBackoff), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.AgreementsRepo = &agreements.PGRepo{DB: app.DB}
		app.RulesRepo = &rules.PGRepo{DB: app.DB}
		app.ClausesRepo = &clauses.PGRepo{DB: app.DB}
		app.AssessmentsRepo = &assessments.PGRepo{DB: app.DB}
		app.AuditRepo = &audit.PGRepo{DB: app.DB}
	} else {
		app.AgreementsRepo = agreements.NewMemoryRepo()
		app.RulesRepo = rules.NewMemoryRepo()
		app.ClausesRepo = clauses.NewMemoryRepo()
		app.AssessmentsRepo = assessments.NewMemoryRepo()
		app.AuditRepo = audit.NewMemoryRepo()
	}

	app.AgreementsService = &agreements.Service{
		Repo:      app.AgreementsRepo,
		Store:     app.Store,
		Artifacts: []agreements.Cleanup{app.ClausesRepo, app.AssessmentsRepo, app.AuditRepo},
	}
	app.RulesService = &rules.Service{Repo: app.RulesRepo}
	app.Orchestrator = &analysis.Orchestrator{
		Agreements:  app.AgreementsRepo,
		Rules:       app.RulesRepo,
		Clauses:     app.ClausesRepo,
		Assessments: app.AssessmentsRepo,
		Audit:       app.AuditRepo,
		Extractor:   &clauses.Extractor{LLM: app.LLM, Temperature: app.Config.LLMTemperature},
		Evaluator:   &analysis.Evaluator{LLM: app.LLM, Temperature: app.Config.LLMTemperature},
	}
	app.Health = health.NewService(app.DB)

	app.AgreementHandler = agreements.NewHandler(app.AgreementsService)
	app.RuleHandler = rules.NewHandler(app.RulesService)
	app.AnalysisHandler = analysis.NewHandler(app.Orchestrator, app.AssessmentsRepo)
	app.AssessmentHandler = assessments.NewHandler(app.AssessmentsRepo)
	app.AuditHandler = audit.NewHandler(app.AuditRepo)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
