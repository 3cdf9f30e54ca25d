package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/analysis"
	"cvmatch-backend/internal/contact"
	"cvmatch-backend/internal/fetch"
	"cvmatch-backend/internal/llm"
	"cvmatch-backend/internal/llm/openai"
	"cvmatch-backend/internal/shared/config"
	"cvmatch-backend/internal/shared/server/middleware"
	"cvmatch-backend/internal/shared/server/respond"
	"cvmatch-backend/internal/shared/storage/db"
	"cvmatch-backend/internal/shared/telemetry"
)

const analyzeRateGroup = "ANALYZE"

// NewRouter wires middleware, dependencies and routes into a gin engine.
func NewRouter(cfg config.Config) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			analyzeRateGroup: {Rate: 0.2, Burst: 3},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && strings.HasPrefix(c.FullPath(), "/analyze") {
				return analyzeRateGroup
			}
			return ""
		},
	}))

	client := newLLMClient(cfg)
	fetcher := fetch.New(cfg.FetchTimeout, cfg.PostingTextCap)
	repo := newRepo(cfg)

	svc := analysis.NewService(cfg, client, fetcher, repo)
	analysis.NewHandler(cfg, svc).RegisterRoutes(r)
	contact.NewHandler(cfg).RegisterRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"ok":            true,
			"env":           cfg.Env,
			"llmConfigured": svc.LLMConfigured(),
		})
	})

	return r
}

// Addr returns the listen address for the configured port.
func Addr(cfg config.Config) string {
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

// newLLMClient builds the generation client, or nil when no key is set so
// the server still serves non-LLM endpoints.
func newLLMClient(cfg config.Config) llm.Client {
	if cfg.OpenAIAPIKey == "" {
		telemetry.Warn("llm.disabled", map[string]any{"reason": "OPENAI_API_KEY not set"})
		return nil
	}
	client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.GenerationTimeout)
	if err != nil {
		telemetry.Error("llm.init.failed", map[string]any{"err": err.Error()})
		return nil
	}
	return client
}

// newRepo connects the Postgres history store when DATABASE_URL is set and
// falls back to the in-memory store otherwise.
func newRepo(cfg config.Config) analysis.Repo {
	if cfg.DatabaseURL == "" {
		telemetry.Info("storage.memory", map[string]any{"reason": "DATABASE_URL not set"})
		return analysis.NewMemoryRepo()
	}

	ctx := context.Background()
	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultOptions())
	if err != nil {
		telemetry.Error("storage.connect.failed", map[string]any{"err": err.Error()})
		return analysis.NewMemoryRepo()
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		telemetry.Error("storage.migrate.failed", map[string]any{"err": err.Error()})
		conn.Close()
		return analysis.NewMemoryRepo()
	}
	telemetry.Info("storage.postgres", nil)
	return &analysis.PGRepo{DB: conn}
}
