package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/coastlineai/sentinel/cmd/mainconfig"
	appconfig "github.com/coastlineai/sentinel/internal/config"
	"github.com/coastlineai/sentinel/internal/audit"
	"github.com/coastlineai/sentinel/internal/httpapi"
	"github.com/coastlineai/sentinel/internal/llm"
	"github.com/coastlineai/sentinel/internal/observability/metrics"
	"github.com/coastlineai/sentinel/internal/orchestrator"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/internal/toolcall"
	"github.com/coastlineai/sentinel/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting crisis-response API server", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err.Error())
		os.Exit(1)
	}
	defer dbPool.Close()

	var mirror registry.SnapshotMirror
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, registry will run without a snapshot mirror", "error", err.Error())
	} else {
		mirror = registry.NewRedisSnapshotMirror(redisClient)
	}

	loader := registry.NewPostgresStore(dbPool)
	regStore := registry.NewStore(loader, logger, registry.WithMirror(mirror), registry.WithStaleAfter(cfg.VerificationStaleAfter))
	if err := regStore.Load(ctx); err != nil {
		logger.Error("failed to load registry, attempting warm start from mirror", "error", err.Error())
		if err := regStore.WarmStartFromMirror(ctx); err != nil {
			logger.Error("warm start from mirror failed, registry is empty", "error", err.Error())
		}
	}

	auditStore := audit.NewStore(dbPool)

	model, err := buildModelClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build model client", "error", err.Error())
		os.Exit(1)
	}

	o := orchestrator.NewOrchestrator(regStore, auditStore, model, logger,
		orchestrator.WithModelID(cfg.BedrockModelID),
		orchestrator.WithModelTimeout(cfg.ModelTimeout),
		orchestrator.WithHallucinationCache(toolcall.NewRedisHallucinationCache(redisClient)),
	)

	turnMetrics := metrics.NewTurnMetrics(nil)

	router := httpapi.New(&httpapi.Config{
		Logger:             logger,
		Orchestrator:       o,
		RegistryStore:      regStore,
		AuditStore:         auditStore,
		Metrics:            turnMetrics,
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminAPIToken,
		CORSAllowedOrigins: []string{"*"},
		RateLimitPerSecond: 10,
		RateLimitBurst:     20,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("server exited gracefully")
}

// buildModelClient selects the external model client from the configured
// credentials (cfg.BedrockModelID, cfg.GeminiAPIKey; cfg.ModelProvider is not
// read), wrapping Bedrock as primary with Gemini as fallback when both are
// configured so a single provider outage degrades rather than halts turns.
func buildModelClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, error) {
	var bedrockClient llm.Client
	var geminiClient llm.Client

	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load aws config for bedrock: %w", err)
		}
		bedrockClient = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, fmt.Errorf("build gemini client: %w", err)
		}
		geminiClient = client
	}

	switch {
	case bedrockClient != nil && geminiClient != nil:
		return llm.NewFallbackClient(bedrockClient, geminiClient, logger), nil
	case bedrockClient != nil:
		return bedrockClient, nil
	case geminiClient != nil:
		return geminiClient, nil
	default:
		return nil, fmt.Errorf("no model provider configured: set BEDROCK_MODEL_ID or GEMINI_API_KEY")
	}
}
