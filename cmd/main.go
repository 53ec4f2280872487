package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepstudy/deepstudy-backend/internal/app"
	"github.com/deepstudy/deepstudy-backend/internal/data/graph"
	"github.com/deepstudy/deepstudy-backend/internal/data/repos"
	"github.com/deepstudy/deepstudy-backend/internal/db"
	"github.com/deepstudy/deepstudy-backend/internal/http/handlers"
	"github.com/deepstudy/deepstudy-backend/internal/http/middleware"
	"github.com/deepstudy/deepstudy-backend/internal/modules/agent"
	"github.com/deepstudy/deepstudy-backend/internal/modules/dialogue"
	"github.com/deepstudy/deepstudy-backend/internal/modules/mindmap"
	"github.com/deepstudy/deepstudy-backend/internal/observability"
	"github.com/deepstudy/deepstudy-backend/internal/platform/envutil"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
	"github.com/deepstudy/deepstudy-backend/internal/platform/modelscope"
	"github.com/deepstudy/deepstudy-backend/internal/platform/neo4jdb"
	"github.com/deepstudy/deepstudy-backend/internal/platform/redisdb"
	"github.com/deepstudy/deepstudy-backend/internal/server"
	"github.com/deepstudy/deepstudy-backend/internal/services"
)

func main() {
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}

	ctx := context.Background()

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "deepstudy-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("postgres auto migration failed", "error", err)
	}
	pg := postgresService.DB()

	// Neo4j
	neo4jClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Fatal("neo4j init failed", "error", err)
	}
	if neo4jClient == nil {
		log.Fatal("NEO4J_URI is required")
	}
	defer func() {
		if err := neo4jClient.Close(context.Background()); err != nil {
			log.Warn("neo4j close failed", "error", err)
		}
	}()

	// Redis (optional: mind-map cache only)
	redisClient, err := redisdb.NewFromEnv(log)
	if err != nil {
		log.Warn("redis init failed, continuing without cache", "error", err)
		redisClient = nil
	}

	// ModelScope
	baseLLM, err := modelscope.NewClient(log)
	if err != nil {
		log.Fatal("modelscope init failed", "error", err)
	}
	var coderLLM modelscope.Client
	if coderModel := envutil.String("MODELSCOPE_CODER_MODEL", ""); coderModel != "" {
		coderLLM = modelscope.WithModel(baseLLM, coderModel)
	}

	// Graph store
	store := graph.NewStore(neo4jClient, log)
	store.InitSchema(ctx)

	// Repos
	allRepos := repos.New(pg, log)

	// Modules
	treeBuilder := dialogue.NewTreeBuilder(store, log)
	projector := mindmap.NewProjector(store, redisClient, log)
	router := agent.NewIntentRouter(baseLLM, log)
	strategies := agent.NewStrategies(baseLLM, coderLLM)
	orchestrator := agent.NewOrchestrator(router, strategies, baseLLM, store, allRepos.TurnLog, log)

	// Services
	authService := services.NewAuthService(
		pg, log,
		allRepos.User, allRepos.UserToken,
		cfg.JWTSecretKey, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(),
	)

	// HTTP
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(orchestrator, treeBuilder, cfg.MaxTreeDepth, log)
	mindMapHandler := handlers.NewMindMapHandler(projector)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	engine := server.NewRouter(server.RouterConfig{
		Log:            log,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		ChatHandler:    chatHandler,
		MindMapHandler: mindMapHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	go func() {
		log.Info("http server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", "error", err)
	}
	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warn("otel shutdown failed", "error", err)
		}
	}
}
