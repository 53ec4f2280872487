package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/deepstudy/deepstudy-backend/internal/http/handlers"
	"github.com/deepstudy/deepstudy-backend/internal/http/middleware"
	"github.com/deepstudy/deepstudy-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	ChatHandler    *handlers.ChatHandler
	MindMapHandler *handlers.MindMapHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware("deepstudy-backend"))
	router.Use(middleware.RequestLogger(cfg.Log))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.POST("/logout", cfg.AuthHandler.Logout)

	api := protected.Group("/api")
	api.POST("/chat", cfg.ChatHandler.SubmitTurn)
	api.GET("/chat/conversation/:id", cfg.ChatHandler.GetConversation)
	api.GET("/mindmap/:id", cfg.MindMapHandler.GetMindMap)

	return router
}
