package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"chathdi/internal/ai"
	appsvc "chathdi/internal/app"
	"chathdi/internal/bootstrap"
	"chathdi/internal/cache"
	"chathdi/internal/canvas"
	"chathdi/internal/platform/rabbitmq"
	"chathdi/internal/repository"
	"chathdi/internal/transport/http/handler"
	"chathdi/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	cfg := app.Config
	userRepo := repository.NewUserRepository(app.Postgres)
	docRepo := repository.NewDocumentRepository(app.Postgres)
	sectionRepo := repository.NewSectionRepository(app.Postgres)
	conversationRepo := repository.NewConversationRepository(app.Postgres)
	projectRepo := repository.NewProjectRepository(app.Postgres)

	embedder := ai.NewEmbedder(
		cfg.Embedding.BaseURL,
		cfg.Embedding.APIKey,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
	)
	chatClient := ai.NewChatClient(cfg.Chat.BaseURL)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	publisher := rabbitmq.NewConversationPublisher(app.MQConn, cfg.RabbitMQ.ConversationPersistQueue)

	ingestService := appsvc.NewIngestService(
		docRepo,
		sectionRepo,
		embedder,
		cfg.Retrieval.ChunkSize,
		cfg.Retrieval.ChunkOverlap,
		cfg.Retrieval.InsertBatchSize,
	)
	retrievalService := appsvc.NewRetrievalService(
		docRepo,
		sectionRepo,
		embedder,
		cfg.Retrieval.MatchThreshold,
		cfg.Retrieval.MatchCount,
		cfg.Retrieval.FallbackSections,
	)
	chatService := appsvc.NewChatService(
		conversationRepo,
		publisher,
		historyCache,
		retrievalService,
		chatClient,
		cfg.Chat.DefaultModel,
	)
	projectService := appsvc.NewProjectService(projectRepo, conversationRepo)
	canvasRegistry := canvas.NewRegistry(cfg.Canvas.HistoryDepth)

	documentHandler := handler.NewDocumentHandler(ingestService)
	searchHandler := handler.NewSearchHandler(retrievalService)
	chatHandler := handler.NewChatHandler(chatService)
	conversationHandler := handler.NewConversationHandler(chatService)
	projectHandler := handler.NewProjectHandler(projectService)
	canvasHandler := handler.NewCanvasHandler(canvasRegistry)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthJWT(cfg.Auth.JWTSecret, userRepo))

	v1.POST("/documents", documentHandler.Upload)
	v1.GET("/documents", documentHandler.List)
	v1.DELETE("/documents/:id", documentHandler.Delete)
	v1.POST("/search", searchHandler.Search)

	v1.POST("/chat/messages", chatHandler.SendMessage)
	v1.GET("/chat/history", chatHandler.GetHistory)

	v1.GET("/conversations", conversationHandler.List)
	v1.POST("/conversations", conversationHandler.Save)
	v1.DELETE("/conversations/:id", conversationHandler.Delete)

	v1.POST("/projects", projectHandler.Create)
	v1.GET("/projects", projectHandler.List)
	v1.DELETE("/projects/:id", projectHandler.Delete)

	v1.POST("/canvas", canvasHandler.Create)
	v1.GET("/canvas/:id", canvasHandler.Get)
	v1.PUT("/canvas/:id/files", canvasHandler.Edit)
	v1.POST("/canvas/:id/undo", canvasHandler.Undo)
	v1.POST("/canvas/:id/redo", canvasHandler.Redo)
	v1.GET("/canvas/:id/preview", canvasHandler.Preview)
	v1.DELETE("/canvas/:id", canvasHandler.Delete)

	return router
}
