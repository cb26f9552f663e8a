package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-ideation-be/internal/config"
	"ai-ideation-be/internal/controller"
	"ai-ideation-be/internal/handler"
	"ai-ideation-be/internal/pkg/logger"
	"ai-ideation-be/internal/pkg/serverutils"
	"ai-ideation-be/internal/repository/unitofwork"
	"ai-ideation-be/internal/service"
	"ai-ideation-be/internal/websocket"
	"ai-ideation-be/pkg/embedding"
	"ai-ideation-be/pkg/ideation"
	"ai-ideation-be/pkg/llm/factory"

	pktNats "ai-ideation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	IdeationController controller.IIdeationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub

	// App-level error handler
	ErrorHandler fiber.ErrorHandler
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	serverutils.InitJwt(cfg.App.JwtSecret)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingTimeout := time.Duration(cfg.Ai.EmbeddingTimeout) * time.Second
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
			embeddingTimeout,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, embeddingTimeout)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		time.Duration(cfg.Ai.CompletionTimeout)*time.Second,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	completions := ideation.NewCompletionClient(llmProvider)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.RunTopic)

	pipelineService := service.NewPipelineService(service.PipelineDeps{
		UowFactory:        uowFactory,
		Completions:       completions,
		EmbeddingProvider: embeddingProvider,
		EmbeddingTimeout:  embeddingTimeout,
		Workers:           cfg.Ai.PipelineWorkers,
		EventPublisher:    natsPub,
		Notifier:          wsHub,
		Logger:            sysLogger,
		LLMModel:          cfg.Ai.LLMModel,
		EmbeddingModel:    cfg.Ai.EmbeddingModel,
	})

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.RunTopic,
		pipelineService,
		sysLogger,
	)

	ideationService := service.NewIdeationService(
		uowFactory,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 6. Controllers & Handlers
	ideationController := controller.NewIdeationController(ideationService)
	progressHandler := handler.NewProgressHandler(wsHub, wsLogger)

	return &Container{
		IdeationController: ideationController,
		ConsumerService:    consumerService,
		ProgressHandler:    progressHandler,
		WebSocketHub:       wsHub,
		ErrorHandler:       serverutils.ErrorHandler(sysLogger),
	}
}
