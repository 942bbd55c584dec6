package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-chatspace-be/internal/config"
	"ai-chatspace-be/internal/constant"
	"ai-chatspace-be/internal/controller"
	"ai-chatspace-be/internal/handler"
	"ai-chatspace-be/internal/pkg/logger"
	"ai-chatspace-be/internal/repository/memory"
	"ai-chatspace-be/internal/repository/unitofwork"
	"ai-chatspace-be/internal/service"
	"ai-chatspace-be/internal/websocket"
	"ai-chatspace-be/pkg/agent"
	"ai-chatspace-be/pkg/llm/factory"
	pkgnats "ai-chatspace-be/pkg/nats"
	"ai-chatspace-be/pkg/search"
	"ai-chatspace-be/pkg/stream"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	WorkspaceController controller.IWorkspaceController
	ChatController      controller.IChatController

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// In-process event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// LLM provider
	llmProvider, err := factory.NewProvider(
		cfg.Agent.Provider,
		cfg.Keys.OpenAI,
		cfg.Agent.BaseURL,
		cfg.Agent.Model,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.Agent.Provider, cfg.Agent.Model)

	// Search tool
	tavily := search.NewTavilyClient(cfg.Keys.Tavily, cfg.Agent.SearchMaxResults)
	searchTool := search.NewTool(tavily, sysLogger)

	// Agent runtime
	runtime := agent.NewRuntime(llmProvider, agent.Config{
		MaxIterations: cfg.Agent.MaxIterations,
		SystemPrompt:  constant.AgentSystemPrompt,
	}, sysLogger, searchTool)

	// NATS
	natsPub, err := pkgnats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (running single-instance)", err)
		rdb = nil
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Services
	authService := service.NewAuthService(uowFactory, cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.App.BaseURL)
	workspaceService := service.NewWorkspaceService(uowFactory)
	chatService := service.NewChatService(uowFactory)

	turnRegistry := memory.NewTurnRegistry()
	turnService := service.NewTurnService(
		uowFactory,
		runtime,
		turnRegistry,
		pubSub,
		sysLogger,
		time.Duration(cfg.Agent.TurnTimeoutSeconds)*time.Second,
	)

	notifService := service.NewNotifierService(pubSub, wsHub, natsPub, wsLogger)
	if err := notifService.Start(context.Background()); err != nil {
		log.Printf("[WARN] Failed to start notifier: %v", err)
	}

	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	multiplexer := stream.NewMultiplexer(sysLogger)

	return &Container{
		AuthController:      controller.NewAuthController(authService),
		WorkspaceController: controller.NewWorkspaceController(workspaceService),
		ChatController:      controller.NewChatController(chatService, turnService, multiplexer),

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		Logger: sysLogger,
	}
}
