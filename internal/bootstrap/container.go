package bootstrap

import (
	"context"
	"log"

	"ai-ops-copilot-be/internal/config"
	"ai-ops-copilot-be/internal/controller"
	"ai-ops-copilot-be/internal/handler"
	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/internal/repository/memory"
	"ai-ops-copilot-be/internal/service"
	"ai-ops-copilot-be/internal/websocket"
	"ai-ops-copilot-be/pkg/action"
	"ai-ops-copilot-be/pkg/database"
	"ai-ops-copilot-be/pkg/decision"
	"ai-ops-copilot-be/pkg/embedding"
	"ai-ops-copilot-be/pkg/knowledge"
	"ai-ops-copilot-be/pkg/llm/factory"
	"ai-ops-copilot-be/pkg/monitoring"
	"ai-ops-copilot-be/pkg/quality"
	"ai-ops-copilot-be/pkg/rag/retriever"
	"ai-ops-copilot-be/pkg/rag/store"
	"ai-ops-copilot-be/pkg/triage"
	"ai-ops-copilot-be/pkg/workflow"

	pktNats "ai-ops-copilot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	TicketController    controller.ITicketController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	KnowledgeService    service.IKnowledgeService
	NotificationService service.INotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Quality samples for calibration inspection
	QualityRecorder *quality.MemoryRecorder

	// CheckpointStore is exposed for readiness probing
	CheckpointStore workflow.CheckpointStore
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewLocalProvider()
		log.Printf("[INFO] Using Embedding Provider: LOCAL (hashed TF)")
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Retrieval Pipeline
	vectorStore := store.NewMemoryStore(embeddingProvider)
	retrievalEngine, err := retriever.NewEngine(
		cfg.Knowledge.DocumentsDir,
		cfg.Knowledge.ChunkSize,
		cfg.Knowledge.ChunkOverlap,
		vectorStore,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize retrieval engine: %v", err)
	}

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
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
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Checkpoint Store
	checkpoints := newCheckpointStore(cfg, rdb)

	// 6. Workflow Pipeline
	qualityRecorder := quality.NewMemoryRecorder(1000)

	triageAgent := triage.NewAgent(llmProvider)
	knowledgeAgent := knowledge.NewAgent(
		retrievalEngine,
		cfg.Knowledge.MaxDocuments,
		cfg.Knowledge.MinScore,
		cfg.Knowledge.Namespace,
	)
	decisionAgent := decision.NewAgent(cfg.Workflow.AllowAutoApprove, cfg.Workflow.AutoApproveThreshold)
	actionAgent := action.NewAgent()
	monitoringAgent := monitoring.NewAgent(qualityRecorder)

	notifier := service.NewWorkflowNotifier(natsPub, wsHub, sysLogger)
	engine := workflow.NewEngine(
		triageAgent,
		knowledgeAgent,
		decisionAgent,
		actionAgent,
		monitoringAgent,
		checkpoints,
		notifier,
	)

	// 7. Services
	ticketRepo := memory.NewTicketRepository()
	publisherService := service.NewPublisherService(cfg.Workflow.TicketTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Workflow.TicketTopic, ticketRepo, engine)

	ticketService := service.NewTicketService(ticketRepo, publisherService, engine, natsPub, sysLogger)
	reviewService := service.NewReviewService(engine, sysLogger)
	knowledgeService := service.NewKnowledgeService(retrievalEngine, cfg.Knowledge, sysLogger)
	notificationService := service.NewNotificationService(natsSub, wsHub, wsLogger)

	// Handler
	notifHandler := handler.NewNotificationHandler(natsPub, wsHub, wsLogger)

	// 8. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		TicketController:    controller.NewTicketController(ticketService, reviewService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),

		ConsumerService:     consumerService,
		KnowledgeService:    knowledgeService,
		NotificationService: notificationService,
		QualityRecorder:     qualityRecorder,
		CheckpointStore:     checkpoints,
	}
}

// newCheckpointStore picks the checkpoint backend. Anything that fails to
// initialize falls back to memory so the pipeline still runs.
func newCheckpointStore(cfg *config.Config, rdb *redis.Client) workflow.CheckpointStore {
	switch cfg.Checkpoint.Backend {
	case "file":
		cs, err := workflow.NewFileCheckpointStore(cfg.Checkpoint.FileDir)
		if err != nil {
			log.Printf("[WARN] Failed to initialize file checkpoint store: %v. Falling back to memory", err)
			return workflow.NewMemoryCheckpointStore()
		}
		log.Printf("[INFO] Using Checkpoint Backend: FILE (%s)", cfg.Checkpoint.FileDir)
		return cs
	case "redis":
		log.Println("[INFO] Using Checkpoint Backend: REDIS")
		return workflow.NewRedisCheckpointStore(rdb)
	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Checkpoint.PostgresDSN)
		if err != nil {
			log.Printf("[WARN] Failed to connect to Postgres checkpoint store: %v. Falling back to memory", err)
			return workflow.NewMemoryCheckpointStore()
		}
		cs, err := workflow.NewPostgresCheckpointStore(db)
		if err != nil {
			log.Printf("[WARN] Failed to migrate Postgres checkpoint store: %v. Falling back to memory", err)
			return workflow.NewMemoryCheckpointStore()
		}
		log.Println("[INFO] Using Checkpoint Backend: POSTGRES")
		return cs
	default:
		log.Println("[INFO] Using Checkpoint Backend: MEMORY")
		return workflow.NewMemoryCheckpointStore()
	}
}
