package bootstrap

import (
	"context"
	"log"

	"ai-marketplace-be/internal/config"
	"ai-marketplace-be/internal/controller"
	"ai-marketplace-be/internal/handler"
	"ai-marketplace-be/internal/pkg/logger"
	"ai-marketplace-be/internal/repository/implementation"
	"ai-marketplace-be/internal/repository/memory"
	"ai-marketplace-be/internal/repository/unitofwork"
	"ai-marketplace-be/internal/service"
	"ai-marketplace-be/internal/websocket"
	"ai-marketplace-be/pkg/llm/factory"
	"ai-marketplace-be/pkg/recommend"
	"ai-marketplace-be/pkg/recommend/generate"
	"ai-marketplace-be/pkg/recommend/history"
	"ai-marketplace-be/pkg/recommend/requirement"
	"ai-marketplace-be/pkg/recommend/sanitize"
	"ai-marketplace-be/pkg/recommend/search"

	pktNats "ai-marketplace-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RecommendationController controller.IRecommendationController
	ProductController        controller.IProductController

	// Background Services (Exposed for main.go to run)
	IndexerService service.IIndexerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Backend
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory state of the last pipeline run per thread
	stateRepo := memory.NewPipelineStateRepository()

	// 3.5 Infrastructure
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

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Keys.ProductTopic, pubSub)
	indexerService := service.NewIndexerService(
		pubSub,
		cfg.Keys.ProductTopic,
		uowFactory,
	)

	productService := service.NewProductService(uowFactory, publisherService, natsPub)

	// Recommendation pipeline. The product service doubles as the catalog
	// for both the matcher and the generator's tool round.
	pipeLogger := log.Default()
	extractor := requirement.NewExtractor(llmProvider, pipeLogger)
	matcher := search.NewMatcher(productService, pipeLogger)
	generator := generate.NewGenerator(
		llmProvider,
		func(ctx context.Context, keyword string) ([]recommend.Candidate, error) {
			return productService.Search(ctx, recommend.CatalogQuery{Keyword: keyword, Limit: 15})
		},
		sanitize.NewSanitizer(sanitize.DefaultRules()),
		cfg.Ai.VisionModel,
		cfg.Recommend.ImageFetchTimeout,
		pipeLogger,
	)
	summarizer := history.NewSummarizer(llmProvider, pipeLogger)

	recommendationService := service.NewRecommendationService(
		uowFactory,
		extractor,
		matcher,
		generator,
		summarizer,
		stateRepo,
		natsPub,
	)

	// 4.5 Notification System Infrastructure
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	// Handler
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	sysLogger.Info("Bootstrap", "Container initialized", map[string]interface{}{
		"llm_provider": cfg.Ai.LLMProvider,
	})

	// 5. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		RecommendationController: controller.NewRecommendationController(recommendationService),
		ProductController:        controller.NewProductController(productService),

		IndexerService: indexerService,
	}
}
