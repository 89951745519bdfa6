package bootstrap

import (
	"context"
	"log"

	"unsubly-be/internal/config"
	"unsubly-be/internal/controller"
	"unsubly-be/internal/handler"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/implementation"
	"unsubly-be/internal/repository/unitofwork"
	"unsubly-be/internal/service"
	"unsubly-be/internal/websocket"
	"unsubly-be/pkg/audit"
	"unsubly-be/pkg/cancellation/analytics"
	"unsubly-be/pkg/cancellation/capability"
	"unsubly-be/pkg/cancellation/executor"
	"unsubly-be/pkg/cancellation/tracker"
	"unsubly-be/pkg/events"
	pktNats "unsubly-be/pkg/nats"
	"unsubly-be/pkg/providers/apiclient"
	"unsubly-be/pkg/providers/automation"
	"unsubly-be/pkg/providers/manualguide"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CancellationController controller.ICancellationController
	SubscriptionController controller.ISubscriptionController

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	// Shared infrastructure (exposed for main.go lifecycle management)
	EventBus *events.Bus
	Tracker  *tracker.Tracker
	NatsPub  *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Eventing: in-process bus always, NATS bridge best-effort
	bus := events.NewBus()

	var publisher events.Publisher = bus
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	} else {
		publisher = events.NewMultiPublisher(bus, natsPub)
	}

	// 3. Redis (cross-instance websocket fan-out, optional)
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

	// 4. WebSocket hub streaming lifecycle events to user devices
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()
	go wsHub.ConsumeLifecycle(context.Background(), bus)

	// 5. Engine components
	trk := tracker.NewTracker(publisher, sysLogger, cfg.Cancellation.SessionTTL)
	assessor := capability.NewAssessor(implementation.NewProviderRepository(db), sysLogger)
	auditLogger := audit.NewLogger(sysLogger)

	apiClient := apiclient.NewClient(cfg.Providers.APICancelBaseURL, cfg.Providers.APICancelToken)
	automationClient := automation.NewClient(cfg.Providers.AutomationBaseURL, cfg.Providers.AutomationToken)
	manualClient := manualguide.NewGenerator(cfg.Providers.SupportURL)

	chainExec := executor.NewChainExecutor(
		[]executor.MethodExecutor{
			executor.NewAPIExecutor(apiClient, auditLogger, sysLogger),
			executor.NewAutomationExecutor(automationClient, auditLogger, sysLogger),
			executor.NewManualExecutor(manualClient, auditLogger, sysLogger),
		},
		sysLogger,
		cfg.Cancellation.FallbackBackoff,
	)

	// 6. Services
	validate := validator.New()
	eligibility := service.NewEligibilityValidator(sysLogger)
	aggregator := analytics.NewAggregator(sysLogger)

	cancellationService := service.NewCancellationService(
		uowFactory,
		assessor,
		chainExec,
		trk,
		manualClient,
		eligibility,
		aggregator,
		auditLogger,
		publisher,
		validate,
		sysLogger,
	)
	subscriptionService := service.NewSubscriptionService(uowFactory, sysLogger)

	// 7. Controllers & handlers
	return &Container{
		CancellationController: controller.NewCancellationController(cancellationService),
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),
		StreamHandler:          handler.NewStreamHandler(wsHub, sysLogger),
		WebSocketHub:           wsHub,
		EventBus:               bus,
		Tracker:                trk,
		NatsPub:                natsPub,
	}
}
