package main

import (
	"context"
	"log"

	"rental-payment-service/config"
	"rental-payment-service/internal/module/payment/handler"
	"rental-payment-service/internal/module/payment/repositories"
	"rental-payment-service/internal/module/payment/usecases"
	"rental-payment-service/internal/pkg/database"
	"rental-payment-service/internal/pkg/http"
	"rental-payment-service/internal/pkg/httpclient"
	"rental-payment-service/internal/pkg/lock"
	log_internal "rental-payment-service/internal/pkg/log"
	"rental-payment-service/internal/pkg/messagestream"
	"rental-payment-service/internal/pkg/middleware"
	"rental-payment-service/internal/pkg/paymentprovider"
	"rental-payment-service/internal/pkg/redis"
	"rental-payment-service/internal/pkg/scheduler"
	router "rental-payment-service/internal/route"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

func main() {
	cfg := config.InitConfig()

	app, messageRouters := initService(cfg)

	for _, router := range messageRouters {
		ctx := context.Background()
		go func(router *message.Router) {
			err := router.Run(ctx)
			if err != nil {
				log.Fatal(err)
			}
		}(router)
	}

	// start http server
	http.StartHttpServer(app, cfg.HttpServer.Port)
}

func initService(cfg *config.Config) (*fiber.App, []*message.Router) {
	ctx := context.Background()

	// init logger
	logZap := log_internal.SetupLogger()
	log_internal.Init(logZap)
	logger := log_internal.GetLogger()
	logHttp := log_internal.Setup()

	// init database
	db := database.GetConnection(&cfg.Database)
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("error migrate database: %v", err)
		}
	}

	// init redis and the distributed lock on top of it
	redis := redis.SetupClient(&cfg.Redis)
	locker := lock.NewRedisLocker(redis, &cfg.Lock)

	// init http client for the user service
	cb := httpclient.InitCircuitBreaker(&cfg.HttpClient, cfg.HttpClient.Type)
	httpClient := httpclient.InitHttpClient(&cfg.HttpClient, cb)

	// init payment provider behind its own breaker
	cbStripe := httpclient.InitCircuitBreaker(&cfg.HttpClient, cfg.HttpClient.Type)
	provider := paymentprovider.New(&cfg.Stripe, httpclient.NewBreakerClient(cbStripe, cfg.Stripe.Timeout), logger)

	// init message stream
	amqp := messagestream.NewAmpq(&cfg.MessageStream)

	// Init Subscriber
	subscriber, err := amqp.NewSubscriber()
	if err != nil {
		logger.Error(ctx, "Failed to create subscriber", err)
	}

	// Init Publisher
	publisher, err := amqp.NewPublisher()
	if err != nil {
		logger.Error(ctx, "Failed to create publisher", err)
	}

	// init scheduler
	sch := scheduler.Scheduler{Log: logger}
	asynqClient := sch.InitClient(&cfg.Redis)

	paymentRepo := repositories.New(db, logger, httpClient, redis, asynqClient, &cfg.UserService)
	paymentUsecase := usecases.New(paymentRepo, provider, locker, publisher, logger, &cfg.Stripe, &cfg.Checkout)
	middleware := middleware.Middleware{
		Log:  logHttp,
		Repo: paymentRepo,
	}

	validator := validator.New()
	paymentHandler := handler.PaymentHandler{
		Log:       logHttp,
		Validator: validator,
		Usecase:   paymentUsecase,
		Publish:   publisher,
	}

	var messageRouters []*message.Router

	consumeProviderEventsRouter, err := messagestream.NewRouter(publisher, messagestream.TopicProviderEventsPoisoned, "payment_provider_events_handler", messagestream.TopicProviderEvents, subscriber, paymentHandler.ConsumeProviderEvents)
	if err != nil {
		logger.Error(ctx, "Failed to create consume_provider_events router", err)
	}

	messageRouters = append(messageRouters, consumeProviderEventsRouter)

	// start scheduled session sweeps
	go sch.StartHandler(&cfg.Redis, cfg.Scheduler.Concurrency,
		[]string{scheduler.TypeReconcileCheckoutSession},
		[]func(ctx context.Context, t *asynq.Task) error{paymentHandler.ReconcileCheckoutSession},
	)
	if cfg.Scheduler.MonitoringOn {
		go sch.StartMonitoring(&cfg.Redis, cfg.Scheduler.MonitoringAdr)
	}

	serverHttp := http.SetupHttpEngine()

	r := router.Initialize(serverHttp, &paymentHandler, &middleware)

	return r, messageRouters

}
