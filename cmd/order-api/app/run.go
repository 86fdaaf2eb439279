package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/LakLN/Book-Garden-Server-v2/configs"
	"github.com/LakLN/Book-Garden-Server-v2/internal/adapter/cache"
	apphttp "github.com/LakLN/Book-Garden-Server-v2/internal/adapter/http"
	"github.com/LakLN/Book-Garden-Server-v2/internal/adapter/http/middleware"
	"github.com/LakLN/Book-Garden-Server-v2/internal/adapter/kafka"
	"github.com/LakLN/Book-Garden-Server-v2/internal/adapter/queue"
	"github.com/LakLN/Book-Garden-Server-v2/internal/adapter/repo"
	"github.com/LakLN/Book-Garden-Server-v2/internal/logging"
	"github.com/LakLN/Book-Garden-Server-v2/internal/scheduler"
	"github.com/LakLN/Book-Garden-Server-v2/internal/security"
	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, "./logs/app.log")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		return nil, nil, err
	}
	cancelPing()

	logging.Base().Info("bookgarden order engine starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// init kafka
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, nil, err
	}
	push := kafka.NewPushProducer(producer, cfg.Kafka.PushTopic, cfg.Kafka.EventsTopic)

	// infra
	base := repo.NewDB(db)
	orderRepo := repo.NewMySQLOrderRepo(base)
	itemRepo := repo.NewMySQLOrderItemRepo(base)
	cartRepo := repo.NewMySQLCartRepo(base)
	bookRepo := repo.NewMySQLBookRepo(base)
	userRepo := repo.NewMySQLCatalogRepo(base)
	addrRepo := repo.NewMySQLAddressRepo(base)

	orderCache := cache.NewRedisOrderCache(rdb, cfg.Cache.TTL)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)

	notifier, err := queue.NewRabbitNotifier(ch)
	if err != nil {
		return nil, nil, err
	}

	// use cases
	placeUC := usecase.NewPlaceOrder(base, orderRepo, itemRepo, cartRepo, bookRepo,
		userRepo, addrRepo, notifier, idem, cfg.App.ClientHost)
	statusUC := usecase.NewOrderStatus(orderRepo, userRepo, orderCache,
		notifier, push, push, cfg.App.ClientHost)
	queryUC := usecase.NewOrderQuery(orderRepo, itemRepo, bookRepo, userRepo, addrRepo, orderCache)
	callbackUC := usecase.NewPaymentCallback(orderRepo, orderCache, cfg.Payment.SuccessCode)

	bgCtx, bgCancel := context.WithCancel(context.Background())

	// background sweepers
	sweeper := scheduler.New(logging.New("sweeper"), orderRepo, orderCache, notifier,
		cfg.App.ClientHost,
		cfg.Orders.UnpaidSweepInterval, cfg.Orders.UnpaidExpiry,
		cfg.Orders.ConfirmSweepInterval, cfg.Orders.ConfirmGrace)
	go sweeper.RunUnpaidExpiry(bgCtx)
	go sweeper.RunAutoConfirm(bgCtx)

	// notification delivery worker
	if err := setupQueue(ch, push); err != nil {
		bgCancel()
		return nil, nil, err
	}

	// async payment results
	if err := setupKafkaListener(bgCtx, cfg, callbackUC); err != nil {
		bgCancel()
		return nil, nil, err
	}

	// handlers + router + middleware
	oh := &apphttp.OrderHandler{Place: placeUC, Status: statusUC, Query: queryUC}
	ph := &apphttp.PaymentHandler{Callback: callbackUC}
	th := apphttp.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	gv := middleware.NewGatewayVerify(security.NewSignatureService(cfg.Payment.GatewaySecret))
	router := apphttp.NewRouter(oh, ph, th, authz, gv)

	cleanup := func() {
		bgCancel()
		_ = producer.Close()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel, push usecase.PushSink) error {
	h := queue.NewNotificationHandler(push, logging.New("notify-worker"))

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(queue.QueueName, queue.JSONHandler[usecase.NotificationMsg]{HandleFunc: h.HandleNotification})

	return router.Start()
}

func setupKafkaListener(ctx context.Context, cfg configs.Config, cb *usecase.PaymentCallback) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.PaymentGroup)
	if err != nil {
		return err
	}

	h := kafka.NewPaymentResultHandler(cb, logging.New("payment-consumer"))
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.PaymentTopic}, h.Handle)

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logging.Base().Error("payment consumer stopped", "err", err)
		}
	}()
	return nil
}
