package main

import (
	"context"
	"embed"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/tavolaclub/tavola/internal/accounts"
	"github.com/tavolaclub/tavola/internal/events"
	"github.com/tavolaclub/tavola/internal/menu"
	"github.com/tavolaclub/tavola/internal/mongo"
	"github.com/tavolaclub/tavola/internal/reservations"
	"github.com/tavolaclub/tavola/internal/takeaway"
)

//go:embed seed.json
var seedFS embed.FS

const (
	appNamespace = "TAVOLA"
	appName      = "tavola"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup with error: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	lifecycle := []interface{}{}

	tableRepo := mongo.NewTableRepo(config, logger)
	err = tableRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start table repository: %v", appName, appVersion, err)
	}

	db := tableRepo.GetDatabase()
	if db == nil {
		err := errors.New("cannot get table repo database")
		log.Fatalf("%s(%s) cannot initialize database: %v", appName, appVersion, err)
	}

	reservationRepo := mongo.NewReservationRepo(db)
	allocationRepo := mongo.NewAllocationRepo(db)
	orderRepo := mongo.NewTakeawayOrderRepo(db)
	menuItemRepo := mongo.NewMenuItemRepo(db)
	userRepo := mongo.NewUserRepo(db)

	if err := allocationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot create allocation indexes: %v", appName, appVersion, err)
	}
	if err := menuItemRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot create menu indexes: %v", appName, appVersion, err)
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot create user indexes: %v", appName, appVersion, err)
	}

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	publisher, err := events.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	publisherLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	}
	lifecycle = append(lifecycle, publisherLifecycle)

	auditEnabled := config.GetStringOrDef("events.audit", "false")
	if auditEnabled == "true" {
		subscriber, err := events.NewNATSSubscriber(natsURL, logger)
		if err != nil {
			log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
		}

		for _, topic := range []string{reservations.ReservationStatusTopic, takeaway.OrderTopic} {
			if err := subscriber.Subscribe(ctx, topic, events.LogHandler(logger, topic)); err != nil {
				log.Fatalf("%s(%s) cannot subscribe to %s: %v", appName, appVersion, topic, err)
			}
		}

		subscriberLifecycle := aqm.LifecycleHooks{
			OnStop: func(context.Context) error {
				return subscriber.Close()
			},
		}
		lifecycle = append(lifecycle, subscriberLifecycle)
	}

	sessionTTL := 12 * time.Hour
	if ttlStr, ok := config.GetString("auth.session.ttl"); ok && ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil {
			sessionTTL = parsed
		} else {
			logger.Errorf("invalid auth.session.ttl %q, using default", ttlStr)
		}
	}
	sessions := accounts.NewSessionStore(sessionTTL)
	sessions.StartCleanup(ctx, 5*time.Minute)

	bookingSvc := reservations.NewBookingService(reservationRepo, allocationRepo, logger, publisher)

	reservationHandler := reservations.NewHandler(
		reservations.HandlerDeps{
			TableRepo: tableRepo,
			Service:   bookingSvc,
			Sessions:  sessions,
		},
		config,
		logger,
	)

	takeawayHandler := takeaway.NewHandler(
		takeaway.HandlerDeps{
			OrderRepo: orderRepo,
			Publisher: publisher,
		},
		config,
		logger,
	)

	menuHandler := menu.NewHandler(
		menu.HandlerDeps{
			MenuItemRepo: menuItemRepo,
		},
		config,
		logger,
	)

	accountHandler := accounts.NewHandler(
		accounts.HandlerDeps{
			Users:        userRepo,
			Sessions:     sessions,
			Reservations: reservationRepo,
			Orders:       orderRepo,
		},
		config,
		logger,
	)

	seedHooks := aqm.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			if err := reservations.SeedingFunc(seedCtx, tableRepo, db, seedFS, logger)(ctx); err != nil {
				return err
			}
			return menu.SeedingFunc(seedCtx, menuItemRepo, db, seedFS, logger)(ctx)
		},
		OnStop: reservations.StopFunc(cancelSeeds),
	}
	lifecycle = append(lifecycle, seedHooks)

	// Public website API, browsers call it directly.
	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: false,
	})

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", reservationHandler, takeawayHandler, menuHandler, accountHandler),
		aqm.WithLifecycle(lifecycle...),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		_ = tableRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
