package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"meetup-service/internal/actions"
	"meetup-service/internal/config"
	"meetup-service/internal/db"
	"meetup-service/internal/handlers"
	"meetup-service/internal/middleware"
	"meetup-service/internal/notifier"
	"meetup-service/internal/observability"
	"meetup-service/internal/platform"
	"meetup-service/internal/rabbitmq"
	"meetup-service/internal/repositories"
	"meetup-service/internal/scheduler"
	"meetup-service/internal/sign"
	"meetup-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, "meetup-service", cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(shutdownCtx)
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid display timezone %q: %v", cfg.Timezone, err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.NotifyExchange)
	defer publisher.Close()
	if reason := rabbitmq.PublisherNoopReason(publisher); reason != "" {
		log.Printf("notifier publisher mode=%s reason=%q", rabbitmq.PublisherMode(publisher), reason)
	} else {
		log.Printf("notifier publisher mode=%s", rabbitmq.PublisherMode(publisher))
	}

	notif := notifier.New(publisher)
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, "meetup-service", cfg.Environment)
	signer := sign.New(cfg.BotToken)

	eventRepo := repositories.NewEventRepo(database)
	voteRepo := repositories.NewVoteRepo(database)
	reminderRepo := repositories.NewReminderRepo(database)

	sched := scheduler.New(eventRepo, voteRepo, reminderRepo, notif, scheduler.Options{
		Interval:         cfg.ReminderPollInterval,
		RetryFailedSends: cfg.RetryFailedSends,
		Location:         loc,
	})
	go sched.Run(ctx)

	dispatcher := actions.NewDispatcher(eventRepo, reminderRepo, notif, loc)
	if cfg.AMQPURL != "" {
		consumer, err := platform.NewConsumer(cfg.AMQPURL, cfg.UpdatesQueue, eventRepo, voteRepo, dispatcher)
		if err != nil {
			log.Printf("platform consumer disabled: %v", err)
		} else {
			defer consumer.Close()
			go func() {
				if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
					log.Printf("platform consumer stopped: %v", err)
				}
			}()
		}
	}

	eventHandler := handlers.NewEventHandler(eventRepo, voteRepo, reminderRepo, notif, signer, audit)
	calendarHandler := handlers.NewCalendarHandler(eventRepo, voteRepo, signer)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("meetup-service"))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.LaunchContext(signer))

	router.GET("/event/:id", eventHandler.GetEvent)
	router.PUT("/event/:id", eventHandler.UpdateEvent)
	router.DELETE("/event/:id", eventHandler.DeleteEvent)

	router.GET("/calendar/upcoming", calendarHandler.Upcoming)
	router.GET("/calendar/exportFile", calendarHandler.ExportFile)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
