package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"eventhub/config"
	"eventhub/handlers"
	"eventhub/hooks"
	_ "eventhub/migrations"
	"eventhub/monitoring"
	"eventhub/security"
	"eventhub/services"
	"eventhub/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize services
	accountService := services.NewAccountService(app, cfg)
	bookingService := services.NewBookingService(app, redisClient, cfg)
	notificationService := services.NewNotificationService(app, pn)
	statsService := services.NewStatsService(app, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(app, accountService, cfg)
	eventHandler := handlers.NewEventHandler(app)
	bookingHandler := handlers.NewBookingHandler(app, bookingService, accountService)
	notificationHandler := handlers.NewNotificationHandler(app)
	feedbackHandler := handlers.NewFeedbackHandler(app)
	profileHandler := handlers.NewProfileHandler(app, accountService)
	adminHandler := handlers.NewAdminHandler(app, statsService, notificationService)

	limiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Record hooks: profile provisioning, booking notifications, event sync
	hooks.Register(app, accountService, notificationService, redisClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.EnableMetrics {
		monitoring.NewMonitor(ctx, redisClient)
		monitoring.StartMetricsServer(cfg.MetricsPort)
	}

	// Setup graceful shutdown for background tasks
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		syncActiveEventsToRedis(app, redisClient)

		g := se.Router.Group("/api/v1")

		// Public browsing
		g.GET("/events", eventHandler.List)
		g.GET("/events/{eventId}", eventHandler.Get)

		// Account
		g.POST("/account/register", authHandler.Register).BindFunc(limiter.Window("register"))
		g.GET("/account/session", authHandler.Session)

		// Public forms
		g.POST("/feedback", feedbackHandler.SubmitFeedback).BindFunc(limiter.Window("forms"))
		g.POST("/contact", feedbackHandler.SubmitContact).BindFunc(limiter.Window("forms"))

		// Authenticated
		auth := g.Group("")
		auth.Bind(apis.RequireAuth())
		auth.GET("/profile", profileHandler.Get)
		auth.PATCH("/profile", profileHandler.Update)
		auth.PUT("/account/theme", profileHandler.UpdateTheme)
		auth.POST("/bookings", bookingHandler.Create)
		auth.GET("/bookings/mine", bookingHandler.Mine)
		auth.POST("/bookings/{bookingId}/cancel", bookingHandler.Cancel)
		auth.GET("/notifications", notificationHandler.List)
		auth.POST("/notifications/{notificationId}/read", notificationHandler.MarkRead)
		auth.POST("/notifications/read-all", notificationHandler.MarkAllRead)

		// Admin
		admin := g.Group("/admin")
		admin.Bind(apis.RequireAuth())
		admin.BindFunc(handlers.RequireAdmin(accountService))
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.POST("/events", adminHandler.CreateEvent)
		admin.PATCH("/events/{eventId}", adminHandler.UpdateEvent)
		admin.POST("/events/{eventId}/status", adminHandler.SetEventStatus)
		admin.POST("/bookings/{bookingId}/checkin", bookingHandler.CheckIn)
		admin.GET("/feedback", adminHandler.ListFeedback)
		admin.POST("/feedback/{feedbackId}/status", adminHandler.SetFeedbackStatus)
		admin.GET("/contact", adminHandler.ListContact)
		admin.POST("/contact/{contactId}/status", adminHandler.SetContactStatus)
		admin.POST("/notifications", adminHandler.Broadcast)

		// Health check
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return se.Next()
	})

	// Start server
	return app.Start()
}

// syncActiveEventsToRedis rebuilds the active event set used by the
// metrics collector.
func syncActiveEventsToRedis(app *pocketbase.PocketBase, redisClient *redis.Client) {
	ctx := context.Background()

	var records []dbx.NullStringMap
	if err := app.DB().NewQuery(
		"SELECT id FROM events WHERE status = 'active'",
	).All(&records); err != nil {
		log.Printf("Error fetching active events: %v", err)
		return
	}

	redisClient.Del(ctx, "active_events")

	var eventIDs []interface{}
	for _, record := range records {
		if id := record["id"].String; id != "" {
			eventIDs = append(eventIDs, id)
		}
	}

	if len(eventIDs) > 0 {
		redisClient.SAdd(ctx, "active_events", eventIDs...)
		log.Printf("Synced %d active events to Redis", len(eventIDs))
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
