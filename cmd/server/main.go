package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/sentinelbot/sentinel-backend/internal/chatbot"
	"github.com/sentinelbot/sentinel-backend/internal/config"
	"github.com/sentinelbot/sentinel-backend/internal/database"
	"github.com/sentinelbot/sentinel-backend/internal/handlers"
	"github.com/sentinelbot/sentinel-backend/internal/middleware"
	"github.com/sentinelbot/sentinel-backend/internal/moderation"
	"github.com/sentinelbot/sentinel-backend/internal/oracle"
	"github.com/sentinelbot/sentinel-backend/internal/platform"
	"github.com/sentinelbot/sentinel-backend/internal/routes"
	"github.com/sentinelbot/sentinel-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Missing credentials are fatal; the bot must never run half-configured.
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Connect to PostgreSQL (admin accounts + action audit)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, modlog feed, rate limiting)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (violation archive)
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Ensure MongoDB indexes for the audit views
	if err := services.EnsureAuditIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB audit indexes: %v", err)
	} else {
		log.Println("✅ MongoDB audit indexes ensured")
	}

	// Platform + oracle clients
	platformClient := platform.NewRESTClient(cfg.PlatformAPIURL, cfg.PlatformBotToken)
	oracleClient := oracle.New(cfg.OracleBaseURL, cfg.OracleAPIKey, cfg.OracleGuardModel, cfg.OracleChatModel, cfg.OracleTimeout)

	// Moderation core
	exempt := make(map[string]struct{}, len(cfg.ExemptRoles))
	for _, role := range cfg.ExemptRoles {
		exempt[role] = struct{}{}
	}

	tracker := moderation.NewStrikeTracker(cfg.StrikeWindow)
	sink := &services.ModLog{Platform: platformClient, ChannelID: cfg.LogChannelID}

	pipeline := &moderation.Pipeline{
		Spam:       moderation.NewSpamDetector(cfg.SpamWindow, cfg.SpamThreshold),
		Classifier: oracleClient,
		FailMode:   moderation.FailMode(cfg.ClassifierFailMode),
		Strikes:    tracker,
		Exec:       &moderation.Executor{Platform: platformClient, LogDMFailures: cfg.LogDMFailures},
		Platform:   platformClient,
		Exempt:     exempt,
		Sink:       sink,
		Archiver:   services.Audit{},
	}
	log.Printf("✅ Moderation pipeline ready (spam %v/%d, strike window %v, classifier fail-%s)",
		cfg.SpamWindow, cfg.SpamThreshold, cfg.StrikeWindow, cfg.ClassifierFailMode)

	// Chatbot
	contextManager := chatbot.NewContextManager(oracleClient, cfg.HistoryKeep, cfg.HistorySend)

	handlers.Init(pipeline, tracker, contextManager, platformClient, cfg.GatewayToken, cfg.BotUserID)

	// Start the modlog fan-out for dashboard WebSockets
	services.StartModlogSubscriber(context.Background())

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}
	r.Use(middleware.DashboardRateLimit)

	// Health check (no rate limit concerns; used by uptime pingers)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/messages")
	log.Println("  POST /api/admin/signin")
	log.Println("  POST /api/admin/signout")
	log.Println("  GET  /api/admin/strikes")
	log.Println("  DELETE /api/admin/strikes")
	log.Println("  GET  /api/admin/violations")
	log.Println("  GET  /api/admin/actions")
	log.Println("  POST /api/admin/actions")
	log.Println("  GET  /api/admin/events")
	log.Println("  GET  /ws/gateway")
	log.Println("  GET  /ws/modlog")

	log.Printf("🚀 Sentinel backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
