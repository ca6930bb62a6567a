package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/noteduco342/lanchat-backend/internal/cache"
	"github.com/noteduco342/lanchat-backend/internal/config"
	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"github.com/noteduco342/lanchat-backend/internal/handlers"
	"github.com/noteduco342/lanchat-backend/internal/middleware"
	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/presence"
	"github.com/noteduco342/lanchat-backend/internal/repository"
	"github.com/noteduco342/lanchat-backend/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func serve(ctx context.Context, cfg *config.Config) error {
	log := cfg.NewLogger()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.InitDB(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	cursorRepo := repository.NewReadCursorRepository(db)

	if err := repository.SeedAdmin(userRepo, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	// Redis is optional; without it presence is not mirrored and history is not cached.
	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := redisCache.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, running without cache", "addr", cfg.RedisAddr, "error", err)
		redisCache = nil
	} else {
		log.Info("redis cache connected", "addr", cfg.RedisAddr)
	}
	cancel()

	userCache := cache.NewUserCache(redisCache)
	messageCache := cache.NewMessageCache(redisCache)
	if err := userCache.Reset(); err != nil {
		log.Warn("clearing stale online set failed", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	directory := presence.NewDirectory()
	engine := dispatch.NewEngine(dispatch.Deps{
		Users:            userRepo,
		Messages:         messageRepo,
		Channels:         channelRepo,
		Cursors:          cursorRepo,
		Directory:        directory,
		Tokens:           authService,
		Mirror:           userCache,
		History:          messageCache,
		Metrics:          dispatch.NewMetrics(registry),
		Logger:           log,
		MaxMessageLength: cfg.MaxMessageLength,
	})

	userService := service.NewUserService(userRepo, engine)
	messageService := service.NewMessageService(messageRepo, channelRepo, messageCache, log)
	channelService := service.NewChannelService(channelRepo, userRepo, engine)

	wsHandler := handlers.NewWebSocketHandler(engine, handlers.WebSocketOptions{
		EventsPerSecond: cfg.WSEventsPerSecond,
		EventBurst:      cfg.WSEventBurst,
		Debug:           cfg.WSDebug,
	}, log)
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	messageHandler := handlers.NewMessageHandler(messageService)
	channelHandler := handlers.NewChannelHandler(channelService)
	var onlineMirror handlers.OnlineCounter
	if redisCache != nil {
		onlineMirror = userCache
	}
	healthHandler := handlers.NewHealthHandler(directory, onlineMirror, log)

	app := fiber.New(fiber.Config{
		AppName:   "LAN Chat Backend",
		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.Origins()),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	origins := middleware.OriginAllowed(cfg.Origins())
	authRequired := middleware.AuthRequired(engine)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := app.Group("/api", origins)
	api.Get("/health", healthHandler.Health)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}), authHandler.Login)

	api.Get("/auth/profile", authRequired, authHandler.GetCurrentUser)
	api.Put("/users/me", authRequired, userHandler.UpdateProfile)

	api.Get("/messages/group", authRequired, messageHandler.GetGroupMessages)
	api.Get("/messages/private/:userId", authRequired, messageHandler.GetPrivateMessages)
	api.Get("/messages/channel/:channelId", authRequired, messageHandler.GetChannelMessages)

	api.Get("/channels", authRequired, channelHandler.ListChannels)
	api.Post("/channels", authRequired, adminOnly, channelHandler.CreateChannel)
	api.Put("/channels/:id/members", authRequired, adminOnly, channelHandler.ReplaceMembers)
	api.Post("/channels/:id/announcements", authRequired, adminOnly, channelHandler.Announce)

	app.Use("/ws", origins, authRequired, wsHandler.Upgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port)
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	if redisCache != nil {
		_ = redisCache.Close()
	}
	return nil
}

// corsOrigins falls back to any origin when no list is configured; OriginAllowed
// applies the same rule.
func corsOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
