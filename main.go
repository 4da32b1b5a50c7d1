package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facturation-backend/config"
	"facturation-backend/controllers"
	"facturation-backend/database"
	"facturation-backend/events"
	"facturation-backend/logger"
	"facturation-backend/middlewares"
	"facturation-backend/renderer"
	"facturation-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func main() {
	cfg, envLoaded := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	if !envLoaded {
		log.Info("no .env file loaded, using process environment")
	}

	// ---- Storage
	switch cfg.Store {
	case "memory":
		database.UseMemory()
		log.Warn("using in-memory invoice store; data is lost on restart")
	default:
		if err := database.Connect(cfg.DSN()); err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		if err := database.Migrate(database.DB); err != nil {
			log.Fatal("database migration failed", zap.Error(err))
		}
		database.UsePostgres()
	}

	// ---- Realtime events (Redis when configured, otherwise in-process)
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		broker, err := events.NewRedisBroker(ctx, cfg.RedisAddr, cfg.RedisChannel)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, falling back to in-process events", zap.Error(err))
			events.Bus = events.NewMemoryBroker()
		} else {
			events.Bus = broker
			log.Info("redis event broker connected", zap.String("addr", cfg.RedisAddr))
		}
	} else {
		events.Bus = events.NewMemoryBroker()
	}
	defer events.Bus.Close()

	controllers.Letterhead = renderer.Company{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		Phone:   cfg.CompanyPhone,
	}

	app := newApp(cfg, log)

	// ---- Shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	// ---- Start
	log.Info("API server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}

func newApp(cfg config.Config, log *zap.Logger) *fiber.App {
	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.BodyLimitBytes,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middlewares.RequestLogger(log))

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key",
	}))

	// ---- Global rate limiter (applies to all routes; tune via env)
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		// the event stream is long-lived and must not eat the budget
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/invoices/stream"
		},
	}))

	// ---- Routes
	routes.Register(app)
	return app
}
