package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"

	"workforce_backend/internals/configs"
	database "workforce_backend/internals/databases"
	policyService "workforce_backend/internals/features/attendance/policies/service"
	"workforce_backend/internals/features/attendance/sessions/broadcast"
	"workforce_backend/internals/features/attendance/sessions/scheduler"
	"workforce_backend/internals/features/attendance/sessions/service"
	dirService "workforce_backend/internals/features/users/directory/service"
	helper "workforce_backend/internals/helpers"
	middlewares "workforce_backend/internals/middlewares"
	routes "workforce_backend/internals/route"
	"workforce_backend/internals/seeds"
)

func main() {
	logger := configs.InitLogger()
	defer func() { _ = logger.Sync() }()

	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return helper.JsonError(c, fe.Code, fe.Message)
			}
			zap.S().Errorw("unhandled error", "path", c.Path(), "error", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "")
		},
	})

	// SSE is excluded: compress buffers the body stream
	app.Use(compress.New(compress.Config{
		Level: compress.LevelDefault,
		Next:  func(c *fiber.Ctx) bool { return c.Path() == "/api/u/attendance/stream" },
	}))
	app.Use(etag.New())

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + schema
	database.ConnectDB()
	database.TunePool()
	if err := database.Migrate(database.DB); err != nil {
		zap.S().Fatalf("❌ migrate: %v", err)
	}
	database.WarmUpQueries()

	if configs.GetEnv("RUN_SEEDS") == "true" {
		seeds.RunAllSeeds(database.DB, "internals/seeds")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := broadcast.NewHub(configs.BroadcastBuffer)
	go hub.Run(ctx)

	dir := dirService.NewDirectoryService(database.DB, configs.PolicyCacheTTL)
	policies := policyService.NewPolicyProvider(database.DB, configs.PolicyCacheTTL)
	svc := service.NewAttendanceService(database.DB, dir, policies, hub, configs.Location())

	// ⏱ scheduler after DB is ready
	if err := scheduler.StartMissedCheckoutScheduler(ctx, svc.Detector, configs.MissedCheckoutCron, configs.Location()); err != nil {
		zap.S().Fatalf("❌ missed-checkout scheduler: %v", err)
	}

	routes.SetupRoutes(app, database.DB, svc, hub)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")
	go func() {
		zap.S().Infof("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			zap.S().Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop scheduler + hub, drain fiber, close pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
