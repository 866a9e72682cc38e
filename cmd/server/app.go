package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	routes "github.com/mnuddindev/winoreat/internal/api"
	v1 "github.com/mnuddindev/winoreat/internal/api/v1"
	"github.com/mnuddindev/winoreat/internal/config"
	"github.com/mnuddindev/winoreat/internal/db"
	"github.com/mnuddindev/winoreat/internal/models"
	"github.com/mnuddindev/winoreat/internal/naver"
	"github.com/mnuddindev/winoreat/internal/services/restaurants"
	"github.com/mnuddindev/winoreat/pkg/logger"
	storage "github.com/mnuddindev/winoreat/pkg/redis"
	"github.com/mnuddindev/winoreat/pkg/utils"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log, err := logger.NewLogger(
		logger.WithOutputDir(cfg.LogDir),
		logger.WithMaxFileSize(cfg.LogMaxSizeMB),
		logger.WithMaxDays(cfg.LogMaxAgeDays),
	)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	var redisClient *storage.RedisClient
	if cfg.RedisAddr != "" {
		redisClient, err = storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize Redis")
			log.Close()
			os.Exit(1)
		}
		defer redisClient.Close(log)
	}

	level := gormLogger.Info
	if cfg.IsProduction() {
		level = gormLogger.Warn
	}
	gormDB, err := db.NewDB(
		ctx,
		cfg.DBDriver,
		cfg.DSN(),
		models.RegisterModels(),
		db.WithLogger(log, level),
		db.WithPool(25, 5, 30*time.Minute),
	)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error(), "driver": cfg.DBDriver}).Logs("Failed to initialize database")
		log.Close()
		os.Exit(1)
	}
	defer db.CloseDB(log)

	client := naver.NewClient(
		naver.Credentials{ID: cfg.NaverDeveloperID, Secret: cfg.NaverDeveloperSecret},
		naver.Credentials{ID: cfg.NaverCloudID, Secret: cfg.NaverCloudSecret},
		naver.WithTimeout(cfg.NaverTimeout),
	)

	validator := restaurants.NewValidator(gormDB)
	validator.Cooldown = cfg.RestaurantCooldown
	validator.MaxDistanceKM = cfg.MaxDistanceKM

	opts := []restaurants.ServiceOption{
		restaurants.WithLogger(log),
		restaurants.WithValidator(validator),
		restaurants.WithDistanceUnit(cfg.DistanceUnit),
	}
	if redisClient != nil {
		opts = append(opts, restaurants.WithLocker(storage.NewLocker(redisClient)))
	}
	svc := restaurants.NewService(gormDB, client, opts...)

	handler := v1.NewHandler(gormDB, svc, v1.WithLogger(log), v1.WithBugPageSize(cfg.BugPageSize))

	app := fiber.New(fiber.Config{
		AppName:      "winoreat",
		Immutable:    true,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	routes.NewRoutes(app, cfg, gormDB, log, handler)

	// the deferred closes run only after in-flight requests are drained
	shutdown := make(chan struct{})
	go func() {
		defer close(shutdown)
		<-ctx.Done()
		log.Info(context.Background()).Logs("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Server shutdown failed")
		}
	}()

	log.Info(ctx).WithMeta(utils.Map{"addr": cfg.ServerAddr}).Logs("Server starting")
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Server stopped")
		stop()
	}
	<-shutdown
}
