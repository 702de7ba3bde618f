package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/staffdeck/staffdeck"
	"github.com/staffdeck/staffdeck/middleware/ratelimit"
)

func main() {
	cfg := staffdeck.LoadConfig()

	if cfg.GetSigningKey() == "" {
		log.Fatal("JWT_SECRET is required")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := staffdeck.CreateSchema(ctx, db); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	repo := staffdeck.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := staffdeck.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		"staffdeck",
		nil,
	)

	var revocations staffdeck.RevocationStore
	if addr := cfg.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		ttl := time.Duration(cfg.GetTokenExpiration()) * time.Hour
		revocations = staffdeck.NewRedisRevocationStore(client, ttl)
	} else {
		revocations = staffdeck.NewMemoryRevocationStore()
	}

	var mailer staffdeck.Mailer
	if key := cfg.GetSendgridKey(); key != "" {
		mailer = staffdeck.NewSendgridMailer(key, cfg.GetMailFromName(), cfg.GetMailFrom())
	} else {
		mailer = staffdeck.NewLogMailer(nil)
	}

	auther := staffdeck.NewAuthenticator(repo.Users(), tokens, revocations)
	policy := staffdeck.NewPolicy(repo.Employees())
	errorHandler := staffdeck.NewErrorHandler(cfg.IsProduction(), nil)

	authController := staffdeck.NewAuthController(
		staffdeck.WithAuthRepo(repo),
		staffdeck.WithAuther(auther),
		staffdeck.WithAuthErrors(errorHandler),
		staffdeck.WithRegisterHandler(
			staffdeck.NewRegisterUserHandler(repo, tokens, cfg.GetBcryptCost()),
		),
		staffdeck.WithResetHandlers(
			staffdeck.NewInitializePasswordResetHandler(repo, mailer, cfg.GetFrontendURL()),
			staffdeck.NewFinalizePasswordResetHandler(repo, mailer, cfg.GetBcryptCost()),
		),
		staffdeck.WithAuthDebug(!cfg.IsProduction()),
		staffdeck.WithHashidIDs(cfg.UseDeterministicIDs()),
	)

	app := fiber.New(fiber.Config{
		AppName:      "staffdeck",
		ErrorHandler: errorHandler.Handle,
	})

	limiterDone := make(chan struct{})
	defer close(limiterDone)

	staffdeck.MountRoutes(app, staffdeck.RouteOptions{
		Auth:      authController,
		Employees: staffdeck.NewEmployeesController(repo, errorHandler),
		Leaves:    staffdeck.NewLeavesController(repo, policy, errorHandler),
		Devices:   staffdeck.NewDevicesController(repo, errorHandler),
		Auther:    auther,
		Errors:    errorHandler,
		RateLimit: ratelimit.New(ratelimit.Config{Done: limiterDone}),
	})

	go func() {
		if err := app.Listen(":" + cfg.GetPort()); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
