package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/paulexconde/surveyflow/internal/api"
	"github.com/paulexconde/surveyflow/internal/config"
	"github.com/paulexconde/surveyflow/internal/database"
	"github.com/paulexconde/surveyflow/internal/identity"
	"github.com/paulexconde/surveyflow/internal/models"
	"github.com/paulexconde/surveyflow/internal/pkg/graphstore"
	"github.com/paulexconde/surveyflow/internal/pkg/paginator"
	"github.com/paulexconde/surveyflow/internal/seed"
	"github.com/paulexconde/surveyflow/internal/services"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		logger.Fatalf("database schema: %v", err)
	}

	store := graphstore.New(db)

	if cfg.Seed {
		if err := seed.Run(context.Background(), store, logger); err != nil {
			logger.Fatalf("seed: %v", err)
		}
	}

	provider := identity.NewHTTPProvider(cfg.IdentityURL)
	states := identity.NewStateCodec(cfg.StateSecret, cfg.StateTTL)
	sessions := services.NewSessionService(store, provider, states, logger)
	surveys := paginator.NewPaginator[models.Survey](store.Surveys())

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
	})

	// Request id + timing.
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)

		start := time.Now()
		err := c.Next()
		logger.Printf("[REQ] id=%s %s %s status=%d dur=%s",
			id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	api.NewHandler(sessions, store, surveys, cfg, logger).Register(app)

	go func() {
		logger.Printf("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
