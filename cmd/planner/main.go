package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"floorplan/internal/common/config"
	"floorplan/internal/common/middleware"
	"floorplan/internal/planner/feed"
	"floorplan/internal/planner/handlers"
	"floorplan/internal/planner/repository"
	"floorplan/internal/planner/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Planner Service
// ============================================================

func main() {
	cfg := config.Load()

	db, err := repository.OpenSQLite(cfg.JournalDBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	journal := repository.New(db)
	if err := journal.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	plans := service.NewPlanStore()
	hub := feed.NewHub()
	planHandler := handlers.NewPlanHandler(plans, journal, hub)
	healthHandler := handlers.NewHealthHandler(journal)

	// ============================================================
	// Live Feed (WebSocket)
	// ============================================================

	feedServer := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.FeedPort),
		Handler: hub.Handler(func(planID string) (any, bool) {
			state, err := plans.Get(planID)
			if err != nil {
				return nil, false
			}
			return state.Snapshot(), true
		}),
		ReadHeaderTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
	}
	go func() {
		log.Printf("Starting wall feed on %s", feedServer.Addr)
		if err := feedServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start feed: %v", err)
		}
	}()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planner Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check & Docs Routes
	// ============================================================

	healthHandler.Register(app)
	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)

	// ============================================================
	// Planner Routes
	// ============================================================

	api := app.Group("/api/v1")
	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Planner API v1",
			"status":  "ok",
		})
	})
	planHandler.Register(api)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Planner Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Printf("Failed to start server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = feedServer.Shutdown(ctx)
}
