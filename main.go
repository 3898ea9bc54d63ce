package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vastrika/storefront-backend-go/carriers"
	"github.com/vastrika/storefront-backend-go/config"
	"github.com/vastrika/storefront-backend-go/database"
	"github.com/vastrika/storefront-backend-go/handlers"
	"github.com/vastrika/storefront-backend-go/logger"
	"github.com/vastrika/storefront-backend-go/routes"
	"github.com/vastrika/storefront-backend-go/shipping"
	"github.com/vastrika/storefront-backend-go/store"
)

func main() {
	// Load environment variables
	config.LoadEnv()
	cfg := config.Load()

	zlog := logger.New()
	defer zlog.Sync()

	// Initialize Echo
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Connect to MongoDB
	if err := database.ConnectDB(cfg.MongoURI, cfg.DatabaseName); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	st := store.NewMongoStore(database.DB)

	adapters := []carriers.Carrier{
		carriers.NewDelhivery(cfg.Delhivery, cfg.OriginPincode, zlog),
		carriers.NewXpressbees(cfg.Xpressbees, cfg.OriginPincode, zlog),
	}

	orchestrator := shipping.NewOrchestrator(st, adapters, zlog)
	dispatcher := shipping.NewDispatcher(st, zlog)

	h := handlers.New(st, orchestrator, dispatcher, cfg, zlog)

	// Setup routes
	routes.SetupRoutes(e, h, cfg)

	// Start the server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
