package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/cache"
	"github.com/truekeo/truekeo-api/internal/config"
	"github.com/truekeo/truekeo-api/internal/db"
	applogger "github.com/truekeo/truekeo-api/internal/logger"
	"github.com/truekeo/truekeo-api/internal/middleware"
	"github.com/truekeo/truekeo-api/internal/services/auth"
	"github.com/truekeo/truekeo-api/internal/services/chat"
	"github.com/truekeo/truekeo-api/internal/services/geo"
	"github.com/truekeo/truekeo-api/internal/services/item"
	"github.com/truekeo/truekeo-api/internal/services/storage"
	"github.com/truekeo/truekeo-api/internal/services/trueke"
	"github.com/truekeo/truekeo-api/internal/store"
	"github.com/truekeo/truekeo-api/internal/utils"
	"github.com/truekeo/truekeo-api/internal/ws"
)

func main() {
	cfg := config.LoadConfig()

	zlog, err := applogger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			zlog.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	stores := store.New(pool)
	profiles := cache.NewProfileCache(cfg.RedisURL, zlog)
	jwtService := utils.NewJWTService(cfg.JWTSecret)
	authMiddleware := middleware.AuthMiddleware(jwtService)

	manager := ws.NewManager(zlog)
	defer manager.Shutdown()

	hydrator := trueke.NewHydrator(stores.Users, stores.Items, zlog)
	supabase := storage.NewSupabaseClient(cfg.Supabase.ProjectURL, cfg.Supabase.ServiceKey)
	mapbox := geo.NewMapboxClient(cfg.Mapbox.BaseURL, cfg.Mapbox.AccessToken)

	authService := auth.NewAuthService(stores.Users, profiles, jwtService, zlog)
	itemService := item.NewItemService(stores.Items, zlog)
	truekeService := trueke.NewTruekeService(stores.Truekes, stores.Items, hydrator, zlog)
	chatService := chat.NewChatService(stores.Chats, stores.Users, manager, zlog)
	storageService := storage.NewStorageService(supabase, stores.Users, stores.Items,
		profiles, cfg.Supabase.AvatarBucket, cfg.Supabase.ItemBucket, zlog)
	geoService := geo.NewGeoService(mapbox, zlog)

	app := fiber.New(fiber.Config{
		AppName: "Truekeo API",
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authService.SetupRoutes(app, authMiddleware)
	itemService.SetupRoutes(app, authMiddleware)
	truekeService.SetupRoutes(app, authMiddleware)
	chatService.SetupRoutes(app, authMiddleware)
	storageService.SetupRoutes(app, authMiddleware)
	geoService.SetupRoutes(app, authMiddleware)

	go func() {
		zlog.Info("Starting WebSocket server", zap.String("port", cfg.WSPort))
		if err := ws.Serve(":"+cfg.WSPort, manager, jwtService, zlog); err != nil {
			zlog.Fatal("WebSocket server failed", zap.Error(err))
		}
	}()

	zlog.Info("Starting HTTP server",
		zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("HTTP server failed", zap.Error(err))
	}
}
