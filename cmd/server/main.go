package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/craftsites/autopost/configs"
	"github.com/craftsites/autopost/internal/api/handlers"
	"github.com/craftsites/autopost/internal/api/middleware"
	"github.com/craftsites/autopost/internal/queue"
	"github.com/craftsites/autopost/internal/repository"
	"github.com/craftsites/autopost/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer redisClient.Close()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	sheetsSvc, driveSvc := googleServices(ctx, cfg)

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Minute,
		WriteTimeout: 30 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.IdentityHeader,
	}))

	tenantRepo := repository.NewTenantRepository(cfg.RegistryCSVURL, cfg.TenantBaseDomain)
	latestPostRepo := repository.NewLatestPostRepository(sheetsSvc, cfg.PostsSpreadsheetID, cfg.PostsSheetName)
	archiveRepo := repository.NewArchiveRepository(db)

	kv := service.NewRedisKVStore(redisClient)
	cacheService := service.NewCacheService(kv)
	rateLimiter := service.NewRateLimitService(kv, cfg.RateLimitMax, cfg.RateLimitWindow)

	model := service.NewGeminiService(cfg.Gemini)
	mediaService := service.NewMediaService(service.NewDriveMediaStore(driveSvc), cfg.MediaRootFolderID, cfg.ImageCap)
	researchService := service.NewResearchService(model)
	generatorService := service.NewGeneratorService(model)
	mirrorService := service.NewMirrorService(cfg.R2)
	persisterService := service.NewPersisterService(latestPostRepo, archiveRepo, cfg.TenantBaseDomain)
	notifier := service.NewTelegramNotifier(cfg.Telegram)

	pipelineService := service.NewPipelineService(mediaService, persisterService, researchService, generatorService, mirrorService, cacheService)
	fleetService := service.NewFleetService(tenantRepo, pipelineService, notifier, cfg.BatchSize)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimiter)

	api := app.Group("/api")
	api.Use(authMiddleware.TriggerGuard())

	batch := handlers.NewBatchHandler(fleetService)
	api.Post("/fleet/run", batch.RunFleet)

	tenant := handlers.NewTenantHandler(tenantRepo, pipelineService, cacheService)
	api.Post("/tenants/:id/run", rateLimitMiddleware.Guard("tenant-run"), tenant.RunTenant)
	api.Post("/tenants/:id/cache/invalidate", tenant.InvalidateCache)

	// queue
	queueW := queue.NewQueue(fleetService)

	c := cron.New()
	c.AddFunc(cfg.FleetSchedule, func() {
		if err := queue.EnqueueFleetRun(asynqClient, queue.FleetRunPayload{Reason: "cron"}); err != nil {
			log.Printf("Failed to enqueue fleet run: %v", err)
		}
	})
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 1, // one fleet run at a time
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeFleetRun, queueW.HandleFleetRunTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app, db)
}

func googleServices(ctx context.Context, cfg *config.Config) (*sheets.Service, *drive.Service) {
	creds, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		log.Fatalf("Failed to read Google credentials: %v", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope, drive.DriveReadonlyScope)
	if err != nil {
		log.Fatalf("Failed to parse Google credentials: %v", err)
	}
	client := jwtConfig.Client(ctx)

	sheetsSvc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		log.Fatalf("Failed to create Sheets client: %v", err)
	}

	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		log.Fatalf("Failed to create Drive client: %v", err)
	}

	return sheetsSvc, driveSvc
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}
