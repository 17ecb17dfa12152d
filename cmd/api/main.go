package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "invoicesimple/api/swagger" // swagger docs
	"invoicesimple/internal/backup"
	"invoicesimple/internal/database"
	"invoicesimple/internal/document"
	"invoicesimple/internal/email"
	"invoicesimple/internal/handler"
	"invoicesimple/internal/invoice"
	"invoicesimple/internal/middleware"
	"invoicesimple/internal/storage"
	"invoicesimple/internal/websocket"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Invoice Simple API
// @version         1.0
// @description     Invoice management engine: drafts, calculations, payment schedules, PDF and email delivery.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	logger, err := zap.NewProduction()
	if os.Getenv("GIN_MODE") != "release" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Database connection. SQLite by default; postgres when configured.
	driver := envOr("DB_DRIVER", database.DriverSQLite)
	dsn := envOr("DB_PATH", "invoicesimple.db")
	if driver == database.DriverPostgres {
		dsn = "postgres://" + envOr("DB_USER", "postgres") + ":" + envOr("DB_PASSWORD", "postgres") +
			"@" + envOr("DB_HOST", "localhost") + ":" + envOr("DB_PORT", "5432") +
			"/" + envOr("DB_NAME", "postgres") + "?sslmode=" + envOr("DB_SSLMODE", "disable")
	}

	db, err := database.NewConnection(driver, dsn)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to database", zap.String("driver", driver))

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Collaborators
	renderer := document.NewChromedpRenderer(document.ChromedpConfig{
		Timeout:   30 * time.Second,
		NoSandbox: os.Getenv("CHROME_NO_SANDBOX") == "true",
		Logger:    logger,
	})
	defer func() { _ = renderer.Close() }()

	pdfDir := envOr("PDF_OUTPUT_DIR", "generated")
	generator := document.NewGenerator(renderer, pdfDir, logger)
	sender := email.NewSender(email.Config{
		Enabled:       os.Getenv("RESEND_API_KEY") != "",
		APIKey:        os.Getenv("RESEND_API_KEY"),
		FromAddress:   envOr("EMAIL_FROM", "invoices@localhost"),
		AttachmentDir: pdfDir,
	}, logger)

	// Core state
	records := storage.NewStore(db)
	store := invoice.NewStore(records, generator, sender, wsHub, logger, nil)
	backups := backup.NewService(records)

	// Initialize Handlers
	invoiceHandler := handler.NewInvoiceHandler(store)
	settingsHandler := handler.NewSettingsHandler(store)
	backupHandler := handler.NewBackupHandler(backups, store)

	// Set up Gin Router
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for status pushes
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// API Routing
	invoiceHandler.RegisterRoutes(router.Group(""))
	settingsHandler.RegisterRoutes(router.Group(""))
	backupHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")
	logger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
