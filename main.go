package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/filipv1/pracovni-poloha2/config"
	"github.com/filipv1/pracovni-poloha2/handlers"
	"github.com/filipv1/pracovni-poloha2/pipeline"
	"github.com/filipv1/pracovni-poloha2/registry"
	"github.com/filipv1/pracovni-poloha2/storage"
	"github.com/filipv1/pracovni-poloha2/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var logFile *os.File

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded")
	}
}

func cleanup() {
	if logFile != nil {
		log.Println("Closing log file")
		logFile.Close()
	}
}

func main() {
	defer cleanup()

	cfg := config.Load()
	logFile = utils.SetupLogging(cfg.LogDir)

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.LoggerWithWriter(io.MultiWriter(os.Stdout, logFile)))
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	store, err := storage.NewChunkStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize chunk store: %v", err)
	}

	reg := registry.NewRegistry()

	pipe, err := pipeline.NewPipeline(reg, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize pipeline: %v", err)
	}

	// Initialize handlers
	uploadHandlers := handlers.NewUploadHandlers(reg, store, cfg)
	jobHandlers := handlers.NewJobHandlers(reg, store)
	processHandlers := handlers.NewProcessHandlers(pipe)
	downloadHandlers := handlers.NewDownloadHandlers(reg)
	websocketHandlers := handlers.NewWebSocketHandlers(reg, cfg.StreamInterval, cfg.StreamMaxSamples)
	healthHandlers := handlers.NewHealthHandlers()

	// Sweep abandoned uploads at start and on an interval
	reaper := pipeline.NewReaper(reg, store, cfg.RetentionWindow, cfg.ReapInterval)
	go reaper.Run(context.Background())

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(handlers.SessionAuth(handlers.HeaderAuth))
	{
		v1.POST("/upload/init", uploadHandlers.InitUpload)
		v1.PUT("/upload/:jobID/chunk/:chunkIndex", uploadHandlers.UploadChunk)

		v1.GET("/job/:jobID", jobHandlers.GetJob)
		v1.DELETE("/job/:jobID", jobHandlers.DeleteJob)

		// WebSocket endpoint for real-time progress updates
		v1.GET("/job/:jobID/ws", websocketHandlers.JobProgressWebSocketHandler)

		v1.POST("/process/:jobID", processHandlers.StartProcess)

		v1.GET("/download/:jobID/:artifactKind", downloadHandlers.DownloadArtifact)

		v1.GET("/health", healthHandlers.HealthCheck)
	}

	log.Printf("Starting ergonomic analysis backend on port %s", cfg.Port)
	log.Printf("Upload folder: %s", cfg.UploadDir)
	log.Printf("Output folder: %s", cfg.OutputDir)

	router.Run(":" + cfg.Port)
}
