package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"autoblog/internal/affiliate"
	"autoblog/internal/ai"
	"autoblog/internal/api"
	"autoblog/internal/auth"
	"autoblog/internal/cms"
	"autoblog/internal/config"
	"autoblog/internal/db"
	"autoblog/internal/genflow"
	"autoblog/internal/mirror"
	"autoblog/internal/news"
	"autoblog/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	gdb, err := db.Connect(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	var store *storage.MinioStore
	var imageMirror *mirror.Mirror
	if cfg.MinIOEndpoint != "" {
		store, err = storage.NewMinioStore(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOSecure, cfg.MinIOBucket)
		if err != nil {
			log.Fatalf("minio connect failed: %v", err)
		}
		imageMirror = mirror.New(store, cfg.HTTPTimeout)
	}

	generator, err := genflow.NewGenerator()
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}

	r := gin.Default()
	r.Use(corsMiddleware())

	srv := &api.Server{
		DB:        gdb,
		News:      news.NewClient(cfg.NewsBaseURL, cfg.NewsAPIKey, cfg.NewsCountry, cfg.HTTPTimeout),
		LLM:       ai.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout),
		CMS:       cms.NewClient(cfg.CMSServiceDomain, cfg.CMSAPIKey, cfg.HTTPTimeout),
		Auth:      auth.NewClient(cfg.AuthBaseURL, cfg.AuthAnonKey, cfg.HTTPTimeout),
		Store:     store,
		Mirror:    imageMirror,
		Generator: generator,
		Affiliate: affiliate.Config{
			AmazonTag: cfg.AmazonTag,
			RakutenID: cfg.RakutenID,
		},
		Logger:       logger,
		CronSecret:   cfg.CronSecret,
		NewsCategory: cfg.NewsCategory,
		NewsPageSize: cfg.NewsPageSize,
		DashboardURL: cfg.DashboardURL,
	}
	srv.RegisterRoutes(r)

	log.Printf("listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
