package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prefeitura-sp/app-sicap/internal/config"
	"github.com/prefeitura-sp/app-sicap/internal/handlers"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/middleware"
	"github.com/prefeitura-sp/app-sicap/internal/observability"
	"github.com/prefeitura-sp/app-sicap/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/prefeitura-sp/app-sicap/docs"
)

// @title           SICAP API
// @version         1.0
// @description     API para envio da folha de pagamento de prestadores (pessoa jurídica) ao SICAP. A planilha é validada por completo antes de qualquer chamada externa.

// @host      localhost:8000
// @BasePath  /api

// @tag.name folha
// @tag.description Processamento e envio da planilha de folha

// @tag.name health
// @tag.description Health check operations

// frontendAssets are served from FRONTEND_DIR at the same paths.
var frontendAssets = []string{"index.html", "style.css", "app.js"}

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logging.Logger.Sync() }()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg := config.AppConfig

	// Initialize observability
	observability.InitTracer()
	defer observability.ShutdownTracer()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	client := services.NewSICAPClient(cfg, logging.Logger)
	pipeline := services.NewPipeline(cfg, client, logging.Logger)
	uploadHandlers := handlers.NewUploadHandlers(pipeline, cfg, logging.Logger)
	healthHandlers := handlers.NewHealthHandlers(cfg, logging.Logger)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		middleware.RequestTiming(),
		cors.New(corsConfig(cfg.AllowedOrigins)),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthHandlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandlers.HealthCheck)
		api.POST("/processar", uploadHandlers.ProcessSpreadsheet)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	serveFrontend(router, cfg.FrontendDir)

	// The pipeline may wait up to both SICAP timeouts before answering.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.SICAPLoginTimeout + cfg.SICAPSubmitTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("sicap_base_url", cfg.SICAPBaseURL),
			zap.String("mapping_file", cfg.MappingFile),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// In-flight submissions get the full submit timeout to finish.
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SICAPSubmitTimeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

func serveFrontend(router *gin.Engine, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logging.Logger.Warn("frontend directory not found, serving API only", zap.String("dir", dir))
		return
	}
	router.StaticFile("/", filepath.Join(dir, "index.html"))
	for _, asset := range frontendAssets {
		router.StaticFile("/"+asset, filepath.Join(dir, asset))
	}
}
