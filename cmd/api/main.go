package main

import (
	"fmt"
	"log"
	"os"

	"dma-backtest/internal/api"
	"dma-backtest/internal/api/handlers"
	"dma-backtest/internal/api/middleware"
	"dma-backtest/internal/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	// Optional YAML config; the built-in instrument registry and stock
	// strategy defaults apply without one.
	var instruments []config.Instrument
	if cfgPath := os.Getenv("CONFIG_PATH"); cfgPath != "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", cfgPath, err)
		}
		instruments = cfg.Instruments
		log.Printf("Loaded config from %s (%d instruments)", cfgPath, len(instruments))
	}

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	store := api.NewResultStore(api.DefaultResultTTL)
	backtestHandler := handlers.NewBacktestHandler(store)
	scanHandler := handlers.NewScanHandler()
	instrumentHandler := handlers.NewInstrumentHandler(instruments)
	strategyHandler := handlers.NewStrategyHandler()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/backtest", backtestHandler.RunBacktest)
		v1.GET("/backtest/:id/trades", backtestHandler.GetTrades)
		v1.POST("/backtest/compare", backtestHandler.CompareBacktests)

		v1.POST("/scan", scanHandler.RunScan)

		v1.GET("/instruments", instrumentHandler.ListInstruments)
		v1.GET("/strategies", strategyHandler.ListStrategies)
	}

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
