package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"agile-pricing/internal/api/handlers"
	"agile-pricing/internal/api/middleware"
	"agile-pricing/internal/cache"
	"agile-pricing/internal/config"
	"agile-pricing/internal/logging"
	"agile-pricing/internal/octopus"
	"agile-pricing/internal/stats"
)

func main() {
	log := logging.New("api")

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	client := octopus.NewClient(cfg.Octopus.BaseURL,
		time.Duration(cfg.Octopus.TimeoutSeconds)*time.Second, logging.New("octopus"))
	priceCache := cache.New(cfg.Cache.Dir,
		time.Duration(cfg.Cache.ExpiryMinutes)*time.Minute, logging.New("cache"))
	statsStore := stats.NewFileStore(cfg.Data.StatsDir)

	pricesHandler := handlers.NewPricesHandler(cfg, client, priceCache, logging.New("prices"))
	statsHandler := handlers.NewStatsHandler(statsStore, logging.New("stats"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/prices", pricesHandler.GetPrices)
		api.GET("/prices/daily", pricesHandler.GetDaily)
		api.GET("/stats", statsHandler.GetStats)
		api.GET("/regions", handlers.ListRegions)
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
