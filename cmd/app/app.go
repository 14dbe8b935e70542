package main

import (
	"os"

	"github.com/DRSN-tech/scrape-ingest/internal/app"
	config "github.com/DRSN-tech/scrape-ingest/internal/cfg"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/joho/godotenv"
)

// @title			scrape-ingest API
// @version		1.0
// @description	Сбор товаров с нескольких площадок, дедуплицирующий upsert и API запросов.
// @host			localhost:8080
// @BasePath		/api/v1
func main() {
	// отсутствие .env не ошибка, окружение может быть задано заранее
	envErr := godotenv.Load()

	log, err := logger.NewZapLogger(logger.Config{
		Level: os.Getenv("LOG_LEVEL"),
		Env:   os.Getenv("APP_ENV"),
	})
	if err != nil {
		log = logger.NewDefault()
		log.Warnf("invalid LOG_LEVEL, using defaults: %v", err)
	}
	defer log.Sync()

	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warnf(".env not loaded: %v", envErr)
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		log.Sync()
		os.Exit(1)
	}
}
