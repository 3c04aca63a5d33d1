package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrocredbr/agrocred-api/internal/database"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/services"
	"github.com/agrocredbr/agrocred-api/pkg/config"
)

// rescore walks producers whose risk score is missing or past its validity
// window and recomputes them. Runs once with --once, otherwise loops on the
// given interval until interrupted.
func main() {
	once := flag.Bool("once", false, "run a single rescore cycle and exit")
	interval := flag.Duration("interval", 6*time.Hour, "time between rescore cycles")
	batch := flag.Int("batch", 500, "maximum producers per cycle")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()
	appLogger := logger.New(cfg.Environment)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	rdb, err := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		appLogger.Fatal("Failed to connect to redis", err)
	}
	defer rdb.Close()

	svcs := services.NewServices(db.DB, rdb.Client, cfg, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCycle := func() {
		start := time.Now()
		rescored, err := svcs.Scoring.RescoreStale(ctx, *batch)
		if err != nil {
			appLogger.Error("Rescore cycle failed", err, "rescored", rescored)
			return
		}
		appLogger.Info("Rescore cycle completed",
			"rescored", rescored, "duration", time.Since(start).Round(time.Millisecond).String())
	}

	runCycle()
	if *once {
		return
	}

	appLogger.Info("Rescore worker running", "interval", interval.String(), "batch", *batch)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			appLogger.Info("Rescore worker stopping")
			return
		case <-ticker.C:
			runCycle()
		}
	}
}
