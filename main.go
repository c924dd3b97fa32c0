package main

import (
	"context"
	"discord-giveaways/internal/bot"
	"discord-giveaways/internal/config"
	"discord-giveaways/internal/database"
	"discord-giveaways/internal/metrics"
	"discord-giveaways/internal/redis"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON or YAML config file")
	flag.Parse()

	// The bot is mostly idle between countdown ticks; trade memory for fewer
	// GC cycles.
	gcPercent := 200
	debug.SetGCPercent(gcPercent)

	log.Println("🚀 Runtime:")
	log.Printf("   • GOMAXPROCS: %d cores", runtime.GOMAXPROCS(0))
	log.Printf("   • GC Percent: %d", gcPercent)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := database.NewDatabase(dialCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.New(dialCtx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Network:  cfg.Redis.Network,
		})
		if err != nil {
			logger.Fatal("Error initializing Redis", zap.Error(err))
		}
	} else {
		logger.Info("redis not configured, cooldowns and cache stay in process")
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	b, err := bot.New(cfg, db, rdb, logger, m)
	if err != nil {
		logger.Fatal("Error initializing bot", zap.Error(err))
	}

	if err := b.Start(ctx); err != nil {
		logger.Fatal("Error starting bot", zap.Error(err))
	}
	log.Println("Bye.")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
