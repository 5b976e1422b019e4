package main

import (
	"flag"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/app"
	"github.com/founderdesk/daylog/internal/bot"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	cfg, err := bot.ReadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	store, err := app.NewStore(cfg.Database.DSN, cfg.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	opt, err := redis.ParseURL(cfg.Auth.RedisURL)
	if err != nil {
		logger.Error.Fatalf("Failed to parse redis URL: %v", err)
	}
	tokens := app.NewTokenManager(redis.NewClient(opt))
	defer tokens.Close()

	b, err := bot.New(cfg, store, tokens)
	if err != nil {
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Println("Bot initialized successfully")
	if err := b.Start(); err != nil {
		logger.Error.Fatalf("Bot error: %v", err)
	}
}
