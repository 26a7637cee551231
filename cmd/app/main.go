package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"TrendPull/internal/di"
	"TrendPull/pkg/config"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s feed=%s", cfg.Environment, cfg.Feed.WebSocketURL)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
	log.Printf("redis: connected addr=%s", cfg.Redis.Addr)
	if cfg.Kafka.Enabled {
		log.Printf("kafka: publishing brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
