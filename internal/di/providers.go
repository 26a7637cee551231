package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"TrendPull/internal/domain/repository"
	"TrendPull/internal/handler/api"
	internalrepo "TrendPull/internal/repository"
	"TrendPull/internal/service/binance"
	"TrendPull/internal/service/pricecache"
	"TrendPull/internal/services/channel"
	"TrendPull/internal/usecase"
	pkgch "TrendPull/pkg/clickhouse"
	"TrendPull/pkg/config"
	pkgkafka "TrendPull/pkg/kafka"
	applogger "TrendPull/pkg/logger"
	"TrendPull/pkg/metrics"
	"TrendPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.price_bars (
            symbol String,
            granularity String,
            open_time DateTime,
            open Float64,
            high Float64,
            low Float64,
            close Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, granularity, open_time)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.signal_events (
            symbol String,
            action String,
            class String,
            event_time DateTime
        ) ENGINE = MergeTree
        ORDER BY (symbol, event_time)`, db),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideRedisClient creates a Redis client and verifies connectivity.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ProvideSymbolRegistry creates the Redis-backed subscription set.
func ProvideSymbolRegistry(client *redis.Client, cfg *config.Config) repository.SymbolRegistry {
	return internalrepo.NewRedisSymbolRegistry(client, cfg.Redis.Prefix)
}

// ProvideBarStore creates the ClickHouse bar store.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.BarStore {
	return internalrepo.NewCHBarStore(chClient.DB(), cfg.ClickHouse.Database+".price_bars", l)
}

// ProvideSignalStore creates the ClickHouse signal store.
func ProvideSignalStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.SignalStore {
	return internalrepo.NewCHSignalStore(chClient.DB(), cfg.ClickHouse.Database+".signal_events", l)
}

// ProvideBarPublisher creates the Kafka bar publisher, or nil when Kafka is
// disabled. The aggregator treats a nil publisher as store-only mode.
func ProvideBarPublisher(cfg *config.Config) (repository.BarPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvidePriceCache creates the in-memory live price cache.
func ProvidePriceCache() repository.PriceCache {
	return pricecache.New()
}

// ProvideMarketStream creates the Binance combined-stream client.
func ProvideMarketStream(cfg *config.Config, l *applogger.Logger) repository.MarketStream {
	return binance.New(cfg.Feed.WebSocketURL, cfg.Feed.PingInterval, l)
}

// ProvideChannelEngine creates the regression channel engine.
func ProvideChannelEngine(cfg *config.Config) *channel.Engine {
	return channel.NewEngine(cfg.Channel.FlatEpsilon)
}

// ProvideBarAggregator creates the bar aggregation use case.
func ProvideBarAggregator(
	store repository.BarStore,
	pub repository.BarPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.BarAggregator {
	return usecase.NewBarAggregator(store, pub, m, l, cfg.Aggregator.RollupMinutes)
}

// ProvideFeedCollector creates the feed collection use case.
func ProvideFeedCollector(
	stream repository.MarketStream,
	registry repository.SymbolRegistry,
	cache repository.PriceCache,
	agg *usecase.BarAggregator,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.FeedCollector {
	return usecase.NewFeedCollector(
		stream, registry, cache, agg, m, l,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PollInterval,
	)
}

// ProvideSignalCorrelator creates the signal-to-bar correlator.
func ProvideSignalCorrelator(signals repository.SignalStore) *usecase.SignalCorrelator {
	return usecase.NewSignalCorrelator(signals)
}

// ProvideMarketQuery creates the query use case.
func ProvideMarketQuery(
	bars repository.BarStore,
	correlator *usecase.SignalCorrelator,
	cache repository.PriceCache,
	engine *channel.Engine,
) *usecase.MarketQuery {
	return usecase.NewMarketQuery(bars, correlator, cache, engine)
}

// ProvideSignalIngest creates the webhook ingestion use case.
func ProvideSignalIngest(signals repository.SignalStore, m repository.Metrics) *usecase.SignalIngest {
	return usecase.NewSignalIngest(signals, m)
}

// ProvideHTTPHandler creates the Echo handler with infrastructure health checks.
func ProvideHTTPHandler(
	l *applogger.Logger,
	query *usecase.MarketQuery,
	ingest *usecase.SignalIngest,
	registry repository.SymbolRegistry,
	chClient *pkgch.Client,
	redisClient *redis.Client,
) *api.MarketEchoHandler {
	health := map[string]api.HealthCheck{
		"clickhouse": chClient.Health,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
	return api.NewMarketEchoHandler(l, query, ingest, registry, health)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.FeedCollector,
	handler *api.MarketEchoHandler,
	publisher repository.BarPublisher,
	chClient *pkgch.Client,
	redisClient *redis.Client,
) *server.App {
	return server.New(cfg, l, collector, handler, publisher, chClient, redisClient)
}
