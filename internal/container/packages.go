package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/events"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	startupTimeout = 10 * time.Second

	consumerGroupName = "url-shortener"
)

// Store is the primary mapping store together with its lifecycle hooks.
type Store interface {
	shortener.Repository
	health.Checker
}

// RedisClient owns the shared Redis connection pool.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the connection pool.
func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// NewLogger builds a zap logger for the given format and level.
func NewLogger(format, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("%w: redis address is not configured", ErrInvalidOptions)
		}

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// StorePackage provides the configured primary store. SQL stores create
// their schema on first use.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (Store, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		switch opts.Storage {
		case StorageMemory:
			return store.NewMemoryStore(), nil
		case StorageRedis:
			client := do.MustInvoke[*RedisClient](i)

			return store.NewRedisStore(client.Client), nil
		case StoragePostgres:
			pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("connect postgres: %w", err)
			}

			pgStore := store.NewPostgresStore(pool)
			if err := pgStore.Migrate(ctx); err != nil {
				pool.Close()

				return nil, err
			}

			return pgStore, nil
		default:
			sqliteStore, err := store.OpenSQLiteStore(ctx, opts.SQLitePath)
			if err != nil {
				return nil, err
			}

			return sqliteStore, nil
		}
	})
}

// RepositoryPackage provides the repository used by the services. A Redis
// read cache is layered over SQL and memory stores when a Redis address and
// a positive TTL are configured.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		primary := do.MustInvoke[Store](i)

		if opts.RedisAddr == "" || opts.CacheTTL() <= 0 || opts.Storage == StorageRedis {
			return primary, nil
		}

		client := do.MustInvoke[*RedisClient](i)

		return store.NewRedisCacheRepository(primary, client.Client, opts.CacheTTL()), nil
	})
}

func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Registrar, error) {
		opts := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[shortener.Repository](i)

		generate, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewRegistrar(repo, generate, opts.MaxAttempts)
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Resolver, error) {
		return shortener.NewResolver(do.MustInvoke[shortener.Repository](i)), nil
	})
}

// EventsPackage provides the publisher for mapping events. The channel
// backend shares one in-process GoChannel between publisher and subscriber.
func EventsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(gochannel.Config{}, messaging.NewZapLoggerAdapter(logger)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var publisher message.Publisher

		if opts.EventsBackend == EventsRedis {
			client := do.MustInvoke[*RedisClient](i)

			redisPublisher, err := redisstream.NewPublisher(
				redisstream.PublisherConfig{Client: client.Client},
				messaging.NewZapLoggerAdapter(logger),
			)
			if err != nil {
				return nil, fmt.Errorf("create redis stream publisher: %w", err)
			}

			publisher = redisPublisher
		} else {
			publisher = do.MustInvoke[*gochannel.GoChannel](i)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[events.MappingCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return events.NewMappingCreatedPublisher(group.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the consumers that feed mapping events to
// the audit sink.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var subscriber message.Subscriber

		if opts.EventsBackend == EventsRedis {
			client := do.MustInvoke[*RedisClient](i)

			redisSubscriber, err := redisstream.NewSubscriber(
				redisstream.SubscriberConfig{
					Client:        client.Client,
					ConsumerGroup: consumerGroupName,
				},
				messaging.NewZapLoggerAdapter(logger),
			)
			if err != nil {
				return nil, fmt.Errorf("create redis stream subscriber: %w", err)
			}

			subscriber = redisSubscriber
		} else {
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(events.NewMappingCreatedConsumer(subscriber, events.NewLogSink(logger), logger))

		return group, nil
	})
}

// MetricsPackage provides the Prometheus registry and the service collectors.
func MetricsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*prometheus.Registry, error) {
		return metrics.NewRegistry(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(do.MustInvoke[*prometheus.Registry](i)), nil
	})
}

// HTTPPackage provides the router and the API with all routes registered.
// GET /metrics is served by chi directly so scrapes stay out of the API docs
// and the request metrics.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		reg := do.MustInvoke[*prometheus.Registry](i)

		router := chi.NewMux()
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		serviceMetrics := do.MustInvoke[*metrics.Metrics](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestLogger(logger), middleware.RequestMetrics(serviceMetrics))

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Registrar](i),
			do.MustInvoke[*shortener.Resolver](i),
			opts.ShortLinkBase(),
			do.MustInvoke[messaging.Publish[events.MappingCreatedEvent]](i),
			serviceMetrics,
			logger,
		)

		handlers.RegisterRoutes(api, urlHandler)
		health.RegisterRoutes(api, health.NewHandler(healthDependencies(i, opts)...))

		return api, nil
	})
}

func healthDependencies(i *do.Injector, opts *Options) []health.Dependency {
	deps := []health.Dependency{{Name: "store", Checker: do.MustInvoke[Store](i)}}

	if opts.RedisAddr != "" && opts.Storage != StorageRedis {
		client := do.MustInvoke[*RedisClient](i)
		deps = append(deps, health.Dependency{Name: "cache", Checker: health.NewRedisChecker(client.Client)})
	}

	return deps
}
