package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"swaad-chat/internal/agent"
	"swaad-chat/internal/api"
	awsclient "swaad-chat/internal/common/aws"
	"swaad-chat/internal/common/config"
	"swaad-chat/internal/common/database"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/observability"
	"swaad-chat/internal/history"
	"swaad-chat/internal/jsonui"
	"swaad-chat/internal/menu"
	"swaad-chat/internal/models"
	"swaad-chat/internal/orders"
	"swaad-chat/internal/ratelimit"
)

const (
	sweepInterval     = time.Minute
	rateLimitPrefix   = "chat:ratelimit:"
	connectRetries    = 10
	connectRetryDelay = 2 * time.Second
)

// app holds the process-wide clients shared by every command.
type app struct {
	cfg *config.Config
	zap *zap.Logger
	log logger.Logger
	obs *observability.Observability

	pg    *database.PostgresClient
	es    *database.ElasticsearchClient
	redis *database.RedisClient

	// background loops such as the in-memory sweepers, run next to the
	// main server by the serve command.
	background []func(ctx context.Context) error
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// newApp builds the loggers and connects only the stores the configuration
// selects.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	a := &app{
		cfg: cfg,
		zap: zapLog,
		log: logger.NewZapAdapter(zapLog),
		obs: observability.New(cfg.App.Name, cfg.App.Version),
	}

	if a.needsPostgres() {
		err := retryWithBackoff(ctx, func() error {
			var err error
			a.pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return a.pg.Ping(ctx)
		}, connectRetries, connectRetryDelay, zapLog, "PostgreSQL connection")
		if err != nil {
			a.close()
			return nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	if a.needsElasticsearch() {
		err := retryWithBackoff(ctx, func() error {
			var err error
			a.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return a.es.Ping(ctx)
		}, connectRetries, connectRetryDelay, zapLog, "Elasticsearch connection")
		if err != nil {
			a.close()
			return nil, err
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	if a.needsRedis() {
		err := retryWithBackoff(ctx, func() error {
			var err error
			a.redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return a.redis.Ping(ctx)
		}, connectRetries, connectRetryDelay, zapLog, "Redis connection")
		if err != nil {
			a.close()
			return nil, err
		}
		zapLog.Info("Redis connected successfully")
	}

	return a, nil
}

func (a *app) needsPostgres() bool {
	return a.cfg.Menu.Source == "postgres" || a.cfg.Orders.Persist
}

func (a *app) needsElasticsearch() bool {
	return a.cfg.Menu.SearchBackend == "elasticsearch"
}

func (a *app) needsRedis() bool {
	return a.cfg.History.Backend == "redis" ||
		(a.cfg.RateLimit.Enabled && a.cfg.RateLimit.Backend == "redis")
}

func (a *app) close() {
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.zap.Error("Error closing PostgreSQL", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.zap.Error("Error closing Redis", zap.Error(err))
		}
	}
	a.obs.Shutdown()
	_ = a.zap.Sync()
}

// checkers lists the connected stores for the readiness check.
func (a *app) checkers() map[string]api.Checker {
	checkers := map[string]api.Checker{}
	if a.pg != nil {
		checkers["postgres"] = a.pg
	}
	if a.es != nil {
		checkers["elasticsearch"] = a.es
	}
	if a.redis != nil {
		checkers["redis"] = a.redis
	}
	return checkers
}

// loadMenu reads the catalog from the configured source.
func (a *app) loadMenu(ctx context.Context) (*menu.Catalog, error) {
	var (
		items []models.FoodItem
		err   error
	)
	switch a.cfg.Menu.Source {
	case "postgres":
		items, err = menu.LoadFromPostgres(ctx, a.pg.DB)
	default:
		items, err = menu.LoadFile(a.cfg.Menu.DatasetPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load menu from %s: %w", a.cfg.Menu.Source, err)
	}
	return menu.NewCatalog(items)
}

// elasticIndex is nil unless search runs on elasticsearch.
func (a *app) elasticIndex() (*menu.ElasticIndex, error) {
	if a.es == nil {
		return nil, nil
	}
	return menu.NewElasticIndex(a.es.Client, a.cfg.Menu.Index, a.log)
}

// buildMenu loads the catalog and, with an elasticsearch backend, indexes
// it so search sees the same items the catalog serves.
func (a *app) buildMenu(ctx context.Context) (*menu.Service, error) {
	catalog, err := a.loadMenu(ctx)
	if err != nil {
		return nil, err
	}
	index, err := a.elasticIndex()
	if err != nil {
		return nil, err
	}
	if index == nil {
		a.log.Info("menu loaded", map[string]interface{}{"items": catalog.Count(), "search": "memory"})
		return menu.NewService(catalog, nil, a.log), nil
	}

	if err := index.IndexItems(ctx, catalog.All()); err != nil {
		return nil, err
	}
	a.log.Info("menu loaded", map[string]interface{}{"items": catalog.Count(), "search": "elasticsearch"})
	return menu.NewService(catalog, index, a.log), nil
}

func (a *app) buildHistory() history.Store {
	ttl := time.Duration(a.cfg.History.TTL) * time.Second
	if a.cfg.History.Backend == "redis" {
		return history.NewRedisStore(a.redis.Client, a.cfg.History.KeyPrefix, a.cfg.History.MaxMessages, ttl, a.log)
	}
	store := history.NewMemoryStore(a.cfg.History.MaxMessages, ttl)
	a.background = append(a.background, func(ctx context.Context) error {
		return store.RunSweeper(ctx, sweepInterval)
	})
	return store
}

func (a *app) buildLimiter() ratelimit.Limiter {
	rl := a.cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.Unlimited{}
	}
	limits := ratelimit.Limits{
		SessionRequests: rl.SessionRequests,
		GlobalRequests:  rl.GlobalRequests,
		Window:          config.GetDuration(rl.Window),
	}
	if rl.Backend == "redis" {
		return ratelimit.NewRedisLimiter(a.redis.Client, limits, rateLimitPrefix, a.log)
	}
	limiter := ratelimit.NewMemoryLimiter(limits)
	a.background = append(a.background, func(ctx context.Context) error {
		return limiter.RunSweeper(ctx, sweepInterval)
	})
	return limiter
}

// buildAssembler wires the JSON-UI validator into the block assembler.
func (a *app) buildAssembler() (*agent.Assembler, *jsonui.Validator, error) {
	validator, err := jsonui.NewValidator()
	if err != nil {
		return nil, nil, err
	}
	policy := agent.NewPolicy(a.cfg.JSONUI.Categories)
	return agent.NewAssembler(validator, policy, a.log), validator, nil
}

func (a *app) orderRepository() orders.Repository {
	if a.cfg.Orders.Persist {
		return orders.NewPostgresRepository(a.pg.DB)
	}
	return orders.NewMemoryRepository()
}

// buildNotifier creates AWS clients only for enabled channels. A notifier
// with neither channel sends nothing.
func (a *app) buildNotifier(ctx context.Context) (*orders.AWSNotifier, error) {
	n := a.cfg.Notifications

	var sesClient awsclient.SESAPI
	if n.Email.Enabled {
		c, err := awsclient.NewSESClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		sesClient = c
	}

	var snsClient awsclient.SNSAPI
	if n.SMS.Enabled {
		c, err := awsclient.NewSNSClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		snsClient = c
	}

	return orders.NewAWSNotifier(orders.NotifierConfig{
		EmailEnabled: n.Email.Enabled,
		FromEmail:    n.Email.FromEmail,
		SMSEnabled:   n.SMS.Enabled,
		SenderID:     n.SMS.SenderID,
	}, sesClient, snsClient, a.log), nil
}
