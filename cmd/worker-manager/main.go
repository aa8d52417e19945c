// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"workforce-intelligence/internal/api"
	"workforce-intelligence/internal/common/aws"
	"workforce-intelligence/internal/common/camunda"
	"workforce-intelligence/internal/common/config"
	"workforce-intelligence/internal/common/database"
	"workforce-intelligence/internal/common/logger"
	"workforce-intelligence/internal/common/observability"
	"workforce-intelligence/internal/reliability"
	"workforce-intelligence/internal/store"
	"workforce-intelligence/pkg/registry"

	aw "workforce-intelligence/internal/workers/intelligence/analyze-workforce"
	ra "workforce-intelligence/internal/workers/intelligence/record-analysis"
	sr "workforce-intelligence/internal/workers/intelligence/send-report"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// backends holds the optional clients. A nil field means the backend is not configured.
type backends struct {
	pg     *database.PostgresClient
	redis  *database.RedisClient
	es     *database.ElasticsearchClient
	repo   *store.AnalysisRepository
	cache  *store.ResultCache
	index  *store.ReportIndex
	mailer *aws.ReportMailer
	alerts *aws.AlertPublisher
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name, prometheus.DefaultRegisterer)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := reliability.NewEngine(cfg.Reliability)
	if err != nil {
		zapLog.Fatal("invalid reliability configuration", zap.Error(err))
	}

	b, err := connectBackends(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("backend initialization failed", zap.Error(err))
	}
	defer b.close(log)

	reg := loadRegistry(cfg, log)

	// --- Zeebe workers ---
	var (
		zeebe   *camunda.Client
		workers []*camunda.CamundaWorker
	)
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClient(ctx, camunda.ConfigFromSettings(cfg.Camunda), log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		workers = startWorkers(cfg, zeebe, engine, b, obs, log)
	}

	// --- HTTP API ---
	var server *api.Server
	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		server, err = api.NewServer(cfg.Server, api.Dependencies{
			Engine:      engine,
			Store:       optionalStore(b.repo),
			Cache:       optionalCache(b.cache),
			Index:       optionalIndex(b.index),
			Mailer:      optionalMailer(b.mailer),
			Registry:    reg,
			ReadyChecks: b.readyChecks(),
			Logger:      log,
			App:         cfg.App,
		})
		if err != nil {
			zapLog.Fatal("api server setup failed", zap.Error(err))
		}
		go func() {
			serverErr <- server.Start()
		}()
	}

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping workers...")
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("intake API failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error shutting down intake API", zap.Error(err))
		}
	}
	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("Error flushing metrics", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func connectBackends(ctx context.Context, cfg *config.Config, log logger.Logger) (*backends, error) {
	b := &backends{}

	// --- PostgreSQL with retry ---
	if cfg.Database.Postgres.Configured() {
		err := retryWithBackoff(func() error {
			var err error
			b.pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}

		b.repo = store.NewAnalysisRepository(b.pg.DB, log)
		if err := b.repo.Migrate(ctx); err != nil {
			return nil, err
		}
		log.Info("PostgreSQL connected successfully", nil)
	}

	// --- Redis ---
	if cfg.Database.Redis.Configured() && cfg.Cache.Enabled {
		b.redis = database.NewRedis(cfg.Database.Redis)
		if err := b.redis.Ping(ctx); err != nil {
			// Analyses still run without the cache.
			log.Warn("Redis unreachable at startup, cache lookups will miss", map[string]interface{}{"error": err})
		}
		b.cache = store.NewResultCache(b.redis.Client, time.Duration(cfg.Cache.TTL)*time.Second, cfg.Cache.KeyPrefix)
	}

	// --- Elasticsearch ---
	if cfg.Database.Elasticsearch.Configured() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			return nil, err
		}
		if err := es.Ping(ctx); err != nil {
			log.Warn("Elasticsearch unreachable at startup", map[string]interface{}{"error": err})
		}
		b.es = es
		b.index = store.NewReportIndex(es.Client, cfg.Database.Elasticsearch.ReportIndex)
	}

	// --- AWS notifications ---
	n := cfg.Notifications
	if n.Email.Enabled || n.Alerts.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		if n.Email.Enabled {
			b.mailer = aws.NewReportMailer(aws.NewSESClient(awsCfg), n.Email.FromEmail, n.Email.SubjectPrefix)
		}
		if n.Alerts.Enabled {
			b.alerts = aws.NewAlertPublisher(aws.NewSNSClient(awsCfg), n.Alerts.TopicARN)
		}
	}

	log.Info("Backends initialized", map[string]interface{}{
		"postgres":      b.repo != nil,
		"redis":         b.cache != nil,
		"elasticsearch": b.index != nil,
		"email":         b.mailer != nil,
		"alerts":        b.alerts != nil,
	})
	return b, nil
}

func (b *backends) readyChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{}
	if b.pg != nil {
		checks["postgres"] = b.pg.Ping
	}
	if b.redis != nil {
		checks["redis"] = b.redis.Ping
	}
	if b.es != nil {
		checks["elasticsearch"] = b.es.Ping
	}
	return checks
}

func (b *backends) close(log logger.Logger) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn("Error closing Redis", map[string]interface{}{"error": err})
		}
	}
	if b.pg != nil {
		if err := b.pg.Close(); err != nil {
			log.Warn("Error closing PostgreSQL", map[string]interface{}{"error": err})
		}
	}
}

func startWorkers(
	cfg *config.Config,
	zeebe *camunda.Client,
	engine *reliability.Engine,
	b *backends,
	obs *observability.Observability,
	log logger.Logger,
) []*camunda.CamundaWorker {
	var workers []*camunda.CamundaWorker
	client := zeebe.GetClient()

	if wcfg := config.GetWorkerConfig(cfg, aw.TaskType); wcfg.Enabled {
		handler := aw.NewHandler(aw.LoadConfig(wcfg), engine, obs, log)
		workers = append(workers, camunda.NewWorker(client, aw.TaskType, wcfg, handler, obs, log))
	}

	if wcfg := config.GetWorkerConfig(cfg, ra.TaskType); wcfg.Enabled {
		if b.repo == nil {
			log.Warn("worker needs PostgreSQL, not starting", map[string]interface{}{"taskType": ra.TaskType})
		} else {
			handler := ra.NewHandler(ra.LoadConfig(wcfg), b.repo, recordIndex(b.index), log)
			workers = append(workers, camunda.NewWorker(client, ra.TaskType, wcfg, handler, obs, log))
		}
	}

	if wcfg := config.GetWorkerConfig(cfg, sr.TaskType); wcfg.Enabled {
		handler := sr.NewHandler(sr.LoadConfig(wcfg, cfg.Notifications), reportMailer(b.mailer), alertPublisher(b.alerts), log)
		workers = append(workers, camunda.NewWorker(client, sr.TaskType, wcfg, handler, obs, log))
	}

	log.Info("Workers started", map[string]interface{}{"count": len(workers)})
	return workers
}

// loadRegistry is advisory: a missing or invalid registry is logged, never fatal.
func loadRegistry(cfg *config.Config, log logger.Logger) *registry.ActivityRegistry {
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		log.Warn("activity registry not loaded", map[string]interface{}{"path": cfg.Registry.Path, "error": err})
		return nil
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry is invalid", map[string]interface{}{"path": cfg.Registry.Path, "error": err})
	}

	for taskType, wcfg := range cfg.Workers {
		if !wcfg.Enabled {
			continue
		}
		if _, ok := reg.FindByTaskType(taskType); !ok {
			log.Warn("enabled worker missing from activity registry", map[string]interface{}{"taskType": taskType})
		}
	}
	return reg
}

// The helpers below keep typed nil pointers out of interface values, so the
// consumers' nil checks see a disabled backend.

func optionalStore(repo *store.AnalysisRepository) api.AnalysisStore {
	if repo == nil {
		return nil
	}
	return repo
}

func optionalCache(cache *store.ResultCache) api.ResultCache {
	if cache == nil {
		return nil
	}
	return cache
}

func optionalIndex(index *store.ReportIndex) api.ReportIndex {
	if index == nil {
		return nil
	}
	return index
}

func optionalMailer(mailer *aws.ReportMailer) api.ReportMailer {
	if mailer == nil {
		return nil
	}
	return mailer
}

func recordIndex(index *store.ReportIndex) ra.ReportIndex {
	if index == nil {
		return nil
	}
	return index
}

func reportMailer(mailer *aws.ReportMailer) sr.ReportMailer {
	if mailer == nil {
		return nil
	}
	return mailer
}

func alertPublisher(alerts *aws.AlertPublisher) sr.AlertPublisher {
	if alerts == nil {
		return nil
	}
	return alerts
}
