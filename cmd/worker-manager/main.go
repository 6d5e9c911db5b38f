package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-assistant/internal/analytics"
	"chat-assistant/internal/api"
	"chat-assistant/internal/chatbot"
	awsclient "chat-assistant/internal/common/aws"
	"chat-assistant/internal/common/camunda"
	"chat-assistant/internal/common/config"
	"chat-assistant/internal/common/database"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/common/observability"
	"chat-assistant/internal/docstore"
	"chat-assistant/internal/notify"
	"chat-assistant/internal/repository"
	"chat-assistant/internal/scheduler"

	cb "chat-assistant/internal/workers/chat/create-booking"
	gr "chat-assistant/internal/workers/chat/generate-response"
	ubs "chat-assistant/internal/workers/chat/update-booking-status"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{cfg.Logging.Output},
		ServiceName: cfg.App.Name,
	})
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Error("worker manager stopped with error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"store":       cfg.Store.Backend,
	})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("otel prometheus exporter unavailable, otel metrics disabled", map[string]interface{}{"error": err.Error()})
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()
	checks := []api.ReadinessCheck{{Name: "store", Check: store.Ping}}

	var rdb *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		rdb = database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		checks = append(checks, api.ReadinessCheck{Name: "redis", Check: rdb.Ping})
	}

	var types repository.TypeCache = repository.NewMemoryTypeCache(config.GetDuration(cfg.Chatbot.TypeCacheTTL))
	if rdb != nil {
		types = repository.NewRedisTypeCache(rdb.Client, config.GetDuration(cfg.Chatbot.TypeCacheTTL))
	}
	repo := repository.New(store, types, repository.Options{CategoryLimit: cfg.Chatbot.CategoryLimit}, log)

	contexts, err := openContextStore(cfg, rdb)
	if err != nil {
		return err
	}

	var es *database.ElasticsearchClient
	if cfg.Analytics.ElasticsearchEnabled {
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		checks = append(checks, api.ReadinessCheck{Name: "elasticsearch", Check: es.Ping})
	}
	sink := openAnalytics(cfg, store, es, log)

	notifier, err := openNotifier(ctx, cfg, repo, log)
	if err != nil {
		return err
	}

	responder := chatbot.NewResponder(repo, contexts, sink, obs, chatbot.Options{
		JobLimit:       cfg.Chatbot.JobResultLimit,
		SearchAllLimit: cfg.Chatbot.SearchAllLimit,
		BookingLimit:   cfg.Chatbot.BookingLimit,
		CategoryLimit:  cfg.Chatbot.CategoryLimit,
		FollowUps:      cfg.Chatbot.FollowUpsEnabled,
	}, log)

	var zeebe zbc.Client
	var workers []*camunda.Worker
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
		if err != nil {
			return err
		}
		defer zeebe.Close()
		checks = append(checks, api.ReadinessCheck{Name: "zeebe", Check: func(ctx context.Context) error {
			return camunda.HealthCheck(ctx, zeebe)
		}})
		workers = startWorkers(cfg, zeebe, repo, responder, notifier, log)
	}

	var cron *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		cron = scheduler.New(cfg.Scheduler.TypeCacheRefresh, repo, log)
		if err := cron.Start(ctx); err != nil {
			return err
		}
	}

	apiServer := api.New(repo, responder, notifier, cfg.Server, log).HTTPServer()
	opsServer := api.OpsServer(cfg.Server.HealthPort, checks...)

	serveErr := make(chan error, 2)
	for _, srv := range []*http.Server{apiServer, opsServer} {
		go func(srv *http.Server) {
			log.Info("http server listening", map[string]interface{}{"addr": srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("http server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err = <-serveErr:
		log.Error("server failed, shutting down", map[string]interface{}{"error": err.Error()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range []*http.Server{apiServer, opsServer} {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			log.Warn("http server shutdown", map[string]interface{}{"addr": srv.Addr, "error": serr.Error()})
		}
	}
	for _, w := range workers {
		w.Stop()
	}
	if cron != nil {
		cron.Stop(shutdownCtx)
	}
	if serr := obs.Shutdown(shutdownCtx); serr != nil {
		log.Warn("observability shutdown", map[string]interface{}{"error": serr.Error()})
	}

	log.Info("worker manager stopped", nil)
	return err
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (docstore.Store, error) {
	var store docstore.Store
	switch cfg.Store.Backend {
	case config.StoreBackendFirestore:
		client, err := database.NewFirestore(ctx, cfg.Store.Firestore)
		if err != nil {
			return nil, err
		}
		store = docstore.NewFirestoreStore(client)
	case config.StoreBackendPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		store = docstore.NewPostgresStore(pg.DB, cfg.Database.Postgres.Table)
	default:
		mem := docstore.NewMemoryStore()
		if cfg.Store.SeedFile != "" {
			n, err := mem.LoadSeedFile(cfg.Store.SeedFile)
			if err != nil {
				return nil, err
			}
			log.Info("memory store seeded", map[string]interface{}{"documents": n, "file": cfg.Store.SeedFile})
		}
		store = mem
	}
	return docstore.Instrument(store, cfg.Store.Backend, config.GetDuration(cfg.Store.Timeout)), nil
}

func openContextStore(cfg *config.Config, rdb *database.RedisClient) (chatbot.ContextStore, error) {
	ttl := config.GetDuration(cfg.Chatbot.ContextTTL)
	if cfg.Chatbot.ContextBackend == config.ContextBackendRedis {
		if rdb == nil {
			return nil, fmt.Errorf("redis context store selected without database.redis.address")
		}
		return chatbot.NewRedisContextStore(rdb.Client, ttl, nil), nil
	}
	return chatbot.NewMemoryContextStore(ttl, nil), nil
}

// openAnalytics returns nil when no sink is enabled.
func openAnalytics(cfg *config.Config, store docstore.Store, es *database.ElasticsearchClient, log logger.Logger) chatbot.InteractionSink {
	var sinks []analytics.Sink
	if cfg.Analytics.DocStoreEnabled {
		sinks = append(sinks, analytics.NewDocStoreSink(store))
	}
	if es != nil {
		sinks = append(sinks, analytics.NewElasticsearchSink(es.Client, cfg.Analytics.ElasticsearchIndex))
	}
	if len(sinks) == 0 {
		return nil
	}
	return analytics.NewMultiSink(log, sinks...)
}

func openNotifier(ctx context.Context, cfg *config.Config, repo *repository.Repository, log logger.Logger) (*notify.Notifier, error) {
	opts := notify.OptionsFromConfig(cfg.Notifications)
	if !opts.EmailEnabled && !opts.SMSEnabled {
		return notify.New(repo, nil, nil, opts, log), nil
	}
	clients, err := awsclient.NewClients(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		return nil, err
	}
	return notify.New(repo, clients.SES, clients.SNS, opts, log), nil
}

func startWorkers(cfg *config.Config, client zbc.Client, repo *repository.Repository, responder *chatbot.Responder, notifier *notify.Notifier, log logger.Logger) []*camunda.Worker {
	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.JobHandler) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			return
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(client, taskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, log))
	}

	grConfig := gr.LoadConfig()
	grConfig.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, gr.TaskType).Timeout)
	start(gr.TaskType, gr.NewHandler(grConfig, responder, log))

	cbConfig := cb.LoadConfig()
	cbConfig.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, cb.TaskType).Timeout)
	start(cb.TaskType, cb.NewHandler(cbConfig, repo, notifier, log))

	ubsConfig := ubs.LoadConfig()
	ubsConfig.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, ubs.TaskType).Timeout)
	start(ubs.TaskType, ubs.NewHandler(ubsConfig, repo, notifier, log))

	log.Info("workers registered", map[string]interface{}{"count": len(workers)})
	return workers
}
