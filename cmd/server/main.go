package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"corpcheck/internal/evaluation"
	"corpcheck/internal/lifecycle"
	lifecyclemetrics "corpcheck/internal/lifecycle/metrics"
	"corpcheck/internal/lifecycle/ports"
	"corpcheck/internal/lifecycle/store"
	"corpcheck/internal/platform/config"
	"corpcheck/internal/platform/httpserver"
	"corpcheck/internal/platform/logger"
	"corpcheck/internal/platform/postgres"
	platformredis "corpcheck/internal/platform/redis"
	"corpcheck/internal/queue"
	httptransport "corpcheck/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	packages := store.NewPostgresPackageStore(pool)
	var evaluations ports.EvaluationStore = store.NewPostgresEvaluationStore(pool)
	if redisClient != nil {
		evaluations = store.NewCachedEvaluationStore(evaluations, redisClient.Client, cfg.EvaluationCacheTTL, log)
	}

	taskQueue, err := queue.NewKafkaTaskQueue(cfg.KafkaBrokers, cfg.KafkaTaskTopic)
	if err != nil {
		log.Error("kafka producer setup failed", "error", err)
		os.Exit(1)
	}
	defer taskQueue.Close()

	svc, err := lifecycle.New(packages, evaluations, taskQueue, evaluation.NewScorer(),
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(lifecyclemetrics.New()),
		lifecycle.WithConfig(lifecycle.Config{
			PendingMaxAge: cfg.PendingMaxAge,
			SuccessMaxAge: cfg.SuccessMaxAge,
		}),
	)
	if err != nil {
		log.Error("lifecycle setup failed", "error", err)
		os.Exit(1)
	}

	consumer, err := queue.NewCompletionConsumer(cfg.KafkaBrokers, cfg.KafkaCompletionTopic, cfg.KafkaConsumerGroup, svc, log)
	if err != nil {
		log.Error("kafka consumer setup failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.New(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting corpcheck", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
