// Package main wires together the menu discovery service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/api"
	"github.com/willzeng274/HaystackDiet/internal/cache"
	"github.com/willzeng274/HaystackDiet/internal/clock/system"
	"github.com/willzeng274/HaystackDiet/internal/config"
	"github.com/willzeng274/HaystackDiet/internal/dispatcher"
	"github.com/willzeng274/HaystackDiet/internal/extract"
	"github.com/willzeng274/HaystackDiet/internal/fanout"
	"github.com/willzeng274/HaystackDiet/internal/fetcher"
	collyfetcher "github.com/willzeng274/HaystackDiet/internal/fetcher/colly"
	headlessfetcher "github.com/willzeng274/HaystackDiet/internal/fetcher/headless"
	plainfetcher "github.com/willzeng274/HaystackDiet/internal/fetcher/plain"
	"github.com/willzeng274/HaystackDiet/internal/game"
	"github.com/willzeng274/HaystackDiet/internal/hash/sha256"
	"github.com/willzeng274/HaystackDiet/internal/id/uuid"
	"github.com/willzeng274/HaystackDiet/internal/llm"
	"github.com/willzeng274/HaystackDiet/internal/logging"
	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/metrics"
	"github.com/willzeng274/HaystackDiet/internal/places"
	"github.com/willzeng274/HaystackDiet/internal/processor"
	memorypublisher "github.com/willzeng274/HaystackDiet/internal/publisher/memory"
	pubsubpublisher "github.com/willzeng274/HaystackDiet/internal/publisher/pubsub"
	queuememory "github.com/willzeng274/HaystackDiet/internal/queue/memory"
	"github.com/willzeng274/HaystackDiet/internal/storage"
	"github.com/willzeng274/HaystackDiet/internal/storage/local"
	memorystorage "github.com/willzeng274/HaystackDiet/internal/storage/memory"
	"github.com/willzeng274/HaystackDiet/internal/worker"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storageCfg := storage.Config{
		BlobBackend:    cfg.Storage.BlobBackend,
		CatalogBackend: cfg.Storage.CatalogBackend,
		Local:          local.Config{BaseDir: cfg.Storage.LocalDir},
		GCSBucket:      cfg.Storage.GCSBucket,
		PostgresDSN:    cfg.Storage.PostgresDSN,
		PostgresTable:  cfg.Storage.PostgresTable,
	}
	blobStore, closeBlobs, err := storage.NewBlobStore(ctx, storageCfg)
	if err != nil {
		logger.Fatal("blob store init failed", zap.Error(err))
	}
	defer closeBlobs()
	catalogStore, closeCatalogs, err := storage.NewCatalogStore(ctx, storageCfg)
	if err != nil {
		logger.Fatal("catalog store init failed", zap.Error(err))
	}
	defer closeCatalogs()

	jobStore := memorystorage.NewJobStore()
	queue := queuememory.NewQueue(cfg.Discovery.QueueDepth)
	hasher := sha256.New()
	clock := system.New()
	idGen := uuid.New()

	var publisher menu.Publisher
	if cfg.PubSub.Enabled {
		psPublisher, err := pubsubpublisher.Connect(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
		if err != nil {
			logger.Fatal("pubsub publisher init failed", zap.Error(err))
		}
		defer func() {
			if closeErr := psPublisher.Close(); closeErr != nil {
				logger.Warn("pubsub close failed", zap.Error(closeErr))
			}
		}()
		publisher = psPublisher
	} else {
		publisher = memorypublisher.New()
	}

	tiers := []fetcher.Tier{
		{Name: "colly", Fetcher: collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.FetchTimeout(),
		})},
		{Name: "plain", Fetcher: plainfetcher.New(plainfetcher.Config{
			Timeout:      cfg.FetchTimeout(),
			MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		})},
	}
	if cfg.Headless.Enabled {
		headless, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Fetch.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Warn("headless fetcher init failed", zap.Error(err))
		} else {
			tiers = append(tiers, fetcher.Tier{Name: "headless", Fetcher: headless})
		}
	}
	var fetchOpts []fetcher.Option
	if blobStore != nil {
		fetchOpts = append(fetchOpts, fetcher.WithSnapshots(blobStore, hasher))
	}
	contentFetcher := fetcher.NewLayered(
		fetcher.Config{AttemptTimeout: cfg.FetchTimeout()},
		logger.Named("fetcher"),
		tiers,
		fetchOpts...,
	)

	completer := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	})
	synthesizer := llm.NewSynthesizer(completer, logger.Named("synthesizer"))

	locator := places.New(places.Config{
		APIKey:  cfg.Places.APIKey,
		BaseURL: cfg.Places.BaseURL,
		Timeout: time.Duration(cfg.Places.TimeoutSeconds) * time.Second,
	}, logger.Named("places"))

	pipeline := processor.New(contentFetcher, extract.New(), synthesizer, logger.Named("processor"))
	coordinator := fanout.New(locator, pipeline, logger.Named("fanout"))

	workerCfg := worker.Config{
		Topic:      cfg.PubSub.TopicName,
		JobTimeout: cfg.JobTimeout(),
	}
	var workers []*worker.Worker
	for i := 0; i < cfg.Discovery.Workers; i++ {
		workers = append(workers, worker.New(
			queue,
			jobStore,
			catalogStore,
			publisher,
			coordinator,
			workerCfg,
			logger.Named("worker").With(zap.Int("index", i)),
		))
	}
	dispatch := dispatcher.New(queue, workers)

	var engine *game.Engine
	if cfg.Game.Enabled {
		engine = game.NewEngine(
			completer,
			cache.NewMemory(),
			cache.NewMemory(),
			idGen,
			clock,
			logger.Named("game"),
		)
	}

	apiServer := api.NewServer(jobStore, catalogStore, dispatch, engine, idGen, clock, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("dispatcher started", zap.Int("workers", cfg.Discovery.Workers))
		dispatch.Run(ctx)
	}()

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	queue.Close()
	logger.Info("shutdown complete")
}
