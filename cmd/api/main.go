package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"scenesmith/internal/adapter/repo"
	"scenesmith/internal/http/handlers"
	"scenesmith/internal/http/httpapi"
	"scenesmith/internal/infra"
	"scenesmith/internal/infra/settings"
	"scenesmith/internal/providers/genai"
	"scenesmith/internal/providers/image"
	"scenesmith/internal/queue"
	"scenesmith/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	jobs := repo.NewJobRepository(runner)
	sources := repo.NewPromptSourceRepository(runner)
	images := repo.NewImageRepository(runner)
	settingsStore := settings.NewStore(runner, cfg.GenerationAPIKey, cfg.GenerationDelay)

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}

	client, err := genai.NewClient(genai.Options{
		KeySource:      settingsStore.APIKey,
		BaseURL:        cfg.GenerationBaseURL,
		Model:          cfg.GenerationModel,
		Logger:         &logger,
		AllowSynthetic: cfg.AllowSynthetic,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}

	processor := queue.NewProcessor(queue.Options{
		Jobs:         jobs,
		Sources:      sources,
		Images:       images,
		Settings:     settingsStore,
		Generator:    image.NewGeminiGenerator(client),
		Store:        fileStoreAdapter{store},
		Logger:       logger,
		PollInterval: cfg.QueuePollInterval,
	})

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("queue worker stopped")
		}
	}()

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		Jobs:     jobs,
		Sources:  sources,
		Images:   images,
		Settings: settingsStore,
		Queue:    processor,
		Assets:   store,
	}
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	if err := server.Stop(context.Background()); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	<-workerDone
	logger.Info().Msg("server stopped")
}

// fileStoreAdapter narrows storage.FileStore to the queue's persistence
// contract.
type fileStoreAdapter struct {
	store *storage.FileStore
}

func (a fileStoreAdapter) StoreImage(ctx context.Context, key string, data []byte) (queue.StoredImage, error) {
	stored, err := a.store.StoreImage(ctx, key, data)
	if err != nil {
		return queue.StoredImage{}, err
	}
	return queue.StoredImage{
		FilePath:      stored.FilePath,
		ThumbnailPath: stored.ThumbnailPath,
		Width:         stored.Width,
		Height:        stored.Height,
	}, nil
}
