package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suniel12/insightpic/internal/config"
	"github.com/suniel12/insightpic/internal/core/ports"
	"github.com/suniel12/insightpic/internal/core/usecase"
	"github.com/suniel12/insightpic/internal/infrastructure/categorize"
	"github.com/suniel12/insightpic/internal/infrastructure/imagesource/localfs"
	"github.com/suniel12/insightpic/internal/infrastructure/queue/nats"
	"github.com/suniel12/insightpic/internal/infrastructure/repository/postgres"
	"github.com/suniel12/insightpic/internal/infrastructure/resilience"
	"github.com/suniel12/insightpic/internal/infrastructure/vision"
)

type App struct {
	Config config.Config

	Queue      ports.ScoreQueue
	Repo       ports.PhotoRepository
	Images     ports.ImageSource
	BatchUC    *usecase.BatchScoreUseCase
	Screenshot ports.ScreenshotDetector

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewPhotoRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	images, err := localfs.NewSource(cfg.PhotoLibraryPath, logger)
	if err != nil {
		return nil, fmt.Errorf("init photo library: %w", err)
	}

	executorCfg := resilience.DefaultConfig()
	executorCfg.RetryMaxAttempts = cfg.VisionMaxAttempts
	executorCfg.RateLimitRPS = cfg.VisionRateLimitRPS
	executorCfg.RateLimitBurst = cfg.VisionRateLimitBurst
	executor := resilience.NewExecutor(executorCfg)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init score queue: %w", err)
	}

	// No external detectors are wired yet; the orchestrator degrades their
	// observations and the heuristic measurements still run.
	provider := vision.NewResilientProvider(vision.Unavailable{}, executor)

	weights := usecase.DefaultWeightTable()
	if cfg.WeightsPath != "" {
		weights, err = usecase.LoadWeightTable(cfg.WeightsPath)
		if err != nil {
			return nil, fmt.Errorf("load weight table: %w", err)
		}
	}

	analyzer := usecase.NewAnalyzePhotoUseCase(provider, logger)
	scorer := usecase.NewScorePhotoUseCase(
		categorize.NewHeuristicCategorizer(),
		categorize.NewObservationContextProvider(),
		weights,
		logger,
	)
	batchUC := usecase.NewBatchScoreUseCase(analyzer, scorer, images, repo, logger)

	return &App{
		Config: cfg,

		Queue:      queue,
		Repo:       repo,
		Images:     images,
		BatchUC:    batchUC,
		Screenshot: usecase.NewScreenshotHeuristic(),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
