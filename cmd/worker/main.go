package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suniel12/insightpic/internal/bootstrap"
	"github.com/suniel12/insightpic/internal/config"
	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/observability/logging"
	"github.com/suniel12/insightpic/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	scoringMetrics := metrics.NewScoringMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: scoringMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	w := &worker{
		app:     app,
		cfg:     cfg,
		logger:  logger,
		metrics: scoringMetrics,
	}

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeScoreRequests(ctx, w.handle)
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

type worker struct {
	app     *bootstrap.App
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.ScoringMetrics
}

var errPhotoSkipped = errors.New("photo skipped")

func (w *worker) handle(ctx context.Context, req domain.ScoreRequest) error {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	photos, err := w.resolvePhotos(runCtx, req)
	if err != nil {
		w.logger.Error("resolve batch photos failed", "request_id", req.RequestID, "error", err)
		return err
	}
	if len(photos) == 0 {
		w.logger.Info("batch request matched no photos", "request_id", req.RequestID)
		return nil
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = w.cfg.BatchChunkSize
	}

	w.metrics.StartBatch()
	defer w.metrics.FinishBatch()

	start := time.Now()
	progress := func(completed, total int) {
		w.metrics.ObserveProgress(serviceName, completed, total)
		w.logger.Info("batch progress",
			"request_id", req.RequestID,
			"completed", completed,
			"total", total,
		)
	}

	scores, err := w.app.BatchUC.ScoreBatchChunked(runCtx, photos, batchSize, progress)
	if err != nil {
		return err
	}

	perPhoto := time.Since(start) / time.Duration(len(photos))
	for _, photo := range photos {
		if _, ok := scores[photo.ID]; ok {
			w.metrics.FinishPhoto(serviceName, perPhoto, nil)
		} else {
			w.metrics.FinishPhoto(serviceName, perPhoto, errPhotoSkipped)
		}
		if w.app.Screenshot.IsLikelyScreenshot(photo) {
			w.metrics.FlagScreenshot(serviceName)
		}
	}

	w.logger.Info("batch request done",
		"request_id", req.RequestID,
		"photos", len(photos),
		"scored", len(scores),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (w *worker) resolvePhotos(ctx context.Context, req domain.ScoreRequest) ([]domain.Photo, error) {
	if len(req.PhotoIDs) == 0 {
		return w.app.Repo.LoadPhotosWithoutScores(ctx)
	}

	photos := make([]domain.Photo, 0, len(req.PhotoIDs))
	for _, id := range req.PhotoIDs {
		photo, err := w.app.Repo.LoadPhoto(ctx, id)
		if err != nil {
			if domain.IsKind(err, domain.ErrPhotoNotFound) {
				w.logger.Warn("skip unknown photo in batch", "request_id", req.RequestID, "photo_id", id)
				continue
			}
			return nil, err
		}
		photos = append(photos, *photo)
	}
	return photos, nil
}
