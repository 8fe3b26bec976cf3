package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/core/ports"
)

const (
	// DefaultChunkSize bounds work-in-flight for chunked batch scoring.
	DefaultChunkSize = 20
	// DefaultRescoreThreshold selects photos worth a second scoring pass.
	DefaultRescoreThreshold = 0.3
)

// BatchScoreUseCase drives the analyzer and scorer across photo
// collections. Individual photo failures are logged and skipped; the batch
// call itself only fails on malformed input or cancellation. Successful
// scores are persisted through the repository; a failed photo never gets a
// partial score.
type BatchScoreUseCase struct {
	analyzer ports.PhotoAnalyzer
	scorer   ports.PhotoScorer
	images   ports.ImageSource
	repo     ports.PhotoRepository
	logger   *slog.Logger
}

func NewBatchScoreUseCase(
	analyzer ports.PhotoAnalyzer,
	scorer ports.PhotoScorer,
	images ports.ImageSource,
	repo ports.PhotoRepository,
	logger *slog.Logger,
) *BatchScoreUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchScoreUseCase{
		analyzer: analyzer,
		scorer:   scorer,
		images:   images,
		repo:     repo,
		logger:   logger,
	}
}

// ScoreBatch scores photos sequentially in input order. The progress
// callback fires after every photo, success or failure, so the completed
// count always reaches len(photos).
func (uc *BatchScoreUseCase) ScoreBatch(ctx context.Context, photos []domain.Photo, progress ports.ProgressFunc) (map[string]domain.PhotoScore, error) {
	if photos == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "score batch", errors.New("nil photo collection"))
	}

	scores := make(map[string]domain.PhotoScore, len(photos))
	total := len(photos)
	for i, photo := range photos {
		if err := ctx.Err(); err != nil {
			return scores, err
		}

		score, err := uc.scoreOne(ctx, photo)
		if err != nil {
			uc.logger.Warn("photo skipped",
				"photo_id", photo.ID,
				"asset", photo.AssetIdentifier,
				"error", err,
			)
		} else {
			scores[photo.ID] = score
		}

		if progress != nil {
			progress(i+1, total)
		}
	}
	return scores, nil
}

// ScoreBatchChunked partitions photos into sequential chunks and scores each
// chunk's photos concurrently. Chunking only bounds peak work-in-flight; the
// result mapping is independent of execution order and progress counts stay
// monotonic.
func (uc *BatchScoreUseCase) ScoreBatchChunked(ctx context.Context, photos []domain.Photo, batchSize int, progress ports.ProgressFunc) (map[string]domain.PhotoScore, error) {
	if photos == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "score batch", errors.New("nil photo collection"))
	}
	if batchSize <= 0 {
		batchSize = DefaultChunkSize
	}

	scores := make(map[string]domain.PhotoScore, len(photos))
	total := len(photos)
	completed := 0

	var mu sync.Mutex
	for start := 0; start < len(photos); start += batchSize {
		if err := ctx.Err(); err != nil {
			return scores, err
		}

		end := start + batchSize
		if end > len(photos) {
			end = len(photos)
		}

		var wg sync.WaitGroup
		for _, photo := range photos[start:end] {
			wg.Add(1)
			go func(photo domain.Photo) {
				defer wg.Done()
				score, err := uc.scoreOne(ctx, photo)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					uc.logger.Warn("photo skipped",
						"photo_id", photo.ID,
						"asset", photo.AssetIdentifier,
						"error", err,
					)
				} else {
					scores[photo.ID] = score
				}
				completed++
				if progress != nil {
					progress(completed, total)
				}
			}(photo)
		}
		wg.Wait()
	}
	return scores, nil
}

// RescoreLowQuality reruns scoring for photos with no persisted score or one
// below the threshold, routed through the chunked scorer.
func (uc *BatchScoreUseCase) RescoreLowQuality(ctx context.Context, threshold float64, progress ports.ProgressFunc) (map[string]domain.PhotoScore, error) {
	if threshold <= 0 {
		threshold = DefaultRescoreThreshold
	}

	photos, err := uc.repo.LoadPhotos(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "rescore low quality", err)
	}

	candidates := make([]domain.Photo, 0, len(photos))
	for _, photo := range photos {
		if !photo.IsScored() || *photo.OverallScore < threshold {
			candidates = append(candidates, photo)
		}
	}
	uc.logger.Info("rescoring low quality photos", "candidates", len(candidates), "threshold", threshold)

	return uc.ScoreBatchChunked(ctx, candidates, DefaultChunkSize, progress)
}

// ScorePhoto runs the full load-analyze-score-save path for one photo.
func (uc *BatchScoreUseCase) ScorePhoto(ctx context.Context, photo domain.Photo) (domain.PhotoScore, error) {
	return uc.scoreOne(ctx, photo)
}

func (uc *BatchScoreUseCase) scoreOne(ctx context.Context, photo domain.Photo) (domain.PhotoScore, error) {
	img, err := uc.images.LoadFullResolutionImage(ctx, photo.AssetIdentifier)
	if err != nil {
		return domain.PhotoScore{}, err
	}

	result, err := uc.analyzer.Analyze(ctx, photo, img)
	if err != nil {
		return domain.PhotoScore{}, err
	}

	score, err := uc.scorer.Score(ctx, photo, result)
	if err != nil {
		return domain.PhotoScore{}, err
	}

	if uc.repo != nil {
		if err := uc.repo.SavePhoto(ctx, photo.WithScore(score)); err != nil {
			return domain.PhotoScore{}, err
		}
	}
	return score, nil
}
