package ports

import (
	"context"
	"image"

	"github.com/suniel12/insightpic/internal/core/domain"
)

// PhotoAnalyzer is the inbound contract for single-photo analysis.
type PhotoAnalyzer interface {
	Analyze(ctx context.Context, photo domain.Photo, img image.Image) (domain.AnalysisResult, error)
}

// PhotoScorer turns a completed analysis into a PhotoScore.
type PhotoScorer interface {
	Score(ctx context.Context, photo domain.Photo, result domain.AnalysisResult) (domain.PhotoScore, error)
}

// ProgressFunc reports batch progress. Completed increases monotonically by
// one per photo, success or failure, and always reaches total.
type ProgressFunc func(completed, total int)

// BatchPhotoScorer drives analysis and scoring over photo collections.
type BatchPhotoScorer interface {
	ScoreBatch(ctx context.Context, photos []domain.Photo, progress ProgressFunc) (map[string]domain.PhotoScore, error)
	ScoreBatchChunked(ctx context.Context, photos []domain.Photo, batchSize int, progress ProgressFunc) (map[string]domain.PhotoScore, error)
	RescoreLowQuality(ctx context.Context, threshold float64, progress ProgressFunc) (map[string]domain.PhotoScore, error)
}

// ScreenshotDetector flags photos that are likely non-camera screenshots
// from metadata alone.
type ScreenshotDetector interface {
	IsLikelyScreenshot(photo domain.Photo) bool
	Analyze(photo domain.Photo) domain.ScreenshotAnalysis
}
