package ports

import (
	"context"
	"image"

	"github.com/suniel12/insightpic/internal/core/domain"
)

// VisionProvider supplies face, object, aesthetic and saliency observations
// for a decoded image. Every call is fallible-to-absent: the orchestrator
// degrades errors and nil results to empty observations, so implementations
// are never required to succeed.
type VisionProvider interface {
	DetectFaces(ctx context.Context, img image.Image) ([]domain.FaceObservation, error)
	ClassifyObjects(ctx context.Context, img image.Image) ([]domain.ObjectObservation, error)
	AssessAesthetics(ctx context.Context, img image.Image) (*domain.AestheticObservation, error)
	ComputeSaliency(ctx context.Context, img image.Image) (*domain.SaliencyObservation, error)
}

// ImageSource resolves asset identifiers to decoded images. Unknown
// identifiers fail with domain.ErrAssetNotFound.
type ImageSource interface {
	LoadFullResolutionImage(ctx context.Context, assetIdentifier string) (image.Image, error)
}

// PhotoRepository persists and reads photos and their scores.
type PhotoRepository interface {
	LoadPhoto(ctx context.Context, id string) (*domain.Photo, error)
	SavePhoto(ctx context.Context, photo domain.Photo) error
	LoadPhotos(ctx context.Context) ([]domain.Photo, error)
	LoadPhotosWithoutScores(ctx context.Context) ([]domain.Photo, error)
}

// CategorizationProvider resolves the photo type used to select the overall
// weighting profile.
type CategorizationProvider interface {
	PrimaryCategory(ctx context.Context, result domain.AnalysisResult, photo domain.Photo) (domain.PhotoType, error)
}

// ContextSignal is the opaque output of the context-analysis collaborator.
type ContextSignal struct {
	Tags  []string
	Score float64
}

// ContextProvider supplies the external context score blended into the
// overall formula.
type ContextProvider interface {
	AnalyzeContext(ctx context.Context, photo domain.Photo, result domain.AnalysisResult) (ContextSignal, error)
	ContextScore(signal ContextSignal) float64
}

// ScoreQueue carries batch-score requests between the API and the worker.
type ScoreQueue interface {
	PublishScoreRequest(ctx context.Context, req domain.ScoreRequest) error
	SubscribeScoreRequests(ctx context.Context, handler func(context.Context, domain.ScoreRequest) error) error
}
