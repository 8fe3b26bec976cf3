package usecase

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/core/ports"
)

const (
	maxObjectObservations = 20
	objectConfidenceFloor = 0.1
)

// AnalyzePhotoUseCase runs the per-photo analysis fan-out. The seven
// sub-analyses are mutually independent and run concurrently; the call joins
// on all of them before assembling the result. Sub-analysis failures degrade
// to documented defaults and never fail the call; only a non-analyzable
// image does (domain.ErrDecode).
type AnalyzePhotoUseCase struct {
	vision ports.VisionProvider
	logger *slog.Logger
}

func NewAnalyzePhotoUseCase(vision ports.VisionProvider, logger *slog.Logger) *AnalyzePhotoUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzePhotoUseCase{vision: vision, logger: logger}
}

func (uc *AnalyzePhotoUseCase) Analyze(ctx context.Context, photo domain.Photo, img image.Image) (domain.AnalysisResult, error) {
	if img == nil {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrDecode, "analyze photo", errors.New("nil image"))
	}
	frame := newAnalysisFrame(img)
	if frame == nil {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrDecode, "analyze photo", errors.New("empty image bounds"))
	}

	var (
		sharpness   float64
		exposure    float64
		composition float64
		faces       []domain.FaceObservation
		objects     []domain.ObjectObservation
		aesthetics  *domain.AestheticObservation
		saliency    *domain.SaliencyObservation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sharpness = measureSharpness(frame)
		return nil
	})
	g.Go(func() error {
		exposure = measureExposure(frame)
		return nil
	})
	g.Go(func() error {
		composition = measureComposition(frame)
		return nil
	})
	g.Go(func() error {
		faces = uc.detectFaces(gctx, img)
		return nil
	})
	g.Go(func() error {
		objects = uc.classifyObjects(gctx, img)
		return nil
	})
	g.Go(func() error {
		aesthetics = uc.assessAesthetics(gctx, img)
		return nil
	})
	g.Go(func() error {
		saliency = uc.computeSaliency(gctx, img)
		return nil
	})

	// Join barrier: every sub-analysis degrades instead of erroring, so Wait
	// only serves as the completion point.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return domain.AnalysisResult{}, err
	}

	sceneConfidence := 0.0
	topObjectConfidence := 0.0
	if len(objects) > 0 {
		sceneConfidence = objects[0].Confidence
		topObjectConfidence = objects[0].Confidence
	}

	return domain.AnalysisResult{
		PhotoID:         photo.ID,
		AssetIdentifier: photo.AssetIdentifier,
		Sharpness:       sharpness,
		Exposure:        exposure,
		Composition:     composition,
		Faces:           faces,
		Objects:         objects,
		AestheticScore:  basicAestheticScore(sharpness, exposure, composition, len(faces), topObjectConfidence),
		Aesthetics:      aesthetics,
		Saliency:        saliency,
		SceneConfidence: sceneConfidence,
		AnalyzedAt:      time.Now().UTC(),
	}, nil
}

func (uc *AnalyzePhotoUseCase) detectFaces(ctx context.Context, img image.Image) []domain.FaceObservation {
	faces, err := uc.vision.DetectFaces(ctx, img)
	if err != nil {
		uc.logger.Debug("face detection degraded", "error", err)
		return []domain.FaceObservation{}
	}
	if faces == nil {
		return []domain.FaceObservation{}
	}
	return faces
}

// classifyObjects keeps at most maxObjectObservations classifications above
// the confidence floor, preserving provider order.
func (uc *AnalyzePhotoUseCase) classifyObjects(ctx context.Context, img image.Image) []domain.ObjectObservation {
	observations, err := uc.vision.ClassifyObjects(ctx, img)
	if err != nil {
		uc.logger.Debug("object classification degraded", "error", err)
		return []domain.ObjectObservation{}
	}

	kept := make([]domain.ObjectObservation, 0, len(observations))
	for _, obs := range observations {
		if obs.Confidence <= objectConfidenceFloor {
			continue
		}
		kept = append(kept, obs)
		if len(kept) == maxObjectObservations {
			break
		}
	}
	return kept
}

func (uc *AnalyzePhotoUseCase) assessAesthetics(ctx context.Context, img image.Image) *domain.AestheticObservation {
	obs, err := uc.vision.AssessAesthetics(ctx, img)
	if err != nil {
		uc.logger.Debug("aesthetic assessment degraded", "error", err)
		return nil
	}
	return obs
}

func (uc *AnalyzePhotoUseCase) computeSaliency(ctx context.Context, img image.Image) *domain.SaliencyObservation {
	obs, err := uc.vision.ComputeSaliency(ctx, img)
	if err != nil {
		uc.logger.Debug("saliency computation degraded", "error", err)
		return nil
	}
	return obs
}
