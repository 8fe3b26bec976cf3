package usecase

import (
	"context"
	"log/slog"
	"math"

	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/core/ports"
)

const (
	sharpnessWeight   = 0.4
	exposureWeight    = 0.3
	compositionWeight = 0.3

	saliencyCompositionBoost = 0.3
	utilityContextCap        = 0.2
	sceneConfidenceBonus     = 0.08

	poseQualityBonus  = 0.2
	smilingBonus      = 0.15
	eyesOpenBonus     = 0.10
	maxYawDegrees     = 45.0
	maxPitchDegrees   = 30.0
	maxRollDegrees    = 20.0
	minFaceAreaShare  = 0.01
	maxFaceAreaShare  = 0.5
	goodExpressionMin = 0.6
)

// ScorePhotoUseCase combines an AnalysisResult and the external context and
// categorization signals into a PhotoScore. Every formula is a pure function
// of its inputs; every additive bonus clamps immediately, and the clamp
// ordering is part of the contract.
type ScorePhotoUseCase struct {
	categorizer ports.CategorizationProvider
	contexts    ports.ContextProvider
	weights     WeightTable
	logger      *slog.Logger
}

func NewScorePhotoUseCase(
	categorizer ports.CategorizationProvider,
	contexts ports.ContextProvider,
	weights WeightTable,
	logger *slog.Logger,
) *ScorePhotoUseCase {
	if weights == nil {
		weights = DefaultWeightTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScorePhotoUseCase{
		categorizer: categorizer,
		contexts:    contexts,
		weights:     weights,
		logger:      logger,
	}
}

func (uc *ScorePhotoUseCase) Score(ctx context.Context, photo domain.Photo, result domain.AnalysisResult) (domain.PhotoScore, error) {
	technical := TechnicalScore(result)
	faces := FaceScore(result.Faces)
	contextValue := uc.contextScore(ctx, photo, result)
	photoType := uc.photoType(ctx, photo, result)

	weights := uc.weights.resolve(photoType, !faces.IsNoFaces())
	overall := clamp01(technical.Overall*weights.Technical +
		faces.CompositeScore()*weights.Faces +
		contextValue*weights.Context)

	return domain.PhotoScore{
		PhotoID:   photo.ID,
		Technical: technical,
		Faces:     faces,
		Context:   contextValue,
		Overall:   overall,
		PhotoType: photoType,
	}, nil
}

// TechnicalScore applies the fixed 0.4/0.3/0.3 combination, after boosting
// composition by up to 30% of the saliency-derived composition score.
func TechnicalScore(result domain.AnalysisResult) domain.TechnicalQualityScore {
	composition := result.Composition
	if result.Saliency != nil {
		composition = math.Min(1, composition+result.Saliency.CompositionScore*saliencyCompositionBoost)
	}

	overall := clamp01(result.Sharpness*sharpnessWeight +
		result.Exposure*exposureWeight +
		composition*compositionWeight)

	return domain.TechnicalQualityScore{
		Sharpness:   result.Sharpness,
		Exposure:    result.Exposure,
		Composition: composition,
		Overall:     overall,
	}
}

// FaceScore averages per-face quality. Each face starts from its capture
// quality, gains up to +0.2 weighted by pose quality, +0.15 for a smile and
// +0.10 for open eyes, and clamps to 1.0 before averaging.
func FaceScore(faces []domain.FaceObservation) domain.FaceQualityScore {
	if len(faces) == 0 {
		return domain.NoFacesScore()
	}

	var sum float64
	eyesOpen := true
	expressive := 0
	optimalSizes := true

	for _, face := range faces {
		score := face.CaptureQuality
		score += poseQualityBonus * poseQuality(face.Pose)
		if face.Smiling != nil && *face.Smiling {
			score += smilingBonus
		}
		if face.EyesOpen != nil && *face.EyesOpen {
			score += eyesOpenBonus
		}
		sum += math.Min(score, 1.0)

		if face.EyesOpen != nil && !*face.EyesOpen {
			eyesOpen = false
		}
		// Smiling and neutral/unknown both count as a good expression.
		if face.Smiling == nil || *face.Smiling {
			expressive++
		}
		if area := face.BoundingBox.Area(); area < minFaceAreaShare || area > maxFaceAreaShare {
			optimalSizes = false
		}
	}

	return domain.FaceQualityScore{
		FaceCount:       len(faces),
		AverageScore:    sum / float64(len(faces)),
		EyesOpen:        eyesOpen,
		GoodExpressions: float64(expressive)/float64(len(faces)) >= goodExpressionMin,
		OptimalSizes:    optimalSizes,
	}
}

// poseQuality returns 1.0 for a frontal face and shrinks linearly as yaw,
// pitch or roll exceed their limits, with the penalties additive and the
// result floored at 0. An absent pose carries no penalty.
func poseQuality(pose *domain.HeadPose) float64 {
	if pose == nil {
		return 1.0
	}
	quality := 1.0
	if excess := math.Abs(pose.Yaw) - maxYawDegrees; excess > 0 {
		quality -= excess / maxYawDegrees
	}
	if excess := math.Abs(pose.Pitch) - maxPitchDegrees; excess > 0 {
		quality -= excess / maxPitchDegrees
	}
	if excess := math.Abs(pose.Roll) - maxRollDegrees; excess > 0 {
		quality -= excess / maxRollDegrees
	}
	return math.Max(quality, 0)
}

// contextScore starts from the baked-in fallback aesthetic, folds in the
// provider observation when present, blends the external context score and
// adds the scene-confidence bonus. Step order and clamps are fixed.
func (uc *ScorePhotoUseCase) contextScore(ctx context.Context, photo domain.Photo, result domain.AnalysisResult) float64 {
	value := ContextFromAesthetics(result)

	if uc.contexts != nil {
		signal, err := uc.contexts.AnalyzeContext(ctx, photo, result)
		if err != nil {
			uc.logger.Debug("context analysis degraded", "photo_id", photo.ID, "error", err)
		} else {
			external := clamp01(uc.contexts.ContextScore(signal))
			value = value*0.6 + external*0.4
		}
	}

	return math.Min(1, value+result.SceneConfidence*sceneConfidenceBonus)
}

// ContextFromAesthetics resolves the pre-blend context value: the fallback
// aesthetic score, overridden by the provider observation when one exists.
// Utility-flagged images are capped at 0.2 regardless of other signals.
func ContextFromAesthetics(result domain.AnalysisResult) float64 {
	value := clamp01(result.AestheticScore)
	if result.Aesthetics == nil {
		return value
	}
	if result.Aesthetics.IsUtility {
		return math.Min(value, utilityContextCap)
	}
	normalized := clamp01((result.Aesthetics.OverallScore + 1) / 2)
	return value*0.3 + normalized*0.7
}

func (uc *ScorePhotoUseCase) photoType(ctx context.Context, photo domain.Photo, result domain.AnalysisResult) domain.PhotoType {
	if uc.categorizer == nil {
		return domain.PhotoTypeOther
	}
	photoType, err := uc.categorizer.PrimaryCategory(ctx, result, photo)
	if err != nil {
		uc.logger.Debug("categorization degraded", "photo_id", photo.ID, "error", err)
		return domain.PhotoTypeOther
	}
	return photoType
}
