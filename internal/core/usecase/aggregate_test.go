package usecase

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/core/ports"
)

type categorizerFake struct {
	photoType domain.PhotoType
	err       error
}

func (f *categorizerFake) PrimaryCategory(context.Context, domain.AnalysisResult, domain.Photo) (domain.PhotoType, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.photoType, nil
}

type contextProviderFake struct {
	score float64
	err   error
}

func (f *contextProviderFake) AnalyzeContext(context.Context, domain.Photo, domain.AnalysisResult) (ports.ContextSignal, error) {
	if f.err != nil {
		return ports.ContextSignal{}, f.err
	}
	return ports.ContextSignal{Score: f.score}, nil
}

func (f *contextProviderFake) ContextScore(signal ports.ContextSignal) float64 {
	return signal.Score
}

func boolPtr(v bool) *bool { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTechnicalScoreBoostsCompositionFromSaliency(t *testing.T) {
	result := domain.AnalysisResult{
		Sharpness:   0.6,
		Exposure:    0.4,
		Composition: 0.5,
		Saliency:    &domain.SaliencyObservation{CompositionScore: 1.0},
	}

	technical := TechnicalScore(result)
	if !almostEqual(technical.Composition, 0.8) {
		t.Fatalf("expected boosted composition 0.8, got %f", technical.Composition)
	}
	want := 0.6*0.4 + 0.4*0.3 + 0.8*0.3
	if !almostEqual(technical.Overall, want) {
		t.Fatalf("expected overall %f, got %f", want, technical.Overall)
	}
}

func TestTechnicalScoreBoostClampsAtOne(t *testing.T) {
	result := domain.AnalysisResult{
		Composition: 0.9,
		Saliency:    &domain.SaliencyObservation{CompositionScore: 1.0},
	}
	if technical := TechnicalScore(result); technical.Composition != 1.0 {
		t.Fatalf("expected composition clamped to 1.0, got %f", technical.Composition)
	}
}

func TestFaceScoreNoFacesSentinel(t *testing.T) {
	score := FaceScore(nil)
	if !score.IsNoFaces() {
		t.Fatalf("expected no-faces sentinel")
	}
	if score != domain.NoFacesScore() {
		t.Fatalf("sentinel should be stable, got %+v", score)
	}
}

func TestFaceScoreBonusesClampPerFace(t *testing.T) {
	faces := []domain.FaceObservation{{
		BoundingBox:    domain.Box{X: 0.4, Y: 0.4, W: 0.2, H: 0.2},
		CaptureQuality: 0.9,
		Smiling:        boolPtr(true),
		EyesOpen:       boolPtr(true),
		Pose:           &domain.HeadPose{},
	}}

	// 0.9 + 0.2 + 0.15 + 0.10 clamps to 1.0 before averaging.
	score := FaceScore(faces)
	if !almostEqual(score.AverageScore, 1.0) {
		t.Fatalf("expected clamped average 1.0, got %f", score.AverageScore)
	}
	if !score.EyesOpen || !score.GoodExpressions || !score.OptimalSizes {
		t.Fatalf("expected all quality booleans set, got %+v", score)
	}
}

func TestFaceScorePosePenalties(t *testing.T) {
	if q := poseQuality(&domain.HeadPose{Yaw: 90}); q != 0 {
		t.Fatalf("expected yaw 90 to zero out pose quality, got %f", q)
	}
	if q := poseQuality(&domain.HeadPose{Yaw: 45, Pitch: 30, Roll: 20}); q != 1.0 {
		t.Fatalf("expected angles at the limits to carry no penalty, got %f", q)
	}
	if q := poseQuality(nil); q != 1.0 {
		t.Fatalf("expected absent pose to carry no penalty, got %f", q)
	}
	q := poseQuality(&domain.HeadPose{Yaw: 67.5})
	if !almostEqual(q, 0.5) {
		t.Fatalf("expected linear yaw penalty 0.5, got %f", q)
	}
}

func TestFaceScoreAggregateBooleans(t *testing.T) {
	faces := []domain.FaceObservation{
		{BoundingBox: domain.Box{W: 0.2, H: 0.2}, CaptureQuality: 0.5, Smiling: boolPtr(true), EyesOpen: boolPtr(true)},
		{BoundingBox: domain.Box{W: 0.2, H: 0.2}, CaptureQuality: 0.5}, // unknown expression and eyes
		{BoundingBox: domain.Box{W: 0.05, H: 0.05}, CaptureQuality: 0.5, Smiling: boolPtr(false), EyesOpen: boolPtr(false)},
	}

	score := FaceScore(faces)
	if score.EyesOpen {
		t.Fatalf("one face with closed eyes should clear EyesOpen")
	}
	// 1 smiling + 1 unknown out of 3 = 0.667 >= 0.6.
	if !score.GoodExpressions {
		t.Fatalf("expected good expressions at 2/3 ratio")
	}
	// 0.05*0.05 = 0.0025 < 0.01 area floor.
	if score.OptimalSizes {
		t.Fatalf("tiny face should clear OptimalSizes")
	}
	if score.FaceCount != 3 {
		t.Fatalf("expected face count 3, got %d", score.FaceCount)
	}
}

func TestContextUtilityCapBeforeExternalBlend(t *testing.T) {
	result := domain.AnalysisResult{
		AestheticScore: 0.9,
		Aesthetics:     &domain.AestheticObservation{OverallScore: 0.8, IsUtility: true},
	}
	if v := ContextFromAesthetics(result); v > utilityContextCap {
		t.Fatalf("utility image context %f exceeds cap", v)
	}
}

func TestContextBlendsProviderAesthetics(t *testing.T) {
	result := domain.AnalysisResult{
		AestheticScore: 0.5,
		Aesthetics:     &domain.AestheticObservation{OverallScore: 1.0},
	}
	// 0.5*0.3 + 1.0*0.7
	if v := ContextFromAesthetics(result); !almostEqual(v, 0.85) {
		t.Fatalf("expected blended context 0.85, got %f", v)
	}
}

func TestScoreBlendsExternalContextAndSceneBonus(t *testing.T) {
	uc := NewScorePhotoUseCase(
		&categorizerFake{photoType: domain.PhotoTypeOther},
		&contextProviderFake{score: 1.0},
		nil,
		nil,
	)
	result := domain.AnalysisResult{
		Sharpness:       0.5,
		Exposure:        0.5,
		Composition:     0.5,
		AestheticScore:  0.5,
		SceneConfidence: 1.0,
	}

	score, err := uc.Score(context.Background(), testPhoto("p1"), result)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	// 0.5*0.6 + 1.0*0.4 = 0.7, then +1.0*0.08 scene bonus.
	if !almostEqual(score.Context, 0.78) {
		t.Fatalf("expected context 0.78, got %f", score.Context)
	}
}

func TestScoreEmitsValuesInUnitRange(t *testing.T) {
	uc := NewScorePhotoUseCase(
		&categorizerFake{photoType: domain.PhotoTypePortrait},
		&contextProviderFake{score: 1.0},
		nil,
		nil,
	)
	result := domain.AnalysisResult{
		Sharpness:       1.0,
		Exposure:        1.0,
		Composition:     1.0,
		AestheticScore:  1.0,
		SceneConfidence: 1.0,
		Faces: []domain.FaceObservation{{
			BoundingBox:    domain.Box{W: 0.3, H: 0.3},
			CaptureQuality: 1.0,
			Smiling:        boolPtr(true),
			EyesOpen:       boolPtr(true),
		}},
		Saliency: &domain.SaliencyObservation{CompositionScore: 1.0},
	}

	score, err := uc.Score(context.Background(), testPhoto("p1"), result)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	for name, v := range map[string]float64{
		"technical": score.Technical.Overall,
		"faces":     score.Faces.CompositeScore(),
		"context":   score.Context,
		"overall":   score.Overall,
	} {
		if v < 0 || v > 1 {
			t.Fatalf("%s out of unit range: %f", name, v)
		}
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	uc := NewScorePhotoUseCase(
		&categorizerFake{photoType: domain.PhotoTypeLandscape},
		&contextProviderFake{score: 0.4},
		nil,
		nil,
	)
	result := domain.AnalysisResult{
		Sharpness:       0.7,
		Exposure:        0.55,
		Composition:     0.61,
		AestheticScore:  0.42,
		SceneConfidence: 0.3,
	}

	first, err := uc.Score(context.Background(), testPhoto("p1"), result)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	second, err := uc.Score(context.Background(), testPhoto("p1"), result)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if first != second {
		t.Fatalf("identical inputs should yield identical scores: %+v vs %+v", first, second)
	}
}

func TestScoreDegradesCategorizerFailureToOther(t *testing.T) {
	uc := NewScorePhotoUseCase(
		&categorizerFake{err: context.DeadlineExceeded},
		nil,
		nil,
		nil,
	)
	score, err := uc.Score(context.Background(), testPhoto("p1"), domain.AnalysisResult{AestheticScore: 0.5})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score.PhotoType != domain.PhotoTypeOther {
		t.Fatalf("expected fallback photo type, got %s", score.PhotoType)
	}
}

func TestWeightTableRedistributesFaceWeightWithoutFaces(t *testing.T) {
	table := DefaultWeightTable()
	weights := table.resolve(domain.PhotoTypePortrait, false)
	if weights.Faces != 0 {
		t.Fatalf("expected zero face weight without faces, got %f", weights.Faces)
	}
	if !almostEqual(weights.Technical+weights.Context, 1.0) {
		t.Fatalf("expected normalized weights, got %+v", weights)
	}
	// Portrait is 0.30/0.20 technical/context, so 0.6/0.4 after renorm.
	if !almostEqual(weights.Technical, 0.6) {
		t.Fatalf("expected redistributed technical weight 0.6, got %f", weights.Technical)
	}
}

func TestLoadWeightTableMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := "portrait:\n  technical: 0.2\n  faces: 0.6\n  context: 0.2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write weights file: %v", err)
	}

	table, err := LoadWeightTable(path)
	if err != nil {
		t.Fatalf("LoadWeightTable() error = %v", err)
	}
	if table[domain.PhotoTypePortrait].Faces != 0.6 {
		t.Fatalf("expected portrait override, got %+v", table[domain.PhotoTypePortrait])
	}
	if table[domain.PhotoTypeLandscape] != DefaultWeightTable()[domain.PhotoTypeLandscape] {
		t.Fatalf("expected untouched landscape defaults")
	}
}

func TestLoadWeightTableRejectsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := "portrait:\n  technical: -1\n  faces: 0.5\n  context: 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write weights file: %v", err)
	}
	if _, err := LoadWeightTable(path); err == nil {
		t.Fatalf("expected error for negative weight")
	}
}
