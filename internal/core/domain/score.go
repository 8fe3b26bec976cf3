package domain

// TechnicalQualityScore is the weighted combination of the pixel-level
// heuristics. All components and Overall are in [0,1].
type TechnicalQualityScore struct {
	Sharpness   float64 `json:"sharpness"`
	Exposure    float64 `json:"exposure"`
	Composition float64 `json:"composition"`
	Overall     float64 `json:"overall"`
}

// FaceQualityScore summarizes face quality across all detected faces.
type FaceQualityScore struct {
	FaceCount       int     `json:"face_count"`
	AverageScore    float64 `json:"average_score"`
	EyesOpen        bool    `json:"eyes_open"`
	GoodExpressions bool    `json:"good_expressions"`
	OptimalSizes    bool    `json:"optimal_sizes"`
}

// NoFacesScore is the sentinel returned when a photo contains no faces.
func NoFacesScore() FaceQualityScore {
	return FaceQualityScore{}
}

// IsNoFaces reports whether the score is the no-faces sentinel.
func (s FaceQualityScore) IsNoFaces() bool {
	return s.FaceCount == 0
}

// CompositeScore is the single [0,1] face value fed into the overall formula.
func (s FaceQualityScore) CompositeScore() float64 {
	return s.AverageScore
}

// PhotoScore is the full scoring result for one photo. Immutable once
// returned; the persistence layer decides whether to store it.
type PhotoScore struct {
	PhotoID   string                `json:"photo_id"`
	Technical TechnicalQualityScore `json:"technical"`
	Faces     FaceQualityScore      `json:"faces"`
	Context   float64               `json:"context"`
	Overall   float64               `json:"overall"`
	PhotoType PhotoType             `json:"photo_type"`
}

// ScreenshotAnalysis is the detailed verdict of the screenshot heuristic.
// Confidence is an integer evidence score clamped to [0,10]; Indicators lists
// the triggered evidence descriptions in check order.
type ScreenshotAnalysis struct {
	IsLikelyScreenshot bool     `json:"is_likely_screenshot"`
	Confidence         int      `json:"confidence"`
	Indicators         []string `json:"indicators"`
	AspectRatio        float64  `json:"aspect_ratio"`
}
