package domain

import (
	"image"
	"time"
)

// Box is a normalized bounding box with all coordinates in the [0,1] range,
// origin at the top-left corner of the image.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the fraction of the image the box covers.
func (b Box) Area() float64 {
	return b.W * b.H
}

// FullImageBox is the degenerate box used for whole-image classifications.
func FullImageBox() Box {
	return Box{X: 0, Y: 0, W: 1, H: 1}
}

// Point is a normalized coordinate in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeadPose holds face orientation angles in degrees.
type HeadPose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// FaceObservation is a single detected face. Expression and pose signals are
// each independently optional; a nil pointer means the detector produced no
// verdict for that signal.
type FaceObservation struct {
	BoundingBox    Box       `json:"bounding_box"`
	Confidence     float64   `json:"confidence"`
	CaptureQuality float64   `json:"capture_quality"`
	Smiling        *bool     `json:"smiling,omitempty"`
	EyesOpen       *bool     `json:"eyes_open,omitempty"`
	Pose           *HeadPose `json:"pose,omitempty"`
	Landmarks      []Point   `json:"landmarks,omitempty"`
}

// ObjectObservation is a single classification result.
type ObjectObservation struct {
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	BoundingBox Box     `json:"bounding_box"`
}

// AestheticObservation is the optional verdict of an aesthetic assessment
// model. OverallScore is in [-1,1]; IsUtility marks screenshot/document-like
// images.
type AestheticObservation struct {
	OverallScore float64 `json:"overall_score"`
	IsUtility    bool    `json:"is_utility"`
	Confidence   float64 `json:"confidence"`
}

// SaliencyObservation is the optional output of a saliency model. The
// attention heatmap is carried opaquely and never interpreted by the core.
type SaliencyObservation struct {
	SalientRegions   []Box       `json:"salient_regions"`
	FocusPoints      []Point     `json:"focus_points"`
	CompositionScore float64     `json:"composition_score"`
	AttentionHeatmap image.Image `json:"-"`
}

// AnalysisResult is the immutable aggregate of one photo's analysis run.
// Sharpness, exposure and composition are always present in [0,1]; the
// provider-backed observations degrade to empty or nil when unavailable.
// AestheticScore is the heuristic fallback used for overall-score blending
// whenever Aesthetics is nil.
type AnalysisResult struct {
	PhotoID         string                `json:"photo_id"`
	AssetIdentifier string                `json:"asset_identifier"`
	Sharpness       float64               `json:"sharpness"`
	Exposure        float64               `json:"exposure"`
	Composition     float64               `json:"composition"`
	Faces           []FaceObservation     `json:"faces"`
	Objects         []ObjectObservation   `json:"objects"`
	AestheticScore  float64               `json:"aesthetic_score"`
	Aesthetics      *AestheticObservation `json:"aesthetics,omitempty"`
	Saliency        *SaliencyObservation  `json:"saliency,omitempty"`
	SceneConfidence float64               `json:"scene_confidence"`
	AnalyzedAt      time.Time             `json:"analyzed_at"`
}
