package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/suniel12/insightpic/internal/core/domain"
)

const (
	screenshotThreshold    = 5
	maxScreenshotEvidence  = 10
	screenRatioTolerance   = 0.1
	weightNoLocation       = 3
	weightNoCameraModel    = 3
	weightNoCameraSettings = 2
	weightScreenRatio      = 2
	weightKeyword          = 4
	weightScreenResolution = 3
)

// screenRatios are device screen proportions, long side over short side.
var screenRatios = []float64{
	4.0 / 3.0,
	16.0 / 10.0,
	16.0 / 9.0,
	18.0 / 9.0,
	19.5 / 9.0,
	20.0 / 9.0,
}

// screenResolutions are exact pixel dimensions of common device screens.
var screenResolutions = [][2]int{
	{750, 1334},
	{828, 1792},
	{1080, 1920},
	{1080, 2340},
	{1125, 2436},
	{1170, 2532},
	{1179, 2556},
	{1206, 2622},
	{1284, 2778},
	{1290, 2796},
	{1320, 2868},
	{1440, 2560},
	{1440, 3088},
	{1440, 3200},
	{1620, 2160},
	{1668, 2388},
	{2048, 2732},
}

// screenshotKeywords are identifier substrings that suggest a non-camera
// origin, matched case-insensitively.
var screenshotKeywords = []string{
	"screenshot",
	"screen_recording",
	"screen recording",
	"screencap",
	"img_",
	"photo_",
}

// ScreenshotHeuristic flags likely non-camera screenshots from photo
// metadata alone, never decoding image data. Six independent weighted checks
// accumulate an evidence score; at or above 5 the photo is classified a
// screenshot.
type ScreenshotHeuristic struct{}

func NewScreenshotHeuristic() *ScreenshotHeuristic {
	return &ScreenshotHeuristic{}
}

func (h *ScreenshotHeuristic) IsLikelyScreenshot(photo domain.Photo) bool {
	return h.Analyze(photo).IsLikelyScreenshot
}

// Analyze runs every check in fixed order and returns the verdict with the
// triggered indicator descriptions and an evidence score clamped to [0,10].
func (h *ScreenshotHeuristic) Analyze(photo domain.Photo) domain.ScreenshotAnalysis {
	score := 0
	var indicators []string

	if photo.Location == nil {
		score += weightNoLocation
		indicators = append(indicators, "no GPS location data")
	}
	if photo.Metadata.CameraModel == nil {
		score += weightNoCameraModel
		indicators = append(indicators, "no camera model in metadata")
	}
	if !photo.Metadata.HasCameraSettings() {
		score += weightNoCameraSettings
		indicators = append(indicators, "no camera capture settings")
	}

	ratio := photo.Metadata.AspectRatio()
	if matchesScreenRatio(photo.Metadata.Width, photo.Metadata.Height) {
		score += weightScreenRatio
		indicators = append(indicators, fmt.Sprintf("aspect ratio %.2f matches a device screen", ratio))
	}

	if keyword := matchedKeyword(photo.AssetIdentifier); keyword != "" {
		score += weightKeyword
		indicators = append(indicators, fmt.Sprintf("identifier contains %q", keyword))
	}

	if matchesScreenResolution(photo.Metadata.Width, photo.Metadata.Height) {
		score += weightScreenResolution
		indicators = append(indicators, fmt.Sprintf("dimensions %dx%d match a known device screen", photo.Metadata.Width, photo.Metadata.Height))
	}

	confidence := score
	if confidence > maxScreenshotEvidence {
		confidence = maxScreenshotEvidence
	}

	return domain.ScreenshotAnalysis{
		IsLikelyScreenshot: score >= screenshotThreshold,
		Confidence:         confidence,
		Indicators:         indicators,
		AspectRatio:        ratio,
	}
}

func matchesScreenRatio(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	long, short := float64(width), float64(height)
	if long < short {
		long, short = short, long
	}
	ratio := long / short
	for _, screen := range screenRatios {
		if math.Abs(ratio-screen) < screenRatioTolerance {
			return true
		}
	}
	return false
}

func matchedKeyword(identifier string) string {
	lower := strings.ToLower(identifier)
	for _, keyword := range screenshotKeywords {
		if strings.Contains(lower, keyword) {
			return keyword
		}
	}
	return ""
}

func matchesScreenResolution(width, height int) bool {
	for _, res := range screenResolutions {
		if (width == res[0] && height == res[1]) || (width == res[1] && height == res[0]) {
			return true
		}
	}
	return false
}
