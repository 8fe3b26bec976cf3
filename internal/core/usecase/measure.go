package usecase

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// analysisFrame is the downsampled representation the pixel heuristics run
// on. Sharpness, exposure and composition are cheap heuristics over
// resolution, aspect ratio and luminance; the heavy per-pixel models live
// behind the VisionProvider.
type analysisFrame struct {
	pixels     *image.NRGBA
	fullWidth  int
	fullHeight int
}

const measureMaxDim = 256

func newAnalysisFrame(img image.Image) *analysisFrame {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	small := imaging.Clone(img)
	if w > measureMaxDim || h > measureMaxDim {
		if w >= h {
			small = imaging.Resize(img, measureMaxDim, 0, imaging.Lanczos)
		} else {
			small = imaging.Resize(img, 0, measureMaxDim, imaging.Lanczos)
		}
	}
	if small.Bounds().Empty() {
		return nil
	}
	return &analysisFrame{pixels: small, fullWidth: w, fullHeight: h}
}

// luma returns the normalized [0,1] luminance of the pixel at (x, y).
func (f *analysisFrame) luma(x, y int) float64 {
	i := y*f.pixels.Stride + x*4
	r := float64(f.pixels.Pix[i+0])
	g := float64(f.pixels.Pix[i+1])
	b := float64(f.pixels.Pix[i+2])
	return (0.299*r + 0.587*g + 0.114*b) / 255.0
}

// measureSharpness combines a resolution score with the mean luminance
// gradient of the downsampled frame. Defaults to 0 when no frame exists.
func measureSharpness(f *analysisFrame) float64 {
	if f == nil {
		return 0
	}

	megapixels := float64(f.fullWidth) * float64(f.fullHeight) / 1e6
	resolutionScore := clamp01(megapixels / 12.0)

	w := f.pixels.Bounds().Dx()
	h := f.pixels.Bounds().Dy()
	var gradientSum float64
	var samples int
	for y := 0; y < h; y++ {
		for x := 1; x < w; x++ {
			gradientSum += math.Abs(f.luma(x, y) - f.luma(x-1, y))
			samples++
		}
	}
	gradientScore := 0.0
	if samples > 0 {
		// A mean neighbor delta of 0.08 is already a crisp image.
		gradientScore = clamp01(gradientSum / float64(samples) / 0.08)
	}

	return clamp01(resolutionScore*0.6 + gradientScore*0.4)
}

// measureExposure scores average luminance against mid-gray: 1.0 at 0.5,
// falling off linearly toward pure black or pure white.
func measureExposure(f *analysisFrame) float64 {
	if f == nil {
		return 0
	}
	w := f.pixels.Bounds().Dx()
	h := f.pixels.Bounds().Dy()
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += f.luma(x, y)
		}
	}
	avg := sum / float64(w*h)
	return clamp01(1.0 - 2.0*math.Abs(avg-0.5))
}

// pleasingRatios are conventional framing ratios, width over height.
var pleasingRatios = []float64{1.0, 4.0 / 3.0, 3.0 / 2.0, 1.618, 16.0 / 9.0}

// measureComposition scores how close the frame's aspect ratio sits to a
// conventional framing ratio. Orientation does not matter.
func measureComposition(f *analysisFrame) float64 {
	if f == nil {
		return 0
	}
	ratio := float64(f.fullWidth) / float64(f.fullHeight)
	if ratio < 1 {
		ratio = 1 / ratio
	}

	closest := math.Inf(1)
	for _, p := range pleasingRatios {
		if d := math.Abs(ratio - p); d < closest {
			closest = d
		}
	}
	return clamp01(0.5 + 0.5*(1.0-clamp01(closest/0.5)))
}

// basicAestheticScore derives the fallback aesthetic value from the
// completed technical metrics plus the joined face and object results. Used
// only when the aesthetic provider yields nothing.
func basicAestheticScore(sharpness, exposure, composition float64, faceCount int, topObjectConfidence float64) float64 {
	score := sharpness*0.3 + exposure*0.3 + composition*0.2
	if faceCount > 0 && faceCount <= 3 {
		score += 0.1
	}
	score += topObjectConfidence * 0.1
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
