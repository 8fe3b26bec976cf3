// Package categorize holds the built-in categorization and context
// collaborators used when no external providers are wired in. Both work
// purely from the analysis observations already in hand.
package categorize

import (
	"context"
	"sort"
	"strings"

	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/core/ports"
)

const (
	// A single face covering at least this share of the frame reads as a
	// deliberate portrait rather than an incidental person.
	portraitFaceMinArea = 0.05

	landscapeMinAspect = 1.2
)

var outdoorLabels = map[string]bool{
	"mountain":  true,
	"beach":     true,
	"sky":       true,
	"sunset":    true,
	"forest":    true,
	"sea":       true,
	"lake":      true,
	"landscape": true,
	"nature":    true,
	"field":     true,
}

// HeuristicCategorizer derives the photo type from face count, face size and
// scene labels.
type HeuristicCategorizer struct{}

func NewHeuristicCategorizer() *HeuristicCategorizer {
	return &HeuristicCategorizer{}
}

func (c *HeuristicCategorizer) PrimaryCategory(_ context.Context, result domain.AnalysisResult, photo domain.Photo) (domain.PhotoType, error) {
	switch {
	case len(result.Faces) > 1:
		return domain.PhotoTypeMultiFace, nil
	case len(result.Faces) == 1:
		if result.Faces[0].BoundingBox.Area() >= portraitFaceMinArea {
			return domain.PhotoTypePortrait, nil
		}
		return domain.PhotoTypeOther, nil
	}

	wide := photo.Metadata.AspectRatio() >= landscapeMinAspect
	if wide && (len(result.Objects) == 0 || isOutdoorLabel(result.Objects[0].Label)) {
		return domain.PhotoTypeLandscape, nil
	}
	return domain.PhotoTypeOther, nil
}

func isOutdoorLabel(label string) bool {
	return outdoorLabels[strings.ToLower(strings.TrimSpace(label))]
}

// ObservationContextProvider turns the classified objects into a context
// signal: the tags are the object labels, the score is confidence-weighted
// label coverage.
type ObservationContextProvider struct{}

func NewObservationContextProvider() *ObservationContextProvider {
	return &ObservationContextProvider{}
}

func (p *ObservationContextProvider) AnalyzeContext(_ context.Context, _ domain.Photo, result domain.AnalysisResult) (ports.ContextSignal, error) {
	if len(result.Objects) == 0 {
		return ports.ContextSignal{}, nil
	}

	objects := make([]domain.ObjectObservation, len(result.Objects))
	copy(objects, result.Objects)
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].Confidence > objects[j].Confidence
	})

	tags := make([]string, 0, len(objects))
	var sum float64
	for _, obj := range objects {
		tags = append(tags, obj.Label)
		sum += obj.Confidence
	}

	return ports.ContextSignal{
		Tags:  tags,
		Score: sum / float64(len(objects)),
	}, nil
}

func (p *ObservationContextProvider) ContextScore(signal ports.ContextSignal) float64 {
	if signal.Score < 0 {
		return 0
	}
	if signal.Score > 1 {
		return 1
	}
	return signal.Score
}
