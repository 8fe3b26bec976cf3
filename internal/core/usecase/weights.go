package usecase

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suniel12/insightpic/internal/core/domain"
)

// OverallWeights is one weighting profile of the photo-type-aware overall
// formula. Weights are normalized before use, so they only need to be
// relative to each other.
type OverallWeights struct {
	Technical float64 `yaml:"technical"`
	Faces     float64 `yaml:"faces"`
	Context   float64 `yaml:"context"`
}

// WeightTable maps photo types to their overall weighting profile. The
// coefficients depend on the categorization collaborator's taxonomy, so they
// are injected configuration, never hard-coded in the aggregator.
type WeightTable map[domain.PhotoType]OverallWeights

// DefaultWeightTable is used when no table file is configured.
func DefaultWeightTable() WeightTable {
	return WeightTable{
		domain.PhotoTypePortrait:  {Technical: 0.30, Faces: 0.50, Context: 0.20},
		domain.PhotoTypeMultiFace: {Technical: 0.30, Faces: 0.45, Context: 0.25},
		domain.PhotoTypeLandscape: {Technical: 0.50, Faces: 0.10, Context: 0.40},
		domain.PhotoTypeOther:     {Technical: 0.40, Faces: 0.30, Context: 0.30},
	}
}

// LoadWeightTable reads a YAML weight table, falling back to defaults for
// photo types the file does not mention.
func LoadWeightTable(path string) (WeightTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weight table: %w", err)
	}

	var parsed map[string]OverallWeights
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse weight table: %w", err)
	}

	table := DefaultWeightTable()
	for name, weights := range parsed {
		if weights.Technical < 0 || weights.Faces < 0 || weights.Context < 0 {
			return nil, fmt.Errorf("parse weight table: negative weight for %q", name)
		}
		if weights.Technical+weights.Faces+weights.Context == 0 {
			return nil, fmt.Errorf("parse weight table: zero weights for %q", name)
		}
		table[domain.PhotoType(name)] = weights
	}
	return table, nil
}

// resolve returns the normalized weights for a photo type. When the photo has
// no faces, the face weight is redistributed proportionally across technical
// and context.
func (t WeightTable) resolve(photoType domain.PhotoType, hasFaces bool) OverallWeights {
	weights, ok := t[photoType]
	if !ok {
		weights = t[domain.PhotoTypeOther]
	}
	if weights.Technical+weights.Faces+weights.Context == 0 {
		weights = DefaultWeightTable()[domain.PhotoTypeOther]
	}

	if !hasFaces {
		weights.Faces = 0
	}
	total := weights.Technical + weights.Faces + weights.Context
	if total == 0 {
		return OverallWeights{Technical: 0.5, Context: 0.5}
	}
	weights.Technical /= total
	weights.Faces /= total
	weights.Context /= total
	return weights
}
