package analysis

import (
	"faceangle/internal/classify"
	"faceangle/internal/config"
	"faceangle/internal/dataset"
)

// Options carries the analysis constants threaded through the pipeline.
type Options struct {
	Params             classify.Params
	ReferenceContrast  float64
	ComparisonContrast float64
	SingularTolerance  float64
}

// FromConfig maps application configuration to pipeline options.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Params: classify.Params{
			Multiplier:   cfg.Analysis.Multiplier,
			MinThreshold: cfg.Analysis.MinThreshold,
		},
		ReferenceContrast:  cfg.Analysis.ReferenceContrast,
		ComparisonContrast: cfg.Analysis.ComparisonContrast,
		SingularTolerance:  cfg.Analysis.SingularTolerance,
	}
}

// Record is one result row: the estimated camera effect for one blendshape
// at one activation level. All statistics are rounded exactly once, when the
// record is built.
type Record struct {
	Blendshape  string
	Level       classify.Activation
	Camera      dataset.Camera
	Intercept   float64 // 1 decimal
	Effect      float64 // 1 decimal
	EffectPct   int     // round(|effect/intercept| * 100)
	StdErr      float64 // 2 decimals
	TStat       float64 // 2 decimals
	PValue      float64 // 4 decimals
	Correlation float64 // 2 decimals, reference vs comparison raw values
	NumGroups   int
	Samples     int
}

// ModeledLevels are the activation levels that get a regression model. NA
// frames are the unmodeled remainder.
var ModeledLevels = []classify.Activation{classify.ActivationHigh, classify.ActivationLow}
