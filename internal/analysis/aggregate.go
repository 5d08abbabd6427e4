package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"faceangle/internal/classify"
	"faceangle/internal/dataset"
	"faceangle/internal/mixedmodel"
)

// buildRecord converts a fitted model into a result row, applying the fixed
// rounding rules.
func buildRecord(blendshape string, level classify.Activation, camera dataset.Camera, m *mixedmodel.Model, correlation float64) Record {
	return Record{
		Blendshape:  blendshape,
		Level:       level,
		Camera:      camera,
		Intercept:   round1(m.Intercept),
		Effect:      round1(m.CameraEffect),
		EffectPct:   percentEffect(m.CameraEffect, m.Intercept),
		StdErr:      round2(m.CameraSE),
		TStat:       round2(m.TStat),
		PValue:      round4(m.PValue),
		Correlation: round2(correlation),
		NumGroups:   m.NumGroups,
		Samples:     m.N,
	}
}

// percentEffect is |effect/intercept| as a rounded integer percentage.
func percentEffect(effect, intercept float64) int {
	if intercept == 0 {
		return 0
	}
	pct := math.Abs(effect/intercept) * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return int(math.Round(pct))
}

// cameraCorrelation computes the Pearson correlation between the reference
// and comparison cameras' raw values on a subset, aligned by frame key.
// Subsets with fewer than two aligned pairs, or without variation on either
// side, yield zero.
func cameraCorrelation(t *dataset.Table, channel int, rows []int, comparison dataset.Camera) float64 {
	ref := make(map[dataset.FrameKey]float64)
	cmp := make(map[dataset.FrameKey]float64)
	for _, i := range rows {
		row := t.Rows[i]
		switch row.Camera {
		case dataset.CameraReference:
			ref[row.Key()] = t.Value(i, channel)
		case comparison:
			cmp[row.Key()] = t.Value(i, channel)
		}
	}

	keys := make([]dataset.FrameKey, 0, len(ref))
	for key := range ref {
		if _, ok := cmp[key]; ok {
			keys = append(keys, key)
		}
	}
	if len(keys) < 2 {
		return 0
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].ID != keys[b].ID {
			return keys[a].ID < keys[b].ID
		}
		return keys[a].FrameNr < keys[b].FrameNr
	})

	refValues := make([]float64, len(keys))
	cmpValues := make([]float64, len(keys))
	for i, key := range keys {
		refValues[i] = ref[key]
		cmpValues[i] = cmp[key]
	}

	r := stat.Correlation(refValues, cmpValues, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
