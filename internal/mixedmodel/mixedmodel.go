package mixedmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Data is one model-fitting subset: the blendshape values of one activation
// level, both cameras, across participants and recordings. The camera slice
// carries contrast codes (reference negative, comparison positive).
type Data struct {
	Response    []float64
	Camera      []float64
	Recording   []string
	Participant []string
}

// Options controls fit behavior.
type Options struct {
	// SingularTolerance is the variance-ratio boundary below which an
	// estimated random effect counts as degenerate. Zero means the default.
	SingularTolerance float64
}

const defaultSingularTolerance = 1e-6

// SkipReason explains why no model was fit for a subset. Skips are expected
// outcomes, not errors.
type SkipReason string

const (
	SkipEmptySubset       SkipReason = "empty subset"
	SkipSingleParticipant SkipReason = "single participant"
	SkipSingleCamera      SkipReason = "single camera level"
	SkipDegenerate        SkipReason = "degenerate fit"
)

// Model is a successfully fitted random-intercept model.
type Model struct {
	Intercept    float64
	CameraEffect float64
	InterceptSE  float64
	CameraSE     float64
	TStat        float64
	PValue       float64

	// Variance components of the final model. RecordingVariance is zero
	// when the recording intercept was dropped by the fallback.
	ResidualVariance    float64
	RecordingVariance   float64
	ParticipantVariance float64

	// NumGroups counts the random-effect groupings the final model kept
	// (2 for the full model, 1 after the fallback).
	NumGroups int
	// N is the subset sample size.
	N int
}

// Outcome is the tagged result of a fit attempt: either a fitted model or a
// skip reason, never both.
type Outcome struct {
	Model  *Model
	Reason SkipReason
}

// Fitted reports whether the outcome carries a usable model.
func (o Outcome) Fitted() bool {
	return o.Model != nil
}

func skip(reason SkipReason) Outcome {
	return Outcome{Reason: reason}
}

// Fit estimates the effect of camera identity on the response with random
// intercepts for recording and participant, by REML.
//
// The full model is fit first. If any variance component lands on the zero
// boundary the model is refit without the recording intercept; if the refit
// is still degenerate the subset is skipped. Estimates from a degenerate
// model are never reported.
func Fit(d Data, opts Options) (Outcome, error) {
	n := len(d.Response)
	if len(d.Camera) != n || len(d.Recording) != n || len(d.Participant) != n {
		return Outcome{}, fmt.Errorf("mixedmodel: column lengths differ (%d, %d, %d, %d)", n, len(d.Camera), len(d.Recording), len(d.Participant))
	}
	if n == 0 {
		return skip(SkipEmptySubset), nil
	}
	if distinct(d.Participant) < 2 {
		return skip(SkipSingleParticipant), nil
	}
	if distinctFloats(d.Camera) < 2 {
		return skip(SkipSingleCamera), nil
	}

	tol := opts.SingularTolerance
	if tol <= 0 {
		tol = defaultSingularTolerance
	}

	full, ok := fitREML(d, true)
	if ok && !full.singular(tol) {
		return Outcome{Model: full.model(d)}, nil
	}

	reduced, ok := fitREML(d, false)
	if !ok || reduced.singular(tol) {
		return skip(SkipDegenerate), nil
	}
	return Outcome{Model: reduced.model(d)}, nil
}

// model converts a converged REML fit into the exported form.
func (f *remlFit) model(d Data) *Model {
	sigma2 := f.rss / float64(f.n-f.p)
	df := float64(f.n - f.p)

	tStat := 0.0
	if f.cameraSE() > 0 {
		tStat = f.beta[1] / f.cameraSE()
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue := 2 * tDist.Survival(math.Abs(tStat))

	m := &Model{
		Intercept:           f.beta[0],
		CameraEffect:        f.beta[1],
		InterceptSE:         f.interceptSE(),
		CameraSE:            f.cameraSE(),
		TStat:               tStat,
		PValue:              pValue,
		ResidualVariance:    sigma2,
		ParticipantVariance: f.thetaParticipant() * sigma2,
		NumGroups:           f.components,
		N:                   f.n,
	}
	if f.withRecording {
		m.RecordingVariance = f.thetaRecording() * sigma2
	}
	return m
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func distinctFloats(values []float64) int {
	seen := make(map[float64]struct{}, 2)
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
