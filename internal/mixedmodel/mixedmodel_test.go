package mixedmodel

import (
	"fmt"
	"math"
	"testing"
)

// synthetic builds a balanced two-camera dataset: for every participant and
// recording, framesPer frames per camera. Noise is deterministic so the fit
// is reproducible.
func synthetic(participants, recordingsPer, framesPer int, effect float64, participantSD, recordingSD float64) Data {
	var d Data
	row := 0
	for p := 0; p < participants; p++ {
		pOffset := participantSD * offset(p, participants)
		for r := 0; r < recordingsPer; r++ {
			rec := fmt.Sprintf("p%d-r%d", p, r)
			rOffset := recordingSD * offset(r+p, recordingsPer+participants)
			for f := 0; f < framesPer; f++ {
				for c, camera := range []float64{-0.5, 0.5} {
					// With a zero recording effect the noise must repeat
					// across recordings within a participant, so the
					// between-recording variance is exactly zero and the
					// full fit lands on the boundary.
					noiseKey := row
					if recordingSD == 0 {
						noiseKey = p*10000 + f*2 + c
					}
					noise := 0.3 * math.Sin(float64(3*noiseKey+1))
					d.Response = append(d.Response, 10+effect*camera+pOffset+rOffset+noise)
					d.Camera = append(d.Camera, camera)
					d.Recording = append(d.Recording, rec)
					d.Participant = append(d.Participant, fmt.Sprintf("p%d", p))
					row++
				}
			}
		}
	}
	return d
}

// offset spreads group effects symmetrically around zero.
func offset(i, n int) float64 {
	return float64(2*i-n+1) / float64(n)
}

func TestFitSkipsEmptySubset(t *testing.T) {
	out, err := Fit(Data{}, Options{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if out.Fitted() || out.Reason != SkipEmptySubset {
		t.Fatalf("expected empty-subset skip, got %+v", out)
	}
}

func TestFitSkipsSingleParticipant(t *testing.T) {
	var d Data
	for i := 0; i < 100; i++ {
		camera := -0.5
		if i%2 == 0 {
			camera = 0.5
		}
		d.Response = append(d.Response, float64(i%7))
		d.Camera = append(d.Camera, camera)
		d.Recording = append(d.Recording, fmt.Sprintf("r%d", i%4))
		d.Participant = append(d.Participant, "p1")
	}
	out, err := Fit(d, Options{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if out.Fitted() || out.Reason != SkipSingleParticipant {
		t.Fatalf("expected single-participant skip regardless of frame count, got %+v", out)
	}
}

func TestFitSkipsSingleCameraLevel(t *testing.T) {
	var d Data
	for i := 0; i < 40; i++ {
		d.Response = append(d.Response, float64(i%5))
		d.Camera = append(d.Camera, 0.5)
		d.Recording = append(d.Recording, fmt.Sprintf("r%d", i%4))
		d.Participant = append(d.Participant, fmt.Sprintf("p%d", i%3))
	}
	out, err := Fit(d, Options{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if out.Fitted() || out.Reason != SkipSingleCamera {
		t.Fatalf("expected single-camera skip, got %+v", out)
	}
}

func TestFitRejectsMismatchedColumns(t *testing.T) {
	d := Data{Response: []float64{1, 2}, Camera: []float64{0.5}, Recording: []string{"r", "r"}, Participant: []string{"p", "p"}}
	if _, err := Fit(d, Options{}); err == nil {
		t.Fatal("expected error for mismatched column lengths")
	}
}

func TestFitRecoversKnownCameraEffect(t *testing.T) {
	d := synthetic(6, 3, 10, 2.0, 2.0, 1.0)
	out, err := Fit(d, Options{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !out.Fitted() {
		t.Fatalf("expected fitted model, got skip %q", out.Reason)
	}
	m := out.Model

	if math.Abs(m.CameraEffect-2.0) > 0.2 {
		t.Fatalf("camera effect: got %v want ~2.0", m.CameraEffect)
	}
	if math.Abs(m.Intercept-10.0) > 1.0 {
		t.Fatalf("intercept: got %v want ~10", m.Intercept)
	}
	if m.CameraSE <= 0 || m.InterceptSE <= 0 {
		t.Fatalf("standard errors must be positive: %v %v", m.CameraSE, m.InterceptSE)
	}
	if m.PValue < 0 || m.PValue > 1 {
		t.Fatalf("p-value out of range: %v", m.PValue)
	}
	if m.PValue > 0.01 {
		t.Fatalf("expected strong evidence for a true effect of 2, got p=%v", m.PValue)
	}
	if m.NumGroups != 2 {
		t.Fatalf("expected both random intercepts retained, got %d", m.NumGroups)
	}
	if m.RecordingVariance <= 0 || m.ParticipantVariance <= 0 {
		t.Fatalf("variance components must be positive: %v %v", m.RecordingVariance, m.ParticipantVariance)
	}
	if m.N != len(d.Response) {
		t.Fatalf("sample size: got %d want %d", m.N, len(d.Response))
	}
}

func TestFitFallsBackWhenRecordingVarianceIsZero(t *testing.T) {
	// Recording offsets are exactly zero, so the full model's recording
	// variance sits on the boundary and the reduced model must be reported.
	d := synthetic(5, 4, 8, 1.5, 3.0, 0.0)
	out, err := Fit(d, Options{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !out.Fitted() {
		t.Fatalf("expected fitted model after fallback, got skip %q", out.Reason)
	}
	m := out.Model
	if m.NumGroups != 1 {
		t.Fatalf("expected reduced model with one grouping, got %d", m.NumGroups)
	}
	if m.RecordingVariance != 0 {
		t.Fatalf("reduced model must not report a recording variance, got %v", m.RecordingVariance)
	}
	if math.Abs(m.CameraEffect-1.5) > 0.2 {
		t.Fatalf("camera effect after fallback: got %v want ~1.5", m.CameraEffect)
	}
}

func TestFitTStatisticMatchesEffectOverSE(t *testing.T) {
	d := synthetic(4, 2, 12, 0.8, 1.0, 0.5)
	out, err := Fit(d, Options{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !out.Fitted() {
		t.Fatalf("expected fitted model, got skip %q", out.Reason)
	}
	m := out.Model
	want := m.CameraEffect / m.CameraSE
	if math.Abs(m.TStat-want) > 1e-9 {
		t.Fatalf("t statistic: got %v want %v", m.TStat, want)
	}
}
