// Package mixedmodel fits the random-intercept regression at the center of
// the camera-angle bias analysis.
//
// The model regresses blendshape value on contrast-coded camera identity
// with random intercepts for recording and participant, estimated by REML.
// A fit whose variance ratio lands on the zero boundary is singular; the
// package then retries once with the recording intercept removed and skips
// the subset entirely if the reduced fit is still degenerate. Outcomes are
// tagged values (fitted model or skip reason) so callers never see estimates
// from a degenerate model and never handle fitting exceptions.
package mixedmodel
