// Package classify implements the activation-classification stage of the
// camera-angle bias analysis.
//
// For one blendshape channel it derives a high-activation threshold per
// (recording, camera) group (mean + multiplier*sd), labels every frame as
// NotActivated, Activated, or HighlyActivated, and fuses the two cameras'
// labels into a single HA/LA/NA activation per frame. Fusion is defined over
// the intersection of the cameras' frame keys: a frame observed by only one
// camera is ineligible for any activation label.
//
// Classification is a pure function of raw values and the Params constants;
// re-running a pass over the same table yields identical labels.
package classify
