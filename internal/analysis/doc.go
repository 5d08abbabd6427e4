// Package analysis orchestrates the camera-angle bias pipeline and
// aggregates its results.
//
// For each blendshape it runs classification and two-camera fusion, then for
// each modeled activation level extracts the matching frame subset, fits the
// random-intercept regression, and folds the fitted model into a result
// record with fixed rounding. Fitting skips (insufficient data, persistent
// degeneracy) are expected and logged; schema problems abort the partition.
package analysis
