// Package dataset models the multi-camera blendshape frame table and its
// loading and validation rules.
//
// A Table holds one partition's frames: each row is one time-sampled
// observation of one camera, carrying a numeric value for every tracked
// blendshape channel. Rows sharing a recording identifier and frame number
// across cameras describe the same physical instant. The package enforces
// the partition invariant (every recording observed by exactly the reference
// camera and one comparison camera) and fails fast on schema violations;
// downstream code assumes validated input.
package dataset
