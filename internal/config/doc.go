// Package config loads, normalizes, and validates faceangle configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and pipeline need: input/output locations, the thresholding
// constants of the classification recipe, and the contrast coding of the
// regression design matrix.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
