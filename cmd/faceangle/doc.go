// Package main hosts the faceangle CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the classification and modeling pipeline
// over frame-table CSVs, inspects and re-exports stored runs, and scaffolds
// configuration. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
