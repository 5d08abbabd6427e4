// Package results persists analysis runs and exports their tables.
//
// The SQLite store keeps every run (with the constants it was computed
// under) and its result rows, so past analyses can be listed and re-exported
// without re-running the pipeline. CSV writers produce the per-(partition,
// activation level) result tables and the classified working table used for
// external plotting and audit.
package results
