// Package logging assembles the structured slog loggers used across trawl.
//
// It owns the console and JSON handlers, level parsing, and typed attribute
// helpers so pipeline stages emit records with a consistent shape. Prefer
// these constructors over hand-rolled slog setup.
package logging
