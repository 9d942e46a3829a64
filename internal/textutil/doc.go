// Package textutil provides text helpers shared across the discovery
// pipeline: title word sets and overlap ratios for fuzzy dedup, URL
// punctuation trimming, bounded truncation, and vault-safe filenames.
package textutil
