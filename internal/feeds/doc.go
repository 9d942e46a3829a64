// Package feeds adds an RSS/Atom discovery source alongside the generative
// search providers. Matching entries become thread-kind candidates and flow
// through the same normalize, dedupe, and scoring path as everything else.
package feeds
