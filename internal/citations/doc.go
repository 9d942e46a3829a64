// Package citations defends the pipeline against fabricated source links.
//
// Generative search providers return two different things: model output text
// (untrusted, may contain invented post IDs that look syntactically valid)
// and structured citation metadata (trusted, produced by the provider's own
// search tooling). This package cross-references each candidate's claimed URL
// against the trusted citations, repairing what it can and attaching a trust
// tier to everything else.
package citations
