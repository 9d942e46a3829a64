// Package quality implements the ordered, policy-driven filter pipeline:
// spam rejection, engagement floors, long-form and priority bonuses, and
// content classification. All passes are deterministic and the pipeline is
// idempotent on its own output.
package quality
