// Package items defines the canonical candidate record shared by every
// pipeline stage, plus the normalization boundary that converts raw
// provider JSON into that shape.
//
// Normalization is deliberately permissive: providers return model-generated
// payloads whose fields are frequently missing or malformed, so a bad field
// costs the field, not the item, and a bad item costs the item, not the
// batch. Only a missing URL (or missing title for threads, text for posts)
// disqualifies an item outright.
package items
