// Package provider implements clients for the generative search APIs that
// feed the discovery pipeline.
//
// PostClient talks to a Responses-style API whose live post-search tool
// returns structured citations alongside the model output. ThreadClient talks
// to a chat-completions API with a web-search tool and surfaces forum threads.
// Synthesizer turns scan results into the daily briefing paragraph.
//
// All clients parse the model's JSON output defensively: items the model
// fabricates or mangles are dropped rather than failing the call, and real
// source URLs are only ever taken from the API's citation metadata, never
// from the output text.
package provider
