// Package chunking turns document text into retrieval-sized chunks
// using a language model.
//
// Documents larger than a single model window are sliced into
// overlapping token panels. Each panel becomes one generation request
// asking the model to emit delimiter-separated chunks; the per-panel
// results are then stitched back into one contiguous sequence, dropping
// the chunk each overlap regenerates. Requests pass through the shared
// token rate limiter and the throttle-aware retry orchestrator.
package chunking
