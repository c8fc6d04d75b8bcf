// Package ingest drives documents through the import pipeline:
// extract text, chunk via the language model, embed each chunk, and
// persist the document as one batch. Progress is reported per stage
// through a Reporter; throttle waits surface as their own events so a
// UI can show a live countdown. Batches run strictly sequentially and
// abort on the first fatal error without rolling back documents that
// already completed.
package ingest
