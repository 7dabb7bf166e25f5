// Package pipeline orchestrates the ingest run: posts are parsed into
// candidates, candidates are consolidated into canonical events, and a
// final classification pass assigns categories.
//
// Processing is strictly sequential. A file lock guarantees a single
// writer per catalog, which removes the double-insert race without any
// locking inside the matcher. Failures for one post are logged and
// counted, never fatal to the batch.
package pipeline
