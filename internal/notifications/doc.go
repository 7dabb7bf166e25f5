// Package notifications delivers catalog events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured
// in config.toml and gracefully degrades to a no-op when no topic is set.
// Enumerated notification types cover the pipeline milestones (newly
// discovered events, ingest summaries, the daily digest, errors) so
// callers emit consistent messages without duplicating HTTP glue.
//
// Extend this package for alternative transports; the pipeline depends
// only on the Service interface.
package notifications
