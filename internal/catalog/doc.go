// Package catalog persists the event registry in SQLite.
//
// Two tables back the pipeline: candidates records every parsed caption as
// an audit trail, and events holds the deduplicated canonical records the
// rest of the system serves. The store is the only mutation surface for
// both; the dedup matcher and classifier operate exclusively through it so
// the backing store can be swapped behind the same contract.
package catalog
