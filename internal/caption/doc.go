// Package caption converts raw social-media captions into structured event
// candidates.
//
// The parser is heuristic and best-effort: an ordered cascade of rules
// resolves the title, labeled or emoji-prefixed markers resolve date, time,
// and venue, and free-text scans fill the gaps. It never fails: a caption
// that defeats every rule still yields a candidate with a placeholder title
// and the raw text as description. Ambiguous captions are parsed wrong the
// same way every run; determinism matters more than accuracy here because
// downstream dedup keys on the parsed fields.
package caption
