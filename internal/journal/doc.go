// Package journal records completed split runs in a local SQLite database.
//
// Each run stores the cuesheet, encoder settings, and per-track outcomes so
// 'hermes history' can show what was produced and what failed. Journaling is
// best-effort: a journal error never fails a split.
package journal
