// Package favorites persists favorite encrypted-volume entries.
//
// Each entry lives in its own JSON record inside the favorites directory. The
// record name is derived from the entry identity (volume path plus mount
// point) so lookups, removal and duplicate detection never need an index.
// Records written by earlier releases, including tri-states stored as
// "true"/"false"/"undefined" strings, are read unchanged.
//
// MigrateLegacy converts the old tab-separated bulk list into records.
package favorites
