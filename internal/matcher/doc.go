// Package matcher resolves a filesystem-derived title to the closest catalog
// title.
//
// Scoring is pluggable. The default AlignedOverlap scorer counts positions at
// which two titles carry the same character; TokenOverlap compares word
// fingerprints instead. Either way the highest score wins, the first-seen
// title keeps a tie, and a best score of zero means no match.
package matcher
