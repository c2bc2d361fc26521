// Package textutil holds the string rules shared by every phase that compares
// titles or rewrites names on disk.
//
// NormalizeTitle is the single normalization applied to catalog titles and to
// titles recovered from filenames; comparing strings that went through
// different rules is the usual cause of duplicate artifact directories.
// Narrow maps the fullwidth punctuation block back to ASCII so names written
// by producers that substitute "visually wide" characters converge on one
// spelling. Fold and Tokenize support case-insensitive and token-level
// comparisons.
package textutil
