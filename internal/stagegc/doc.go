// Package stagegc removes audio captures that have been superseded by a
// derived artifact.
//
// Only artifact directories (named YYYY-MM-DD_title) are collected. Within
// one, an audio file next to a diarization or transcript file is no longer
// needed. Loose files in channel directories are never touched. Derived
// artifacts are never removed, and audio without a successor is left alone.
package stagegc
