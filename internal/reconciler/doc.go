// Package reconciler relocates loose stage artifacts into the artifact
// directory of the catalog video they belong to.
//
// One algorithm serves every artifact.Kind: discover files carrying the kind's
// suffix, skip those already sitting in their canonical directory, match the
// rest against the catalog, and move them under
// <channel>/<published day>_<title>/. An unmatched file is never touched, and
// a file whose destination already exists is treated as a duplicate and
// removed. Per-file failures are reported as events and the pass continues.
package reconciler
