// Package workflow runs one pass over the artifact tree.
//
// A pass takes the tree lock, runs preflight checks, then executes the
// requested phases in their fixed order: normalize, reconcile, gc. Every
// component reports to one event stream that fans out to the log, the
// in-memory summary, the journal and the metrics textfile. Per-file failures
// only produce events; a traversal failure aborts the pass.
//
// Passes never overlap: the runner holds an exclusive flock on
// state_dir/pass.lock for the whole pass and refuses to start when another
// process holds it.
package workflow
