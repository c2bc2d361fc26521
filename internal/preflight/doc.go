// Package preflight provides readiness checks for the filesystem paths that
// stagehand depends on.
//
// These checks run in two contexts:
//   - The workflow runner calls RunAll before a pass. If any check fails, the
//     pass is not started, so a half-mounted tree is never mutated.
//   - The CLI "stagehand check" command prints the same results.
package preflight
