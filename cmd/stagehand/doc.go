// Package main hosts the stagehand CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration (optionally seeded from a .env
// file), builds the logger and hands off to the internal packages: run drives
// a workflow pass, check consults preflight and the processing gate, match
// explains catalog matching, history reads the journal, and config scaffolds
// and prints configuration. Commands print tables on a terminal and accept
// --output json|yaml for scripting.
package main
