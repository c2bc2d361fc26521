// Package artifact describes the files that make up the per-video pipeline
// tree.
//
// A video owns one ArtifactDirectory named "{published}_{title}" holding up to
// three stage artifacts, one per Kind. Each Kind is recognized purely by
// filename suffix; Suffixes carries the configured suffix table and the
// parsing rules that turn a filename back into a filesystem title. The
// reconciler, the garbage collector and the processing gate all read names
// through this package so they agree on what a file is.
package artifact
