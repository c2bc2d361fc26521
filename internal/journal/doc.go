// Package journal records every pass over the artifact tree in SQLite.
//
// A pass is a run row (uuid, root, phases, status, timestamps) and the events
// it emitted, in emission order. The journal is an operator's audit trail:
// nothing in a pass reads it back, and a pass that cannot write to it still
// completes. Schema changes bump schemaVersion; users delete journal.db to
// adopt the new schema.
package journal
