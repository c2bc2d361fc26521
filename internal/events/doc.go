// Package events carries the structured record of every change (or refusal to
// change) made to the artifact tree during a pass.
//
// Components report through a Sink. The workflow fans one pass's events out
// to a Collector for the run summary, a LogSink for operators, the journal
// and the metrics exporter.
package events
