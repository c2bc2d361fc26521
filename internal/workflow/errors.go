package workflow

import "errors"

var (
	// ErrTraversal marks a directory that could not be read during a phase.
	// The pass stops at the failing phase.
	ErrTraversal = errors.New("tree traversal failed")
	// ErrLocked is returned when another pass holds the tree lock.
	ErrLocked = errors.New("another stagehand pass is running")
	// ErrPreflight is returned when a required path is unusable.
	ErrPreflight = errors.New("preflight checks failed")
)
