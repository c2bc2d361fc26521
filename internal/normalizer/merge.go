package normalizer

import (
	"os"
	"path/filepath"
	"sort"

	"stagehand/internal/textutil"
)

// Entry is a snapshot of one directory entry. Children is only populated for
// directories.
type Entry struct {
	Name     string
	Dir      bool
	Children []Entry
}

// ActionKind says what the executor does with a source entry.
type ActionKind string

const (
	// ActionMove relocates a source entry whose name is free in the destination.
	ActionMove ActionKind = "move"
	// ActionDelete removes a source entry whose name the destination already holds.
	ActionDelete ActionKind = "delete"
	// ActionMerge recurses into a pair of same-named directories.
	ActionMerge ActionKind = "merge"
	// ActionConflict leaves a source directory that collides with a destination file.
	ActionConflict ActionKind = "conflict"
)

// Action is one planned step of a merge.
type Action struct {
	Kind        ActionKind
	Source      string
	Destination string
	// Actions holds the nested plan of an ActionMerge.
	Actions []Action
}

// Snapshot reads the tree under path.
func Snapshot(path string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{Name: de.Name(), Dir: de.IsDir()}
		if entry.Dir {
			children, err := Snapshot(filepath.Join(path, entry.Name))
			if err != nil {
				return nil, err
			}
			entry.Children = children
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// PlanMerge plans merging the directory src (at srcPath) into dst (at
// dstPath). Source names are canonicalized; an item the destination already
// holds is deleted from the source unless both are directories, in which case
// the two are merged recursively. Items are planned in name order.
func PlanMerge(srcPath string, src []Entry, dstPath string, dst []Entry) []Action {
	taken := make(map[string]Entry, len(dst))
	for _, entry := range dst {
		taken[entry.Name] = entry
	}

	ordered := make([]Entry, len(src))
	copy(ordered, src)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	actions := make([]Action, 0, len(ordered))
	for _, entry := range ordered {
		target := textutil.Narrow(entry.Name)
		from := filepath.Join(srcPath, entry.Name)
		to := filepath.Join(dstPath, target)

		existing, ok := taken[target]
		switch {
		case !ok:
			actions = append(actions, Action{Kind: ActionMove, Source: from, Destination: to})
			taken[target] = entry
		case entry.Dir && existing.Dir:
			actions = append(actions, Action{
				Kind:        ActionMerge,
				Source:      from,
				Destination: to,
				Actions:     PlanMerge(from, entry.Children, to, existing.Children),
			})
		case entry.Dir:
			actions = append(actions, Action{Kind: ActionConflict, Source: from, Destination: to})
		default:
			actions = append(actions, Action{Kind: ActionDelete, Source: from, Destination: to})
		}
	}
	return actions
}
