// Package catalog loads the canonical video metadata (title, publish day, id)
// that every artifact on disk is reconciled against.
//
// The catalog is read once per process and never mutated afterwards. Titles
// are normalized with textutil.NormalizeTitle on the way in, and duplicate
// normalized titles resolve last-write-wins. Any failure to open or parse the
// source is reported as ErrLoad, which callers treat as fatal.
package catalog
