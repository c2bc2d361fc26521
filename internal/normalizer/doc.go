// Package normalizer canonicalizes wide punctuation in file and directory
// names and resolves the sibling collisions that renaming uncovers.
//
// The tree is walked bottom-up so a directory's contents are settled before
// the directory itself is renamed. When a canonical name is already taken the
// existing entry wins: a colliding file is deleted and a colliding directory
// is merged into its canonical sibling. Merges are planned by PlanMerge, a
// pure function over two directory snapshots, and then carried out by the
// executor. Running the normalizer on a converged tree changes nothing.
package normalizer
