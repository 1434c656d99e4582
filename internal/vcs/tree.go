package vcs

import (
	"fmt"

	git "github.com/gogs/git-module"
)

// EntryKind is the type of a tree entry.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDir
	EntrySubmodule
	EntryOther
)

// Tree is a directory of a snapshot. Entries come back in the order the
// tree stores them.
type Tree interface {
	Entries() ([]Entry, error)
}

// Entry is a single child of a Tree.
type Entry interface {
	Name() string
	Kind() EntryKind
	// Mode is the git file mode, e.g. 0100644.
	Mode() uint32
	Size() int64
	Contents() ([]byte, error)
	// Subtree is only valid for EntryDir.
	Subtree() (Tree, error)
}

// Tree returns the root tree of the commit rev.
func (r *Repo) Tree(rev string) (Tree, error) {
	t, err := r.repo.LsTree(rev)
	if err != nil {
		return nil, fmt.Errorf("list tree of %s: %w", rev, err)
	}
	return &gitTree{tree: t}, nil
}

type gitTree struct {
	tree *git.Tree
}

func (t *gitTree) Entries() ([]Entry, error) {
	entries, err := t.tree.Entries()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = &gitEntry{parent: t.tree, entry: e}
	}
	return out, nil
}

type gitEntry struct {
	parent *git.Tree
	entry  *git.TreeEntry
}

func (e *gitEntry) Name() string { return e.entry.Name() }

func (e *gitEntry) Kind() EntryKind {
	switch e.entry.Type() {
	case git.ObjectBlob:
		return EntryFile
	case git.ObjectTree:
		return EntryDir
	case git.ObjectCommit:
		return EntrySubmodule
	}
	return EntryOther
}

func (e *gitEntry) Mode() uint32 { return uint32(e.entry.Mode()) }

func (e *gitEntry) Size() int64 { return e.entry.Size() }

func (e *gitEntry) Contents() ([]byte, error) {
	return e.entry.Blob().Bytes()
}

func (e *gitEntry) Subtree() (Tree, error) {
	t, err := e.parent.Subtree(e.entry.Name())
	if err != nil {
		return nil, err
	}
	return &gitTree{tree: t}, nil
}
