package vcs

import (
	"fmt"
	"strings"

	git "github.com/gogs/git-module"
)

const (
	headsPrefix = "refs/heads/"
	tagsPrefix  = "refs/tags/"
)

// Refs returns all branches and tags resolved to commits, ordered by
// SortReferences. References that do not point at a commit are skipped.
func (r *Repo) Refs() ([]*Reference, error) {
	refs, err := r.repo.ShowRef(git.ShowRefOptions{Heads: true, Tags: true})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}

	out := make([]*Reference, 0, len(refs))
	for _, ref := range refs {
		var kind RefKind
		switch {
		case strings.HasPrefix(ref.Refspec, headsPrefix):
			kind = RefBranch
		case strings.HasPrefix(ref.Refspec, tagsPrefix):
			kind = RefTag
		default:
			continue
		}

		id, err := r.repo.RevParse(ref.Refspec + "^{commit}")
		if err != nil {
			continue
		}
		commit, err := r.Commit(id)
		if err != nil {
			return nil, err
		}
		out = append(out, &Reference{
			Name:   git.RefShortName(ref.Refspec),
			Kind:   kind,
			Commit: commit,
		})
	}
	SortReferences(out)
	return out, nil
}
