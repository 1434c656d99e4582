package vcs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	git "github.com/gogs/git-module"
)

// EmptyTreeID is the id git gives the tree with no entries.
const EmptyTreeID = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// ErrNoHead is returned by Head for repositories without commits.
var ErrNoHead = errors.New("repository has no HEAD commit")

// Repo is a git repository on disk.
type Repo struct {
	path string
	repo *git.Repository
}

// Open opens the repository at path.
func Open(path string) (*Repo, error) {
	repo, err := git.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %q: %w", path, err)
	}
	r := &Repo{path: path, repo: repo}
	// git.Open only checks that the directory exists
	if _, err := r.run("rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("open repository %q: not a git repository", path)
	}
	return r, nil
}

// Path is the directory the repository was opened from.
func (r *Repo) Path() string {
	return r.path
}

// Head returns the commit id HEAD points at. ErrNoHead is only returned
// for a branch without commits; any other failure to resolve HEAD is
// returned as is.
func (r *Repo) Head() (string, error) {
	if r.unborn() {
		return "", ErrNoHead
	}
	id, err := r.repo.RevParse("HEAD^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return id, nil
}

// unborn reports whether HEAD names a branch that does not exist yet.
func (r *Repo) unborn() bool {
	if _, err := r.run("symbolic-ref", "-q", "HEAD"); err != nil {
		// detached
		return false
	}
	_, err := r.run("rev-parse", "-q", "--verify", "HEAD")
	return err != nil
}

// FirstParent lists up to max commits reachable from rev by following only
// first parents, newest first, after skipping the first skip of them. A max
// of zero lists all of them.
func (r *Repo) FirstParent(rev string, skip, max int) ([]string, error) {
	args := []string{"rev-list", "--first-parent"}
	if skip > 0 {
		args = append(args, "--skip="+strconv.Itoa(skip))
	}
	if max > 0 {
		args = append(args, "--max-count="+strconv.Itoa(max))
	}
	out, err := r.run(append(args, rev)...)
	if err != nil {
		return nil, fmt.Errorf("rev-list %s: %w", rev, err)
	}
	return strings.Fields(string(out)), nil
}

// Commit loads the commit with the given id. Diff fields are left empty.
func (r *Repo) Commit(id string) (*Commit, error) {
	c, err := r.repo.CatFileCommit(id)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", id, err)
	}
	commit := &Commit{
		ID:        c.ID.String(),
		Author:    signature(c.Author),
		Committer: signature(c.Committer),
		Summary:   c.Summary(),
		Message:   strings.TrimRight(c.Message, "\n"),
	}
	if c.ParentsCount() > 0 {
		if pid, err := c.ParentID(0); err == nil {
			commit.ParentID = pid.String()
		}
	}
	return commit, nil
}

func signature(s *git.Signature) *Signature {
	if s == nil {
		return nil
	}
	return &Signature{Name: s.Name, Email: s.Email, When: s.When}
}

// Diff compares the commit with its first parent and fills its deltas and
// line counts. A missing parent tree is treated as the empty tree. Renames
// and copies are only detected for identical content. On error the commit
// is left without diff state.
func (r *Repo) Diff(c *Commit) (err error) {
	defer func() {
		if err != nil {
			c.ResetDiff()
		}
	}()

	tree, err := r.repo.RevParse(c.ID + "^{tree}")
	if err != nil {
		return fmt.Errorf("resolve tree of %s: %w", c.ShortID(), err)
	}
	parentTree := EmptyTreeID
	if c.ParentID != "" {
		if id, err := r.repo.RevParse(c.ParentID + "^{tree}"); err == nil {
			parentTree = id
		}
	}

	out, err := r.run(
		"-c", "core.quotepath=false",
		"diff-tree", "-r", "--raw", "-p",
		"--full-index", "--no-color", "--no-ext-diff",
		"-M100%", "-C100%",
		"--ignore-submodules=all",
		parentTree, tree,
	)
	if err != nil {
		return fmt.Errorf("diff %s: %w", c.ShortID(), err)
	}
	deltas, err := ParsePatch(out)
	if err != nil {
		return fmt.Errorf("parse diff of %s: %w", c.ShortID(), err)
	}
	c.SetDeltas(deltas)
	return nil
}

func (r *Repo) run(args ...string) ([]byte, error) {
	return git.NewCommand(args...).RunInDir(r.path)
}
