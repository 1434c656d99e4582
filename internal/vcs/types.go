// Package vcs reads commits, diffs, references and trees from a git
// repository.
package vcs

import (
	"sort"
	"strings"
	"time"
)

// Signature identifies an author or committer. When keeps the UTC offset
// recorded in the commit as its location.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Status is the kind of change a FileDelta records.
type Status int

const (
	StatusModified Status = iota
	StatusAdded
	StatusCopied
	StatusDeleted
	StatusRenamed
	StatusTypeChanged
)

// Letter returns the one-letter code git uses for the status.
func (s Status) Letter() string {
	switch s {
	case StatusAdded:
		return "A"
	case StatusCopied:
		return "C"
	case StatusDeleted:
		return "D"
	case StatusModified:
		return "M"
	case StatusRenamed:
		return "R"
	case StatusTypeChanged:
		return "T"
	}
	return " "
}

func parseStatus(c byte) (Status, bool) {
	switch c {
	case 'A':
		return StatusAdded, true
	case 'C':
		return StatusCopied, true
	case 'D':
		return StatusDeleted, true
	case 'M':
		return StatusModified, true
	case 'R':
		return StatusRenamed, true
	case 'T':
		return StatusTypeChanged, true
	}
	return 0, false
}

// LineKind classifies a diff line.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineDeleted
)

// Line is one line of a hunk. A side the line does not exist on has line
// number -1. Content always ends with a newline; NoNewline records that the
// file itself has none after this line.
type Line struct {
	Content   string
	OldLine   int
	NewLine   int
	NoNewline bool
}

// Text is Content with a guaranteed trailing newline.
func (l *Line) Text() string {
	if strings.HasSuffix(l.Content, "\n") {
		return l.Content
	}
	return l.Content + "\n"
}

// Kind derives the classification from the line numbers.
func (l *Line) Kind() LineKind {
	switch {
	case l.OldLine == -1:
		return LineAdded
	case l.NewLine == -1:
		return LineDeleted
	}
	return LineContext
}

// Hunk is a contiguous block of changes.
type Hunk struct {
	Header string
	Lines  []*Line
}

// FileDelta is the change of a single file within a commit.
type FileDelta struct {
	Status   Status
	OldPath  string
	NewPath  string
	Binary   bool
	Hunks    []*Hunk
	AddCount int
	DelCount int
}

// Commit holds what the pages show about one commit. The diff fields are
// empty until Repo.Diff fills them.
type Commit struct {
	ID        string
	ParentID  string
	Author    *Signature
	Committer *Signature
	Summary   string
	Message   string

	Deltas    []*FileDelta
	AddCount  int
	DelCount  int
	FileCount int
}

// SetDeltas attaches deltas to the commit and tallies line counts. Binary
// deltas are listed but counted as zero.
func (c *Commit) SetDeltas(deltas []*FileDelta) {
	c.Deltas = deltas
	c.FileCount = len(deltas)
	c.AddCount, c.DelCount = 0, 0
	for _, d := range deltas {
		d.AddCount, d.DelCount = 0, 0
		if d.Binary {
			continue
		}
		for _, h := range d.Hunks {
			for _, l := range h.Lines {
				switch l.Kind() {
				case LineAdded:
					d.AddCount++
				case LineDeleted:
					d.DelCount++
				}
			}
		}
		c.AddCount += d.AddCount
		c.DelCount += d.DelCount
	}
}

// ResetDiff drops any diff state.
func (c *Commit) ResetDiff() {
	c.Deltas = nil
	c.AddCount, c.DelCount, c.FileCount = 0, 0, 0
}

// ShortID is the abbreviated commit id.
func (c *Commit) ShortID() string {
	return ShortID(c.ID)
}

// ShortID abbreviates a commit id to 7 characters.
func ShortID(id string) string {
	if len(id) < 7 {
		return id
	}
	return id[:7]
}

// RefKind tells branches from tags.
type RefKind int

const (
	RefBranch RefKind = iota
	RefTag
)

// Reference is a branch or tag resolved to the commit it points at.
type Reference struct {
	Name   string
	Kind   RefKind
	Commit *Commit
}

func (r *Reference) authorUnix() int64 {
	if r.Commit == nil || r.Commit.Author == nil {
		return 0
	}
	return r.Commit.Author.When.Unix()
}

// SortReferences orders branches before tags, then newest author time
// first, then by name.
func SortReferences(refs []*Reference) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.Kind != b.Kind {
			return a.Kind == RefBranch
		}
		if ta, tb := a.authorUnix(), b.authorUnix(); ta != tb {
			return ta > tb
		}
		return a.Name < b.Name
	})
}
