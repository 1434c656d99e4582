package site

import (
	"errors"
	"fmt"
	"time"

	"sr.ht/~erock/pgit/internal/vcs"
)

// fakeSource is an in-memory linear history. ids[0] is the root commit.
type fakeSource struct {
	ids      []string
	head     string
	refs     []*vcs.Reference
	tree     vcs.Tree
	deltas   map[string][]*vcs.FileDelta
	failDiff map[string]bool
	failLoad map[string]bool

	diffCalls int
	// ids returned by FirstParent
	listed int
}

func commitID(i int) string {
	return fmt.Sprintf("%040x", i+1)
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{
		deltas:   map[string][]*vcs.FileDelta{},
		failDiff: map[string]bool{},
		failLoad: map[string]bool{},
	}
	for i := 0; i < n; i++ {
		s.ids = append(s.ids, commitID(i))
	}
	if n > 0 {
		s.head = s.ids[n-1]
	}
	return s
}

var errFake = errors.New("fake failure")

func (s *fakeSource) index(id string) int {
	for i, c := range s.ids {
		if c == id {
			return i
		}
	}
	return -1
}

func (s *fakeSource) Head() (string, error) {
	if s.head == "" {
		return "", vcs.ErrNoHead
	}
	return s.head, nil
}

func (s *fakeSource) FirstParent(rev string, skip, max int) ([]string, error) {
	i := s.index(rev)
	if i < 0 {
		return nil, fmt.Errorf("unknown revision %s", rev)
	}
	var out []string
	for i -= skip; i >= 0; i-- {
		if max > 0 && len(out) == max {
			break
		}
		out = append(out, s.ids[i])
	}
	s.listed += len(out)
	return out, nil
}

func (s *fakeSource) Commit(id string) (*vcs.Commit, error) {
	i := s.index(id)
	if i < 0 || s.failLoad[id] {
		return nil, errFake
	}
	when := time.Unix(1700000000+int64(i)*3600, 0).In(time.FixedZone("", 2*3600))
	c := &vcs.Commit{
		ID:        id,
		Author:    &vcs.Signature{Name: "Ann", Email: "ann@example.com", When: when},
		Committer: &vcs.Signature{Name: "Ann", Email: "ann@example.com", When: when},
		Summary:   fmt.Sprintf("commit number %d", i+1),
		Message:   fmt.Sprintf("commit number %d\n\nbody", i+1),
	}
	if i > 0 {
		c.ParentID = s.ids[i-1]
	}
	return c, nil
}

func (s *fakeSource) Diff(c *vcs.Commit) error {
	s.diffCalls++
	if s.failDiff[c.ID] {
		c.ResetDiff()
		return errFake
	}
	deltas, ok := s.deltas[c.ID]
	if !ok {
		deltas = []*vcs.FileDelta{defaultDelta(c.ParentID == "")}
	}
	c.SetDeltas(deltas)
	return nil
}

func (s *fakeSource) Refs() ([]*vcs.Reference, error) {
	return s.refs, nil
}

func (s *fakeSource) Tree(rev string) (vcs.Tree, error) {
	if s.tree == nil {
		return fakeTree{}, nil
	}
	return s.tree, nil
}

func defaultDelta(root bool) *vcs.FileDelta {
	if root {
		return &vcs.FileDelta{
			Status: vcs.StatusAdded, OldPath: "file.txt", NewPath: "file.txt",
			Hunks: []*vcs.Hunk{{
				Header: "@@ -0,0 +1 @@",
				Lines:  []*vcs.Line{{Content: "x\n", OldLine: -1, NewLine: 1}},
			}},
		}
	}
	return &vcs.FileDelta{
		Status: vcs.StatusModified, OldPath: "file.txt", NewPath: "file.txt",
		Hunks: []*vcs.Hunk{{
			Header: "@@ -1 +1 @@",
			Lines: []*vcs.Line{
				{Content: "x\n", OldLine: 1, NewLine: -1},
				{Content: "y\n", OldLine: -1, NewLine: 1},
			},
		}},
	}
}

type fakeTree []vcs.Entry

func (t fakeTree) Entries() ([]vcs.Entry, error) { return t, nil }

type fakeEntry struct {
	name string
	kind vcs.EntryKind
	mode uint32
	data []byte
	sub  fakeTree
}

func file(name, data string) *fakeEntry {
	return &fakeEntry{name: name, kind: vcs.EntryFile, mode: 0o100644, data: []byte(data)}
}

func dir(name string, entries ...vcs.Entry) *fakeEntry {
	return &fakeEntry{name: name, kind: vcs.EntryDir, mode: 0o040000, sub: entries}
}

func submodule(name string) *fakeEntry {
	return &fakeEntry{name: name, kind: vcs.EntrySubmodule, mode: 0o160000}
}

func (e *fakeEntry) Name() string              { return e.name }
func (e *fakeEntry) Kind() vcs.EntryKind       { return e.kind }
func (e *fakeEntry) Mode() uint32              { return e.mode }
func (e *fakeEntry) Size() int64               { return int64(len(e.data)) }
func (e *fakeEntry) Contents() ([]byte, error) { return e.data, nil }
func (e *fakeEntry) Subtree() (vcs.Tree, error) {
	if e.kind != vcs.EntryDir {
		return nil, errFake
	}
	return e.sub, nil
}
