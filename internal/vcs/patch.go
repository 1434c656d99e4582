package vcs

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ParsePatch reads the output of
//
//	git diff-tree -r --raw -p <old> <new>
//
// and returns one FileDelta per raw record, in raw order. Patch sections
// are attached to the delta whose new path they describe, so the two
// sections git prints for a type change land on the same delta. Line
// counts are not tallied; see Commit.SetDeltas.
func ParsePatch(out []byte) ([]*FileDelta, error) {
	deltas, err := parseRaw(out)
	if err != nil {
		return nil, err
	}
	files, _, err := gitdiff.Parse(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}

	m := newDeltaMerger(deltas)
	for _, f := range files {
		m.attach(f)
	}
	return deltas, nil
}

// parseRaw reads the raw records at the start of out. They end at the
// first line that does not start with a colon.
func parseRaw(out []byte) ([]*FileDelta, error) {
	var deltas []*FileDelta
	for len(out) > 0 && out[0] == ':' {
		var line []byte
		if i := bytes.IndexByte(out, '\n'); i >= 0 {
			line, out = out[:i], out[i+1:]
		} else {
			line, out = out, nil
		}
		d, err := rawRecord(string(line))
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}

func rawRecord(line string) (*FileDelta, error) {
	fields := strings.Split(line, "\t")
	meta := strings.Fields(fields[0])
	if len(meta) != 5 || len(fields) < 2 {
		return nil, fmt.Errorf("malformed raw record %q", line)
	}
	status, ok := parseStatus(meta[4][0])
	if !ok {
		return nil, fmt.Errorf("unknown status %q", meta[4])
	}
	d := &FileDelta{Status: status}
	d.OldPath = unquotePath(fields[1])
	d.NewPath = d.OldPath
	if status == StatusRenamed || status == StatusCopied {
		if len(fields) < 3 {
			return nil, fmt.Errorf("raw record %q has no destination", line)
		}
		d.NewPath = unquotePath(fields[2])
	}
	return d, nil
}

type deltaMerger struct {
	deltas []*FileDelta
	byPath map[string]*FileDelta
	// next delta without a patch section, used when a section's path
	// matches no raw record
	nextUnpatched int
}

func newDeltaMerger(deltas []*FileDelta) *deltaMerger {
	m := &deltaMerger{deltas: deltas, byPath: map[string]*FileDelta{}}
	for _, d := range deltas {
		if _, seen := m.byPath[d.NewPath]; !seen {
			m.byPath[d.NewPath] = d
		}
	}
	return m
}

func (m *deltaMerger) attach(f *gitdiff.File) {
	path := f.NewName
	if path == "" {
		path = f.OldName
	}
	d := m.byPath[path]
	if d == nil {
		for m.nextUnpatched < len(m.deltas) && m.deltas[m.nextUnpatched].patched() {
			m.nextUnpatched++
		}
		if m.nextUnpatched == len(m.deltas) {
			return
		}
		d = m.deltas[m.nextUnpatched]
	}

	d.Binary = d.Binary || f.IsBinary
	if d.Hunks == nil {
		// mark as seen even without hunks, e.g. exact renames
		d.Hunks = []*Hunk{}
	}
	for _, frag := range f.TextFragments {
		d.Hunks = append(d.Hunks, hunk(frag))
	}
}

func (d *FileDelta) patched() bool {
	return d.Hunks != nil || d.Binary
}

func hunk(frag *gitdiff.TextFragment) *Hunk {
	h := &Hunk{Header: hunkHeader(frag)}
	oldLine, newLine := int(frag.OldPosition), int(frag.NewPosition)
	for _, fl := range frag.Lines {
		l := &Line{Content: fl.Line, OldLine: -1, NewLine: -1}
		if !strings.HasSuffix(l.Content, "\n") {
			l.Content += "\n"
			l.NoNewline = true
		}
		switch fl.Op {
		case gitdiff.OpContext:
			l.OldLine, l.NewLine = oldLine, newLine
			oldLine++
			newLine++
		case gitdiff.OpDelete:
			l.OldLine = oldLine
			oldLine++
		case gitdiff.OpAdd:
			l.NewLine = newLine
			newLine++
		}
		h.Lines = append(h.Lines, l)
	}
	return h
}

// hunkHeader formats the header the way git prints it: a range of one line
// has no count.
func hunkHeader(frag *gitdiff.TextFragment) string {
	s := fmt.Sprintf("@@ -%s +%s @@",
		hunkRange(frag.OldPosition, frag.OldLines),
		hunkRange(frag.NewPosition, frag.NewLines))
	if frag.Comment != "" {
		s += " " + frag.Comment
	}
	return s
}

func hunkRange(start, lines int64) string {
	if lines == 1 {
		return strconv.FormatInt(start, 10)
	}
	return fmt.Sprintf("%d,%d", start, lines)
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	if q, err := strconv.Unquote(s); err == nil {
		return q
	}
	return s
}
