// Package rewrite post-processes HTML produced by the markdown converter.
//
// Each pass is a single left-to-right scan with bounded lookbehind. Bytes
// outside a matched span are copied unchanged, and anything that does not
// have the exact expected shape is passed through as is.
package rewrite

import (
	"bytes"
	"io"
	"strings"
)

// markdownExts are the extensions that get a rendered .html document.
var markdownExts = []string{"md", "markdown", "mdown", "mkd"}

// IsMarkdownExt reports whether ext (without the dot) is a markdown
// extension. The comparison ignores case.
func IsMarkdownExt(ext string) bool {
	for _, e := range markdownExts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) write(p []byte) {
	if ew.err != nil || len(p) == 0 {
		return
	}
	_, ew.err = ew.w.Write(p)
}

func (ew *errWriter) writeString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func apply(pass func(io.Writer, []byte) error, src []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(src))
	// bytes.Buffer never returns a write error.
	_ = pass(&buf, src)
	return buf.Bytes()
}

// DiagramsBytes is Diagrams over an in-memory buffer.
func DiagramsBytes(src []byte) []byte {
	return apply(Diagrams, src)
}

// LinksBytes is Links over an in-memory buffer.
func LinksBytes(src []byte) []byte {
	return apply(Links, src)
}

// RebaseBytes is Rebase over an in-memory buffer.
func RebaseBytes(src []byte, base string) []byte {
	return apply(func(w io.Writer, src []byte) error { return Rebase(w, src, base) }, src)
}

// All runs the diagram pass and then the link pass.
func All(src []byte) []byte {
	return LinksBytes(DiagramsBytes(src))
}
