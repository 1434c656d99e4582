package rewrite

import (
	"bytes"
	"io"
)

var (
	diagramMarker = []byte(`class="language-mermaid"`)
	wrapperPre    = []byte("<pre>")
	wrapperCode   = []byte("<code ")
	closeSeq      = []byte("</code></pre>")
)

const (
	diagramOpen  = `<pre class="mermaid">`
	diagramClose = `</pre>`
)

type diagramState int

const (
	scanning diagramState = iota
	wrapperOpen
	copyingVerbatim
	matchedClose
)

// Diagrams rewrites fenced mermaid blocks into diagram containers:
//
//	<pre><code class="language-mermaid">graph TD;</code></pre>
//
// becomes
//
//	<pre class="mermaid">graph TD;</pre>
//
// The block body is copied verbatim. A marker that is not wrapped by
// <pre><code ...>, or whose block is never closed, is left untouched.
func Diagrams(w io.Writer, src []byte) error {
	ew := &errWriter{w: w}

	var (
		state   = scanning
		flushed int // src[:flushed] has been written
		pos     int
		preAt   int
		bodyAt  int
		closeAt int
	)

	for ew.err == nil {
		switch state {
		case scanning:
			i := bytes.Index(src[pos:], diagramMarker)
			if i < 0 {
				ew.write(src[flushed:])
				return ew.err
			}
			markerAt := pos + i
			pos = markerAt + len(diagramMarker)
			if at, ok := wrapperStart(src, markerAt, flushed); ok {
				preAt = at
				state = wrapperOpen
			}

		case wrapperOpen:
			end := bytes.IndexByte(src[pos:], '>')
			if end < 0 {
				state = scanning
				pos = len(src)
				continue
			}
			bodyAt = pos + end + 1
			state = copyingVerbatim

		case copyingVerbatim:
			i := bytes.Index(src[bodyAt:], closeSeq)
			if i < 0 {
				// unclosed block: nothing was emitted for it yet
				state = scanning
				pos = bodyAt
				continue
			}
			closeAt = bodyAt + i
			state = matchedClose

		case matchedClose:
			ew.write(src[flushed:preAt])
			ew.writeString(diagramOpen)
			ew.write(src[bodyAt:closeAt])
			ew.writeString(diagramClose)
			flushed = closeAt + len(closeSeq)
			pos = flushed
			state = scanning
		}
	}
	return ew.err
}

// wrapperStart walks back from the marker and returns the offset of the
// <pre> tag wrapping it. The code tag must still be open at the marker and
// the pre tag must be the nearest tag before it.
func wrapperStart(src []byte, markerAt, floor int) (int, bool) {
	codeAt := bytes.LastIndexByte(src[:markerAt], '<')
	if codeAt < floor || !bytes.HasPrefix(src[codeAt:], wrapperCode) {
		return 0, false
	}
	if bytes.IndexByte(src[codeAt:markerAt], '>') >= 0 {
		return 0, false
	}
	preAt := bytes.LastIndexByte(src[:codeAt], '<')
	if preAt < floor || !bytes.HasPrefix(src[preAt:], wrapperPre) {
		return 0, false
	}
	return preAt, true
}
