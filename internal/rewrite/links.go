package rewrite

import (
	"bytes"
	"io"
)

var hrefMarker = []byte(`href="`)

const renderedSuffix = ".html"

// Links points relative links to markdown files at their rendered
// documents by appending ".html" to the extension:
//
//	href="docs/readme.md#setup"  ->  href="docs/readme.md.html#setup"
//
// Absolute paths, anchors and URLs with a scheme are not touched.
func Links(w io.Writer, src []byte) error {
	return eachHref(w, src, func(ew *errWriter, url []byte) {
		if at := markdownExtEnd(url); at >= 0 {
			ew.write(url[:at])
			ew.writeString(renderedSuffix)
			ew.write(url[at:])
			return
		}
		ew.write(url)
	})
}

// Rebase prefixes relative links with base, for a document shown from a
// directory other than the one its links were written for:
//
//	href="docs/guide.md.html"  ->  href="file/docs/guide.md.html"
//
// Absolute paths, anchors and URLs with a scheme are not touched.
func Rebase(w io.Writer, src []byte, base string) error {
	return eachHref(w, src, func(ew *errWriter, url []byte) {
		if isRelative(url) {
			ew.writeString(base)
		}
		ew.write(url)
	})
}

// eachHref copies src to w and hands the value of every href attribute to
// edit, which writes its replacement.
func eachHref(w io.Writer, src []byte, edit func(ew *errWriter, url []byte)) error {
	ew := &errWriter{w: w}
	pos := 0
	for pos < len(src) && ew.err == nil {
		i := bytes.Index(src[pos:], hrefMarker)
		if i < 0 {
			break
		}
		urlAt := pos + i + len(hrefMarker)
		ew.write(src[pos:urlAt])
		pos = urlAt

		end := bytes.IndexByte(src[urlAt:], '"')
		if end < 0 {
			break
		}
		edit(ew, src[urlAt:urlAt+end])
		// the closing quote is copied with the next chunk
		pos = urlAt + end
	}
	ew.write(src[pos:])
	return ew.err
}

func isRelative(url []byte) bool {
	return len(url) > 0 && url[0] != '/' && url[0] != '#' && !hasScheme(url)
}

// markdownExtEnd returns the offset just past the markdown extension of a
// relative URL, or -1 when the URL must be left alone.
func markdownExtEnd(url []byte) int {
	if len(url) <= 3 {
		return -1
	}
	if !isRelative(url) {
		return -1
	}
	dot := bytes.LastIndexByte(url, '.')
	if dot < 0 {
		return -1
	}
	ext := url[dot+1:]
	if h := bytes.IndexByte(ext, '#'); h >= 0 {
		ext = ext[:h]
	}
	if !IsMarkdownExt(string(ext)) {
		return -1
	}
	return dot + 1 + len(ext)
}

// hasScheme reports whether url starts with "scheme:" as in RFC 3986.
func hasScheme(url []byte) bool {
	for i, c := range url {
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return false
			}
		case c == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}
