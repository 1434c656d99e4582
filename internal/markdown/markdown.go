// Package markdown converts markdown documents to the HTML fragment shown on
// file and summary pages.
package markdown

import (
	"bytes"
	"fmt"
	"path"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"sr.ht/~erock/pgit/internal/rewrite"
)

// Renderer turns markdown into HTML and applies the diagram and link rewrites.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a Renderer. Raw HTML in documents is omitted unless unsafe is
// set, in which case it is kept and the result is sanitized.
func New(unsafe bool) *Renderer {
	opts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM, meta.Meta),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	r := &Renderer{}
	if unsafe {
		opts = append(opts, goldmark.WithRendererOptions(html.WithUnsafe()))
		r.policy = bluemonday.UGCPolicy()
		// fenced block languages, needed for diagram blocks
		r.policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code")
	}
	r.md = goldmark.New(opts...)
	return r
}

// Render converts src. Front matter is dropped and returned separately.
func (r *Renderer) Render(src []byte) ([]byte, map[string]interface{}, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := r.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return nil, nil, fmt.Errorf("convert markdown: %w", err)
	}
	fm := meta.Get(ctx)

	out := buf.Bytes()
	if r.policy != nil {
		out = r.policy.SanitizeBytes(out)
	}
	return rewrite.All(out), fm, nil
}

// IsMarkdownFile reports whether name has one of the markdown extensions.
func IsMarkdownFile(name string) bool {
	ext := path.Ext(name)
	if ext == "" {
		return false
	}
	return rewrite.IsMarkdownExt(ext[1:])
}
