package site

import (
	"html/template"

	"sr.ht/~erock/pgit/internal/rewrite"
)

type SummaryPageData struct {
	*PageData
	Readme  template.HTML
	Mermaid bool
}

// writeSummary writes index.html. readme was rendered for its document
// below file/, so its relative links are rebased onto that directory.
func (g *Generator) writeSummary(readme template.HTML) error {
	readme = template.HTML(rewrite.RebaseBytes([]byte(readme), "file/"))
	return g.writeHtml("index.html", "summary", &SummaryPageData{
		PageData: g.pageData("Summary", ""),
		Readme:   readme,
		Mermaid:  hasDiagram(readme),
	})
}
