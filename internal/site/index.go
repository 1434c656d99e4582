package site

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"sr.ht/~erock/pgit/internal/config"
	"sr.ht/~erock/pgit/internal/vcs"
)

// IndexRepo is one row of the repository index.
type IndexRepo struct {
	Name  string
	Desc  string
	Owner string
	// Link is relative to the index page: the README document of the
	// repository's pages, or its log.
	Link       string
	LastCommit time.Time
}

type IndexPageData struct {
	Title   string
	Repos   []*IndexRepo
	Readme  template.HTML
	Mermaid bool
}

// IndexSource is what the index needs from a repository.
type IndexSource interface {
	Head() (string, error)
	Commit(id string) (*vcs.Commit, error)
	Tree(rev string) (vcs.Tree, error)
}

// NewIndexRepo describes a repository for the index. Repositories without
// commits are not listed and return nil.
func NewIndexRepo(meta *config.Meta, src IndexSource) (*IndexRepo, error) {
	head, err := src.Head()
	if errors.Is(err, vcs.ErrNoHead) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c, err := src.Commit(head)
	if err != nil {
		return nil, err
	}
	root, err := src.Tree(head)
	if err != nil {
		return nil, err
	}
	files, err := rootFiles(root)
	if err != nil {
		return nil, err
	}

	r := &IndexRepo{
		Name:  meta.Name,
		Desc:  meta.Desc,
		Owner: meta.Owner,
		Link:  meta.Name + "/log.html",
	}
	if readme := firstOf(files, readmeFiles); readme != "" {
		r.Link = meta.Name + "/" + fileDoc(readme)
	}
	if c.Author != nil {
		r.LastCommit = c.Author.When
	}
	return r, nil
}

// WriteIndex renders the repository index page to w.
func WriteIndex(w io.Writer, data *IndexPageData) error {
	ts, err := template.New("index").Funcs(funcs).ParseFS(
		efs,
		"html/index.page.tmpl",
		"html/footer.partial.tmpl",
	)
	if err != nil {
		return fmt.Errorf("parse index template: %w", err)
	}
	data.Mermaid = hasDiagram(data.Readme)
	if err := ts.ExecuteTemplate(w, "index", data); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	return nil
}
