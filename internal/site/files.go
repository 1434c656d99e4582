package site

import (
	"fmt"
	"html/template"
	"path"

	"github.com/dustin/go-humanize"

	"sr.ht/~erock/pgit/internal/vcs"
)

// TreeRow is one line of the file browser.
type TreeRow struct {
	Path   string
	Parent string
	Depth  int
	Name   string
	Mode   string
	Size   string
	// URL is empty for directories.
	URL  string
	Icon string
	Dir  bool
}

type FilesPageData struct {
	*PageData
	Rows []*TreeRow
}

type FilePageData struct {
	*PageData
	Name     string
	Path     string
	Size     int64
	Pretty   string
	Binary   bool
	Markdown bool
	Mermaid  bool
	Contents template.HTML
}

func fileDoc(p string) string {
	return fmt.Sprintf("file/%s.html", p)
}

// writeFiles renders files.html and a document for every file in root.
// It returns the rendered README, if there is one.
func (g *Generator) writeFiles(root vcs.Tree) (template.HTML, error) {
	t := &treeWalk{g: g}
	if root != nil {
		if err := g.renderTree(t, root, "", 0); err != nil {
			return "", err
		}
	}
	err := g.writeHtml("files.html", "files", &FilesPageData{
		PageData: g.pageData("Files", ""),
		Rows:     t.rows,
	})
	return t.readme, err
}

type treeWalk struct {
	g      *Generator
	rows   []*TreeRow
	readme template.HTML
}

// renderTree lists the entries of tree below dir. Each directory lists its
// subdirectories first, each followed by its own contents, then its files.
func (g *Generator) renderTree(t *treeWalk, tree vcs.Tree, dir string, depth int) error {
	entries, err := tree.Entries()
	if err != nil {
		return fmt.Errorf("list tree %q: %w", dir, err)
	}

	for _, e := range entries {
		if e.Kind() != vcs.EntryDir {
			continue
		}
		p := path.Join(dir, e.Name())
		t.rows = append(t.rows, &TreeRow{
			Path:   p,
			Parent: dir,
			Depth:  depth,
			Name:   e.Name(),
			Mode:   "d---------",
			Size:   "-",
			Icon:   "dir",
			Dir:    true,
		})
		sub, err := e.Subtree()
		if err != nil {
			return fmt.Errorf("open tree %q: %w", p, err)
		}
		if err := g.renderTree(t, sub, p, depth+1); err != nil {
			return err
		}
	}

	for _, e := range entries {
		p := path.Join(dir, e.Name())
		row := &TreeRow{
			Path:   p,
			Parent: dir,
			Depth:  depth,
			Name:   e.Name(),
			Icon:   fileIcon(e.Name()),
		}
		switch e.Kind() {
		case vcs.EntryFile:
			lines, err := g.writeBlob(t, e, p)
			if err != nil {
				return err
			}
			row.URL = fileDoc(p)
			row.Mode = fileMode(e.Mode())
			if lines > 0 {
				row.Size = fmt.Sprintf("%dL", lines)
			} else {
				row.Size = fmt.Sprintf("%dB", e.Size())
			}
		case vcs.EntrySubmodule:
			row.URL = fileDoc(".gitmodules")
			row.Mode = "m---------"
			row.Size = "@"
		default:
			continue
		}
		t.rows = append(t.rows, row)
	}
	return nil
}

// writeBlob writes the document of the file at p and returns the number of
// lines shown with line numbers, zero for binary and markdown files.
func (g *Generator) writeBlob(t *treeWalk, e vcs.Entry, p string) (int, error) {
	b, err := e.Contents()
	if err != nil {
		return 0, fmt.Errorf("read %q: %w", p, err)
	}

	doc := fileDoc(p)
	data := &FilePageData{
		PageData: g.pageData(e.Name(), relPath(doc)),
		Name:     e.Name(),
		Path:     p,
		Size:     int64(len(b)),
		Pretty:   humanize.Bytes(uint64(len(b))),
		Binary:   !isTextFile(b),
	}

	lines := 0
	if !data.Binary {
		contents, n, md, err := g.renderBlob(p, b)
		if err != nil {
			return 0, err
		}
		data.Contents = contents
		data.Markdown = md
		data.Mermaid = md && hasDiagram(contents)
		lines = n
		if p == g.repo.Readme {
			t.readme = contents
		}
	}

	if err := g.writeHtml(doc, "file", data); err != nil {
		return 0, err
	}
	return lines, nil
}

// renderBlob renders a text file. Markdown is converted, anything else or
// markdown that fails to convert is highlighted with line numbers.
func (g *Generator) renderBlob(p string, b []byte) (template.HTML, int, bool, error) {
	if isMarkdown(p) {
		out, _, err := g.md.Render(b)
		if err == nil {
			return template.HTML(out), 0, true, nil
		}
		g.logger.Warnf("(%s) rendering as text: %s", p, err)
	}
	contents, err := parseText(path.Base(p), string(b), g.theme)
	if err != nil {
		return "", 0, false, fmt.Errorf("highlight %q: %w", p, err)
	}
	return template.HTML(contents), countLines(b), false, nil
}
