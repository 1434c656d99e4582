// Package site renders the static pages of a repository: the commit log and
// its detail pages, the file browser, references, feeds and the summary.
package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma"
	formatterHtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/styles"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sr.ht/~erock/pgit/internal/config"
	"sr.ht/~erock/pgit/internal/logcache"
	"sr.ht/~erock/pgit/internal/markdown"
	"sr.ht/~erock/pgit/internal/vcs"
)

//go:embed static/style.css
var styleCss []byte

//go:embed html/*.tmpl
var efs embed.FS

// Source is the repository the pages are generated from. *vcs.Repo
// implements it.
type Source interface {
	Head() (string, error)
	// FirstParent lists first-parent ancestors of rev, newest first,
	// skipping skip of them and returning at most max (0 for all).
	FirstParent(rev string, skip, max int) ([]string, error)
	Commit(id string) (*vcs.Commit, error)
	Diff(c *vcs.Commit) error
	Refs() ([]*vcs.Reference, error)
	Tree(rev string) (vcs.Tree, error)
}

// RepoInfo is shown in the header of every page.
type RepoInfo struct {
	Name     string
	Desc     string
	CloneURL string

	// paths of special files in the head tree, empty when absent
	Readme     string
	License    string
	Submodules string
}

type PageData struct {
	Repo *RepoInfo
	// Title of the page, before the repository name.
	Title string
	// RelPath leads from the page back to the output directory.
	RelPath string
}

type Generator struct {
	cfg    *config.Config
	src    Source
	fs     afero.Fs
	logger *zap.SugaredLogger
	theme  *chroma.Style
	md     *markdown.Renderer
	pages  map[string]*template.Template
	repo   *RepoInfo

	// set for the duration of Run when a cache file is configured
	cache *logcache.Cache
}

var pageTemplates = []string{
	"log", "commit", "files", "file", "refs", "summary",
}

// New prepares a Generator. Templates are parsed once here.
func New(cfg *config.Config, src Source, fs afero.Fs, logger *zap.SugaredLogger) (*Generator, error) {
	pages := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		ts, err := template.New(name).Funcs(funcs).ParseFS(
			efs,
			fmt.Sprintf("html/%s.page.tmpl", name),
			"html/header.partial.tmpl",
			"html/footer.partial.tmpl",
			"html/base.layout.tmpl",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = ts
	}
	row, err := template.New("row").Funcs(funcs).ParseFS(efs, "html/logrow.partial.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse log row template: %w", err)
	}
	pages["row"] = row

	return &Generator{
		cfg:    cfg,
		src:    src,
		fs:     fs,
		logger: logger,
		theme:  styles.Get(cfg.Theme),
		md:     markdown.New(cfg.UnsafeHTML),
		pages:  pages,
		repo: &RepoInfo{
			Name:     cfg.Label,
			Desc:     cfg.Desc,
			CloneURL: cfg.CloneURL,
		},
	}, nil
}

// Run writes every page. The log cache, when configured, is only replaced
// after all pages were written.
func (g *Generator) Run() (err error) {
	g.logger.Infof("compiling (%s)", g.repo.Name)

	head, err := g.src.Head()
	if errors.Is(err, vcs.ErrNoHead) {
		g.logger.Warnf("(%s) has no commits", g.cfg.RepoPath)
		head = ""
	} else if err != nil {
		return err
	}

	var root vcs.Tree
	if head != "" {
		if root, err = g.src.Tree(head); err != nil {
			return err
		}
		if err = g.findSpecialFiles(root); err != nil {
			return err
		}
	}

	if g.cfg.CacheFile != "" && head != "" {
		if g.cache, err = logcache.Open(g.fs, g.cfg.CacheFile); err != nil {
			return err
		}
		if err = g.cache.Begin(head); err != nil {
			return multierr.Append(err, g.cache.Abort())
		}
		defer func() {
			if err != nil {
				err = multierr.Append(err, g.cache.Abort())
			}
			g.cache = nil
		}()
	}

	if err = g.writeLog(head); err != nil {
		return err
	}
	readme, err := g.writeFiles(root)
	if err != nil {
		return err
	}
	var refs []*vcs.Reference
	if head != "" {
		if refs, err = g.src.Refs(); err != nil {
			return err
		}
	}
	if err = g.writeRefs(refs); err != nil {
		return err
	}
	if err = g.writeFeeds(head, refs); err != nil {
		return err
	}
	if err = g.writeSummary(readme); err != nil {
		return err
	}
	if err = g.copyStatic(); err != nil {
		return err
	}

	if g.cache != nil {
		if err = g.cache.Commit(); err != nil {
			return err
		}
	}

	g.logger.Infof("compilation complete (%s)", g.repo.Name)
	return nil
}

// rootFiles returns the names of the regular files at the top of root.
func rootFiles(root vcs.Tree) (map[string]bool, error) {
	entries, err := root.Entries()
	if err != nil {
		return nil, fmt.Errorf("list root tree: %w", err)
	}
	files := map[string]bool{}
	for _, e := range entries {
		if e.Kind() == vcs.EntryFile {
			files[e.Name()] = true
		}
	}
	return files, nil
}

func (g *Generator) findSpecialFiles(root vcs.Tree) error {
	files, err := rootFiles(root)
	if err != nil {
		return err
	}
	g.repo.Readme = firstOf(files, readmeFiles)
	g.repo.License = firstOf(files, licenseFiles)
	if files[".gitmodules"] {
		g.repo.Submodules = ".gitmodules"
	}
	return nil
}

var (
	readmeFiles  = []string{"README.md", "README.markdown", "README.mdown", "README.mkd", "README"}
	licenseFiles = []string{"LICENSE", "LICENSE.md", "COPYING"}
)

func firstOf(files map[string]bool, names []string) string {
	for _, n := range names {
		if files[n] {
			return n
		}
	}
	return ""
}

func (g *Generator) pageData(title, relPath string) *PageData {
	return &PageData{Repo: g.repo, Title: title, RelPath: relPath}
}

// relPath returns the prefix that leads from the document at name (relative
// to the output directory) back to the output directory.
func relPath(name string) string {
	return strings.Repeat("../", strings.Count(name, "/"))
}

func (g *Generator) outPath(name string) string {
	return filepath.Join(g.cfg.OutDir, filepath.FromSlash(name))
}

func (g *Generator) exists(name string) (bool, error) {
	return afero.Exists(g.fs, g.outPath(name))
}

// writeHtml renders the page template into name, relative to the output
// directory.
func (g *Generator) writeHtml(name, page string, data interface{}) error {
	var buf bytes.Buffer
	if err := g.pages[page].ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return g.writeFile(name, buf.Bytes())
}

func (g *Generator) writeFile(name string, data []byte) (err error) {
	fp := g.outPath(name)
	if err := g.fs.MkdirAll(filepath.Dir(fp), os.ModePerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", fp, err)
	}
	g.logger.Debugf("writing (%s)", fp)

	w, err := g.fs.OpenFile(fp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", fp, err)
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", fp, err)
	}
	return nil
}

func (g *Generator) copyStatic() error {
	if err := g.writeFile("style.css", styleCss); err != nil {
		return err
	}
	var buf bytes.Buffer
	formatter := formatterHtml.New(formatterHtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, g.theme); err != nil {
		return fmt.Errorf("generate syntax css: %w", err)
	}
	return g.writeFile("syntax.css", buf.Bytes())
}

const (
	longTime  = "Mon, _2 Jan 2006 15:04:05 -0700"
	shortTime = "2006-01-02 15:04"
)

// text escapes s for element content. Unlike the template's own escaping it
// leaves "+" alone, which diff output is full of.
func text(s string) template.HTML {
	return template.HTML(html.EscapeString(s))
}

var funcs = template.FuncMap{
	// longtime keeps the offset the signature was made with.
	"longtime": func(t time.Time) template.HTML { return text(t.Format(longTime)) },
	"text":     text,
	"shorttime": func(t time.Time) string {
		return t.UTC().Format(shortTime)
	},
	"plural": func(n int) string {
		if n == 1 {
			return ""
		}
		return "s"
	},
	"added":   func(l *vcs.Line) bool { return l.Kind() == vcs.LineAdded },
	"deleted": func(l *vcs.Line) bool { return l.Kind() == vcs.LineDeleted },
}
