package site

import (
	"bytes"
	"fmt"
	"html/template"

	"sr.ht/~erock/pgit/internal/vcs"
)

const moreCommitsRow = `<tr><td></td><td colspan="5">More commits remaining [...]</td></tr>` + "\n"

type LogPageData struct {
	*PageData
	Rows template.HTML
}

func commitDoc(id string) string {
	return fmt.Sprintf("commit/%s.html", id)
}

// writeLog walks the first-parent history of head, newest first, and
// writes log.html plus the detail document of every commit that does not
// have one yet.
//
// With a cache the walk stops at the head of the previous run and the
// cached rows are appended after the new ones. With a row limit only the
// first MaxCommits rows are shown, but the walk still runs to the root so
// missing detail documents are written.
func (g *Generator) writeLog(head string) error {
	var rows bytes.Buffer
	if head != "" {
		if err := g.walkLog(head, &rows); err != nil {
			return err
		}
	}
	if g.cache != nil {
		if err := g.cache.CarryForward(&rows); err != nil {
			return err
		}
	}

	return g.writeHtml("log.html", "log", &LogPageData{
		PageData: g.pageData("Log", ""),
		Rows:     template.HTML(rows.String()),
	})
}

// walkPage is the number of commits listed per rev-list call, so a run
// that stops at the cached head does not list the whole history.
const walkPage = 256

func (g *Generator) walkLog(head string, rows *bytes.Buffer) error {
	w := &logWalk{g: g, rows: rows, limited: g.cfg.MaxCommits > 0, remaining: g.cfg.MaxCommits}
	from, skip := head, 0
	for {
		ids, err := g.src.FirstParent(from, skip, walkPage)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if g.cache != nil && g.cache.Seen(id) {
				return nil
			}
			if err := w.commit(id); err != nil {
				return err
			}
		}
		if len(ids) < walkPage {
			return nil
		}
		from, skip = ids[len(ids)-1], 1
	}
}

type logWalk struct {
	g         *Generator
	rows      *bytes.Buffer
	limited   bool
	remaining int
}

// commit writes the log row of id and its detail document if it does not
// exist yet.
func (w *logWalk) commit(id string) error {
	g := w.g
	doc := commitDoc(id)
	exists, err := g.exists(doc)
	if err != nil {
		return err
	}
	// nothing left to show and nothing to write
	if w.limited && w.remaining == 0 && exists {
		return nil
	}

	commit, err := g.src.Commit(id)
	if err != nil {
		return err
	}
	if err := g.src.Diff(commit); err != nil {
		g.logger.Warnf("(%s) skipping commit: %s", commit.ShortID(), err)
		return nil
	}

	row, err := g.logRow(commit)
	if err != nil {
		return err
	}
	switch {
	case !w.limited:
		w.rows.Write(row)
	case w.remaining > 0:
		w.rows.Write(row)
		w.remaining--
		if w.remaining == 0 && commit.ParentID != "" {
			w.rows.WriteString(moreCommitsRow)
		}
	}
	if g.cache != nil {
		if err := g.cache.WriteRow(row); err != nil {
			return err
		}
	}

	if exists {
		g.logger.Debugf("(%s) commit file already generated, skipping", commit.ShortID())
		return nil
	}
	return g.writeCommit(commit)
}

// logRow renders the log.html row of a commit. Rows are cached verbatim, so
// they must only depend on the commit.
func (g *Generator) logRow(c *vcs.Commit) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.pages["row"].ExecuteTemplate(&buf, "log-row", c); err != nil {
		return nil, fmt.Errorf("render log row %s: %w", c.ShortID(), err)
	}
	return buf.Bytes(), nil
}
