package site

import (
	"sr.ht/~erock/pgit/internal/diffstat"
	"sr.ht/~erock/pgit/internal/vcs"
)

type StatRow struct {
	Status  string
	OldPath string
	NewPath string
	Changed int
	Plus    string
	Minus   string
}

type CommitPageData struct {
	*PageData
	Commit   *vcs.Commit
	TooLarge bool
	Stats    []*StatRow
}

func (g *Generator) writeCommit(c *vcs.Commit) error {
	doc := commitDoc(c.ID)
	data := &CommitPageData{
		PageData: g.pageData(c.Summary, relPath(doc)),
		Commit:   c,
		TooLarge: diffstat.TooLarge(c.FileCount, len(c.Deltas), c.AddCount, c.DelCount),
	}
	if !data.TooLarge {
		data.Stats = statRows(c.Deltas)
	}
	return g.writeHtml(doc, "commit", data)
}

func statRows(deltas []*vcs.FileDelta) []*StatRow {
	rows := make([]*StatRow, len(deltas))
	for i, d := range deltas {
		plus, minus := diffstat.Bar(d.AddCount, d.DelCount)
		rows[i] = &StatRow{
			Status:  d.Status.Letter(),
			OldPath: d.OldPath,
			NewPath: d.NewPath,
			Changed: d.AddCount + d.DelCount,
			Plus:    plus,
			Minus:   minus,
		}
	}
	return rows
}
