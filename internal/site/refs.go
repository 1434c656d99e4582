package site

import (
	"github.com/mergestat/timediff"

	"sr.ht/~erock/pgit/internal/vcs"
)

type RefRow struct {
	Name   string
	Commit *vcs.Commit
	Age    string
}

type RefPageData struct {
	*PageData
	Branches []*RefRow
	Tags     []*RefRow
}

func (g *Generator) writeRefs(refs []*vcs.Reference) error {
	data := &RefPageData{PageData: g.pageData("Refs", "")}
	for _, ref := range refs {
		row := &RefRow{Name: ref.Name, Commit: ref.Commit}
		if ref.Commit != nil && ref.Commit.Author != nil {
			row.Age = timediff.TimeDiff(ref.Commit.Author.When)
		}
		if ref.Kind == vcs.RefTag {
			data.Tags = append(data.Tags, row)
		} else {
			data.Branches = append(data.Branches, row)
		}
	}
	return g.writeHtml("refs.html", "refs", data)
}
