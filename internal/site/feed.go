package site

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/gorilla/feeds"

	"sr.ht/~erock/pgit/internal/vcs"
)

// FeedSize caps the number of entries in each feed.
const FeedSize = 100

func (g *Generator) writeFeeds(head string, refs []*vcs.Reference) error {
	var commits []*vcs.Commit
	if head != "" {
		ids, err := g.src.FirstParent(head, 0, FeedSize)
		if err != nil {
			return err
		}
		for _, id := range ids {
			c, err := g.src.Commit(id)
			if err != nil {
				return err
			}
			commits = append(commits, c)
		}
	}
	items := make([]*feeds.Item, 0, len(commits))
	for _, c := range commits {
		items = append(items, feedItem(c, ""))
	}
	if err := g.writeFeed("atom.xml", ", branch HEAD", items); err != nil {
		return err
	}

	var tags []*feeds.Item
	for _, ref := range refs {
		if ref.Kind != vcs.RefTag || ref.Commit == nil {
			continue
		}
		if len(tags) == FeedSize {
			break
		}
		tags = append(tags, feedItem(ref.Commit, ref.Name))
	}
	return g.writeFeed("tags.xml", ", tags", tags)
}

func (g *Generator) writeFeed(name, suffix string, items []*feeds.Item) error {
	feed := &feeds.Feed{
		Title:       g.repo.Name + suffix,
		Link:        &feeds.Link{Href: "log.html"},
		Description: g.repo.Desc,
		Items:       items,
	}
	// keep the output stable between runs
	if len(items) > 0 {
		feed.Updated = items[0].Updated
		feed.Created = items[0].Created
	}

	var buf bytes.Buffer
	if err := feed.WriteAtom(&buf); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return g.writeFile(name, buf.Bytes())
}

func feedItem(c *vcs.Commit, tag string) *feeds.Item {
	title := c.Summary
	if tag != "" {
		title = fmt.Sprintf("[%s] %s", tag, title)
	}
	item := &feeds.Item{
		Id:      c.ID,
		Title:   title,
		Link:    &feeds.Link{Href: commitDoc(c.ID), Rel: "alternate", Type: "text/html"},
		Content: "<pre>" + html.EscapeString(feedText(c)) + "</pre>",
	}
	if c.Author != nil {
		item.Author = &feeds.Author{Name: c.Author.Name, Email: c.Author.Email}
		item.Created = c.Author.When
	}
	if c.Committer != nil {
		item.Updated = c.Committer.When
	}
	return item
}

func feedText(c *vcs.Commit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", c.ID)
	if c.ParentID != "" {
		fmt.Fprintf(&b, "parent %s\n", c.ParentID)
	}
	if c.Author != nil {
		fmt.Fprintf(&b, "Author: %s <%s>\nDate:   %s\n",
			c.Author.Name, c.Author.Email, c.Author.When.Format(longTime))
	}
	if c.Message != "" {
		fmt.Fprintf(&b, "\n%s", c.Message)
	}
	return b.String()
}
