package archive

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Structural selectors for the news.ycombinator.com markup. These are the
// only queries the pipeline performs against fetched pages.
const (
	storyLinkSelector   = "td.subtext span.age a"
	titleLinkSelector   = "td.title > a"
	commentLinkSelector = `div.comment a[rel="nofollow"]`
)

// Document is the parsed result of fetching a URL: either a queryable HTML
// tree or an explicit "no content" marker. Transport details (status code,
// headers) never cross this boundary.
type Document struct {
	doc *goquery.Document
}

// ParseDocument builds a Document from an HTML stream.
func ParseDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// EmptyDocument returns the "no content" marker.
func EmptyDocument() *Document {
	return &Document{}
}

// Empty reports whether the document carries no usable content. A parsed
// tree with no visible text counts as empty, matching the treatment of
// blank fetch results everywhere in the pipeline.
func (d *Document) Empty() bool {
	return d == nil || d.doc == nil || strings.TrimSpace(d.doc.Text()) == ""
}

// StoryLinks returns the age/comments link of every story on a front page,
// in listed order.
func (d *Document) StoryLinks() []Link {
	return d.selectLinks(storyLinkSelector)
}

// TitleLink returns the canonical article link of a discussion page.
func (d *Document) TitleLink() (Link, bool) {
	if d.Empty() {
		return Link{}, false
	}
	sel := d.doc.Find(titleLinkSelector).First()
	if sel.Length() == 0 {
		return Link{}, false
	}
	return linkFrom(sel), true
}

// CommentLinks returns every outbound link inside a comment body, in
// document order. Duplicates are preserved.
func (d *Document) CommentLinks() []Link {
	return d.selectLinks(commentLinkSelector)
}

func (d *Document) selectLinks(selector string) []Link {
	if d.Empty() {
		return nil
	}
	var links []Link
	d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		links = append(links, linkFrom(sel))
	})
	return links
}

func linkFrom(sel *goquery.Selection) Link {
	href, _ := sel.Attr("href")
	return Link{Href: href, Text: sel.Text()}
}

// Render writes the serialized HTML tree to w.
func (d *Document) Render(w io.Writer) error {
	if d.Empty() {
		return errors.New("render empty document")
	}
	for _, node := range d.doc.Nodes {
		if err := html.Render(w, node); err != nil {
			return fmt.Errorf("render document: %w", err)
		}
	}
	return nil
}
