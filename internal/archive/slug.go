package archive

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSlugLen bounds slugs derived from link text and from path segments
// without a file extension.
const MaxSlugLen = 50

// ErrNotLink reports that the slug deriver was handed a zero-value link.
// Well-formed page structure never produces one, so hitting this is a
// programmer error local to the call.
var ErrNotLink = errors.New("archive: not a link")

// SlugMode selects which part of a link a slug is derived from.
type SlugMode int

const (
	// SlugFromText derives the slug from the link's visible text.
	SlugFromText SlugMode = iota
	// SlugFromHref derives the slug from the link's href.
	SlugFromHref
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9_]+`)

// Slug converts a link into a bounded-length, filesystem-safe name.
// Identical input always yields an identical slug.
//
// SlugFromText lower-cases the visible text, collapses every run of other
// characters into a single hyphen, and truncates to MaxSlugLen.
//
// SlugFromHref lower-cases the href and strips trailing slashes. An href
// ending in .htm or .html yields the final path segment unchanged (filename
// semantics, not truncated); anything else yields the final segment
// truncated to MaxSlugLen with ".html" appended. A segment that truncates
// to nothing yields the slug ".html" — accepted, not rejected.
func Slug(link Link, mode SlugMode) (string, error) {
	if link == (Link{}) {
		return "", ErrNotLink
	}
	switch mode {
	case SlugFromText:
		text := strings.ToLower(strings.TrimSpace(link.Text))
		return truncate(nonSlugChars.ReplaceAllString(text, "-"), MaxSlugLen), nil
	case SlugFromHref:
		if link.Href == "" {
			return "", ErrNotLink
		}
		href := strings.TrimRight(strings.ToLower(link.Href), "/")
		segment := href[strings.LastIndex(href, "/")+1:]
		if strings.HasSuffix(href, ".html") || strings.HasSuffix(href, ".htm") {
			return segment, nil
		}
		return truncate(segment, MaxSlugLen) + ".html", nil
	default:
		return "", fmt.Errorf("archive: unknown slug mode %d", mode)
	}
}

// truncate cuts s to at most n bytes, backing up to a rune boundary so a
// multibyte href segment never yields an invalid-UTF-8 filename.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
