package crawler

import (
	"net/url"
	"strings"
)

// absoluteURL resolves href against base when it is not already absolute.
// Unparseable inputs fall through unchanged; the fetcher will log the
// failure when it tries them.
func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
