// Package archive defines the core types shared across the crawl pipeline:
// links extracted from pages, work items flowing through the queue, the
// parsed Document abstraction, and the slug deriver that turns links into
// filesystem-safe names.
package archive

// Fixed filenames written into every archive folder.
const (
	// ArticleFilename holds the story's linked page.
	ArticleFilename = "article.html"
	// CommentsFilename holds the discussion page itself.
	CommentsFilename = "comments.html"
)

// Link is one anchor extracted from a page.
type Link struct {
	Href string
	Text string
}

// WorkItem is a single "fetch this URL and save it" task. It is immutable
// once created: the crawler owns it until it is enqueued, the downloader
// owns it after dequeue, and it is never re-queued.
type WorkItem struct {
	// Filename is the name of the file to write, derived via the slug
	// deriver or one of the fixed names above.
	Filename string
	// Dir is the archive folder name, relative to the store root.
	Dir string
	// URL is the absolute source URL to fetch.
	URL string
}
