package archive_test

import (
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligain/ycrawler/internal/archive"
)

var slugShape = regexp.MustCompile(`^[a-z0-9_-]*$`)

func TestSlugFromText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link archive.Link
		want string
	}{
		{
			name: "title with punctuation",
			link: archive.Link{
				Href: "https://github.com/p-gen/smenu",
				Text: "Smenu – Terminal utility: advanced selection menus (2016)",
			},
			want: "smenu-terminal-utility-advanced-selection-menus-20",
		},
		{
			name: "plain words",
			link: archive.Link{Href: "x", Text: "A Story About Go"},
			want: "a-story-about-go",
		},
		{
			name: "surrounding whitespace",
			link: archive.Link{Href: "x", Text: "  Trimmed Title  "},
			want: "trimmed-title",
		},
		{
			name: "underscores survive",
			link: archive.Link{Href: "x", Text: "show_hn rocks"},
			want: "show_hn-rocks",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := archive.Slug(tt.link, archive.SlugFromText)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), archive.MaxSlugLen)
			assert.Regexp(t, slugShape, got)
		})
	}
}

func TestSlugFromTextTruncates(t *testing.T) {
	t.Parallel()

	long := archive.Link{Href: "x", Text: "this title keeps going and going and going and going and going"}
	got, err := archive.Slug(long, archive.SlugFromText)
	require.NoError(t, err)
	assert.Len(t, got, archive.MaxSlugLen)
}

func TestSlugFromHref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "trailing slash stripped",
			href: "https://github.com/p-gen/smenu/",
			want: "smenu.html",
		},
		{
			name: "existing html extension passes through",
			href: "https://example.com/docs/v06i4a05p_0001.html",
			want: "v06i4a05p_0001.html",
		},
		{
			name: "htm extension passes through unchanged",
			href: "https://example.com/docs/v06i4a05p_0001.htm",
			want: "v06i4a05p_0001.htm",
		},
		{
			name: "long segment truncated before extension",
			href: "https://jobs.lever.co/density/3393dfbb-1814-4f9d-a380-b0dedde3c378-apply",
			want: "3393dfbb-1814-4f9d-a380-b0dedde3c378-apply.html",
		},
		{
			name: "upper case folded",
			href: "https://example.com/Posts/MyStory",
			want: "mystory.html",
		},
		{
			name: "bare host yields empty segment",
			href: "https://example.com/",
			want: ".html",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := archive.Slug(archive.Link{Href: tt.href, Text: "ignored"}, archive.SlugFromHref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), archive.MaxSlugLen+len(".html"))
		})
	}
}

func TestSlugFromHrefTruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// "a" plus 25 two-byte runes is 51 bytes; a byte-wise cut at 50 would
	// split the last rune.
	segment := "a" + strings.Repeat("ü", 25)
	got, err := archive.Slug(archive.Link{Href: "https://example.com/" + segment}, archive.SlugFromHref)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "a"+strings.Repeat("ü", 24)+".html", got)
}

func TestSlugDeterministic(t *testing.T) {
	t.Parallel()

	link := archive.Link{Href: "https://example.com/a/b", Text: "Some Story!"}
	for _, mode := range []archive.SlugMode{archive.SlugFromText, archive.SlugFromHref} {
		first, err := archive.Slug(link, mode)
		require.NoError(t, err)
		second, err := archive.Slug(link, mode)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestSlugRejectsZeroLink(t *testing.T) {
	t.Parallel()

	_, err := archive.Slug(archive.Link{}, archive.SlugFromText)
	assert.ErrorIs(t, err, archive.ErrNotLink)

	_, err = archive.Slug(archive.Link{Text: "text only"}, archive.SlugFromHref)
	assert.ErrorIs(t, err, archive.ErrNotLink)
}
