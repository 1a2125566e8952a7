// Package content loads markdown posts with front matter into immutable
// entries and orders them into a collection with previous/next navigation.
package content

import "time"

// DisplayDateLayout formats Entry.Date for humans.
const DisplayDateLayout = "January 02, 2006"

// Entry is one post as produced by the content pipeline.
type Entry struct {
	Slug          string // "/blog/hello-world/"
	Title         string
	Date          time.Time
	DisplayDate   string
	Body          string // rendered HTML, shortcodes unexpanded
	Description   string // optional
	FeaturedImage string // optional, absolute URL path or URL
	Excerpt       string
	Draft         bool

	// SourceDir is the directory of the source file inside the content tree.
	// Assets are files referenced by the post, relative to SourceDir.
	SourceDir string
	Assets    []string
}

// NavRef points at a neighbouring entry.
type NavRef struct {
	Slug  string
	Title string
}

// Navigation holds the entries around a post. A nil field means there is no
// neighbour on that side.
type Navigation struct {
	Previous *NavRef // next older post
	Next     *NavRef // next newer post
}

// Social holds the handles the footer links are built from.
type Social struct {
	Twitter string `mapstructure:"twitter" yaml:"twitter"`
	GitHub  string `mapstructure:"github" yaml:"github"`
	Email   string `mapstructure:"email" yaml:"email"`
}

// Site is the metadata shared by every page.
type Site struct {
	Title       string `mapstructure:"title" yaml:"title"`
	Author      string `mapstructure:"author" yaml:"author"`
	Description string `mapstructure:"description" yaml:"description"`
	SiteURL     string `mapstructure:"siteUrl" yaml:"siteUrl"`
	Social      Social `mapstructure:"social" yaml:"social"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayDateLayout)
}
