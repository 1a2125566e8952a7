package views

import (
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/vedran/blog/content"
)

// SEO is the metadata injected into a page's head.
type SEO struct {
	Title       string
	Description string  // falls back to the site description
	Path        string  // canonical path
	Image       *string // nil when the page has no image
	Type        string  // og:type, "website" when empty
	JSONLD      string
}

// PageTitle returns the <title> text for s on site.
func (s SEO) PageTitle(site content.Site) string {
	if s.Title == "" || s.Title == site.Title {
		return site.Title
	}
	if site.Title == "" {
		return s.Title
	}
	return s.Title + " | " + site.Title
}

func seoHead(site content.Site, s SEO) g.Node {
	desc := s.Description
	if desc == "" {
		desc = site.Description
	}
	ogType := s.Type
	if ogType == "" {
		ogType = "website"
	}
	card := "summary"
	var image string
	if s.Image != nil {
		card = "summary_large_image"
		image = absoluteURL(site.SiteURL, *s.Image)
	}
	title := s.PageTitle(site)
	return g.Group([]g.Node{
		TitleEl(g.Text(title)),
		Meta(Name("description"), Content(desc)),
		g.If(s.Path != "", Link(Rel("canonical"), Href(absoluteURL(site.SiteURL, s.Path)))),
		Meta(g.Attr("property", "og:title"), Content(title)),
		Meta(g.Attr("property", "og:description"), Content(desc)),
		Meta(g.Attr("property", "og:type"), Content(ogType)),
		g.If(s.Path != "", Meta(g.Attr("property", "og:url"), Content(absoluteURL(site.SiteURL, s.Path)))),
		g.If(s.Image != nil, Meta(g.Attr("property", "og:image"), Content(image))),
		Meta(Name("twitter:card"), Content(card)),
		g.If(site.Social.Twitter != "", Meta(Name("twitter:creator"), Content("@"+strings.TrimPrefix(site.Social.Twitter, "@")))),
		Meta(Name("twitter:title"), Content(title)),
		Meta(Name("twitter:description"), Content(desc)),
		g.If(s.Image != nil, Meta(Name("twitter:image"), Content(image))),
		g.If(s.JSONLD != "", Script(Type("application/ld+json"), g.Raw(s.JSONLD))),
	})
}
