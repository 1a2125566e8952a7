package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/vedran/blog/content"
	"github.com/vedran/blog/typography"
)

// Home lists every entry, newest first.
func Home(pc PageContext, entries []content.Entry) g.Node {
	seo := SEO{
		Title:  "All posts",
		Path:   "/",
		JSONLD: WebsiteJsonLD(pc.Site),
	}
	return Document(pc, seo,
		g.If(len(entries) == 0, P(g.Text("No blog posts found."))),
		g.Group(g.Map(entries, entrySummary)),
	)
}

func entrySummary(e content.Entry) g.Node {
	summary := e.Description
	if summary == "" {
		summary = e.Excerpt
	}
	return Article(
		Header(
			H3(
				g.Attr("style", "margin-bottom:"+typography.Rhythm(1.0/4)),
				A(g.Attr("style", "box-shadow:none"), Href(e.Slug), g.Text(e.Title)),
			),
			g.If(e.DisplayDate != "", Small(g.Text(e.DisplayDate))),
		),
		Section(P(g.Text(summary))),
	)
}

// NotFound is the 404 page.
func NotFound(pc PageContext) g.Node {
	return Document(pc, SEO{Title: "404: Not Found"},
		H1(g.Text("Not Found")),
		P(g.Text("You just hit a route that doesn't exist... the sadness.")),
	)
}

// ServerError is shown when rendering a page fails.
func ServerError(pc PageContext) g.Node {
	return Document(pc, SEO{Title: "Something went wrong"},
		H1(g.Text("Something went wrong")),
		P(g.Text("The page could not be rendered. Please try again later.")),
	)
}
