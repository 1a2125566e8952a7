package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/vedran/blog/content"
	"github.com/vedran/blog/markdown"
	"github.com/vedran/blog/typography"
)

// PostPage is everything a post page shows. Build it with NewPostPage.
type PostPage struct {
	Entry content.Entry
	Nav   content.Navigation
	SEO   SEO
}

// NewPostPage assembles a post page. The description falls back to the
// excerpt and an absent featured image stays absent.
func NewPostPage(site content.Site, e content.Entry, nav content.Navigation) PostPage {
	desc := e.Description
	if desc == "" {
		desc = e.Excerpt
	}
	var image *string
	if e.FeaturedImage != "" {
		img := e.FeaturedImage
		image = &img
	}
	return PostPage{
		Entry: e,
		Nav:   nav,
		SEO: SEO{
			Title:       e.Title,
			Description: desc,
			Path:        e.Slug,
			Image:       image,
			Type:        "article",
			JSONLD:      BlogPostingJsonLD(site, e, desc),
		},
	}
}

// Post renders a full post page.
func Post(pc PageContext, p PostPage) g.Node {
	return Document(pc, p.SEO,
		PostArticle(p.Entry, pc.Form),
		PostNav(p.Nav),
	)
}

// PostArticle renders the title, the date and the body of an entry.
func PostArticle(e content.Entry, form FormContext) g.Node {
	return Article(
		Header(
			H1(
				g.Attr("style", "font-weight:600;margin-top:"+typography.Rhythm(1)+";margin-bottom:"+typography.Rhythm(1)),
				g.Text(e.Title),
			),
			g.If(e.DisplayDate != "", P(
				g.Attr("style", "display:block;margin-top:-"+typography.Rhythm(1)+";margin-bottom:"+typography.Rhythm(1)),
				Small(g.Text(e.DisplayDate)),
			)),
		),
		Section(postBody(e.Body, form)),
		Footer(),
	)
}

// postBody substitutes components for the shortcodes in a rendered body.
func postBody(body string, form FormContext) g.Node {
	segs := markdown.SplitShortcodes(body)
	nodes := make([]g.Node, 0, len(segs))
	for _, s := range segs {
		switch s.Shortcode {
		case "":
			nodes = append(nodes, g.Raw(s.HTML))
		case "Form":
			nodes = append(nodes, SubscribeForm(form))
		default:
			nodes = append(nodes, g.Raw(s.HTML))
		}
	}
	return g.Group(nodes)
}

// PostNav links to the older and newer posts. A side without a neighbour
// renders an empty list item.
func PostNav(nav content.Navigation) g.Node {
	return Nav(
		Ul(
			g.Attr("style", "display:flex;flex-wrap:wrap;justify-content:space-between;list-style:none;padding:0;margin-top:3rem"),
			Li(g.Iff(nav.Previous != nil, func() g.Node {
				return A(Href(nav.Previous.Slug), Rel("prev"), g.Text("← "+nav.Previous.Title))
			})),
			Li(g.Iff(nav.Next != nil, func() g.Node {
				return A(Href(nav.Next.Slug), Rel("next"), g.Text(nav.Next.Title+" →"))
			})),
		),
	)
}
