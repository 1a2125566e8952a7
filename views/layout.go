package views

import (
	"fmt"
	"net/url"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/vedran/blog/content"
	"github.com/vedran/blog/typography"
)

// LinkedInURL is the profile the footer always links to.
const LinkedInURL = "https://www.linkedin.com/in/vedran-budimcic/"

// Tagline is shown under the author's name in the header.
const Tagline = "Thoughts & projects"

// FooterLink is one entry of the footer's social links.
type FooterLink struct {
	Label string
	URL   string
}

// FooterLinks returns the footer links in display order. Each handle is
// substituted as is; an empty handle still produces its link.
func FooterLinks(s content.Social) []FooterLink {
	return []FooterLink{
		{Label: "linkedin", URL: LinkedInURL},
		{Label: "twitter", URL: "https://twitter.com/" + s.Twitter},
		{Label: "github", URL: "https://www.github.com/" + s.GitHub},
		{Label: "email", URL: "mailto:" + s.Email},
	}
}

// Document is the HTML shell: head with SEO tags, then the layout.
func Document(pc PageContext, seo SEO, children ...g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				seoHead(pc.Site, seo),
				Link(Rel("icon"), Type("image/png"), Href("/icons/icon-48x48.png")),
				Link(Rel("manifest"), Href("/manifest.webmanifest")),
				Link(Rel("alternate"), Type("application/rss+xml"), Title(pc.Site.Title), Href("/rss.xml")),
				StyleEl(g.Raw(baseStyle())),
				g.If(pc.TrackingID != "", analytics(pc.TrackingID)),
			),
			Body(
				Layout(pc, children...),
				Script(Src("/static/subscribe.js"), Defer()),
			),
		),
	})
}

// Layout centres the page on the rhythm grid and frames it with the header
// and the footer.
func Layout(pc PageContext, children ...g.Node) g.Node {
	return Div(
		g.Attr("style", fmt.Sprintf("margin-left:auto;margin-right:auto;max-width:%s;padding:%s %s",
			typography.Rhythm(24), typography.Rhythm(1.5), typography.Rhythm(3.0/4))),
		Header(SiteHeader(pc.Site, pc.Avatar, pc.IsRootPage())),
		Main(children...),
		SiteFooter(pc.Site.Social),
	)
}

// SiteHeader shows the avatar, the author and the tagline, all linking home.
// On the home page the link is marked as the current page.
func SiteHeader(site content.Site, avatar string, isRootPage bool) g.Node {
	return Nav(
		g.Attr("style", "display:flex;align-items:center;height:50px"),
		A(
			Href("/"),
			g.If(isRootPage, Aria("current", "page")),
			g.Attr("style", "box-shadow:none;text-decoration:none;color:inherit;display:inherit"),
			g.If(avatar != "", Img(
				Src(avatar),
				Alt(site.Author),
				Width("50"), Height("50"),
				g.Attr("style", fmt.Sprintf("margin-right:%s;margin-bottom:0;min-width:50px;border-radius:50%%", typography.Rhythm(0.5))),
			)),
			Div(
				Div(g.Attr("style", "font-size:20px;font-weight:500;line-height:25px"), g.Text(site.Author)),
				Div(g.Attr("style", "font-size:14px;line-height:25px;color:grey"), g.Text(Tagline)),
			),
		),
	)
}

// SiteFooter renders the social links separated by bullets.
func SiteFooter(s content.Social) g.Node {
	links := FooterLinks(s)
	nodes := make([]g.Node, 0, 2*len(links))
	for i, l := range links {
		if i > 0 {
			nodes = append(nodes, Div(g.Attr("style", "display:inline-block;width:20px;text-align:center"), g.Text("•")))
		}
		nodes = append(nodes, A(Href(l.URL), g.Text(l.Label)))
	}
	return Footer(
		g.Attr("style", "display:flex;justify-content:flex-end"),
		g.Group(nodes),
	)
}

func analytics(id string) g.Node {
	return g.Group([]g.Node{
		Script(Async(), Src("https://www.googletagmanager.com/gtag/js?id="+url.QueryEscape(id))),
		Script(g.Rawf(`window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag("js",new Date());gtag("config",%q);`, id)),
	})
}

func baseStyle() string {
	h1 := typography.Scale(1.5)
	h3 := typography.Scale(0.25)
	small := typography.Scale(-0.2)
	return fmt.Sprintf(`html{font-size:100%%}
body{margin:0;font-family:Merriweather,Georgia,serif;line-height:1.75;color:hsla(0,0%%,0%%,0.9)}
h1,h2,h3{font-family:Montserrat,sans-serif;margin:%[1]s 0 %[2]s}
h1{font-size:%[3]s;line-height:%[4]s}
h3{font-size:%[5]s;line-height:%[6]s}
small{font-size:%[7]s}
p,ul,ol,pre{margin:0 0 %[2]s}
img{max-width:100%%}
a{color:#007acc;box-shadow:0 1px 0 0 currentColor;text-decoration:none}
a.anchor{box-shadow:none;margin-left:0.25em;visibility:hidden}
h1:hover a.anchor,h2:hover a.anchor,h3:hover a.anchor{visibility:visible}
.form-wrapper{margin:%[2]s 0}
.form-wrapper .message{margin-top:%[8]s}`,
		typography.Rhythm(2), typography.Rhythm(1),
		h1.FontSize, h1.LineHeight,
		h3.FontSize, h3.LineHeight,
		small.FontSize,
		typography.Rhythm(0.5),
	)
}
