package blog

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vedran/blog/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) writeSitemap(w io.Writer, entries []content.Entry) error {
	base := a.Config.Site.SiteURL
	urls := []sitemapURL{
		{Loc: BuildURL(base, "/")},
	}
	for _, e := range entries {
		u := sitemapURL{Loc: BuildURL(base, e.Slug)}
		if !e.Date.IsZero() {
			u.LastMod = e.Date.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}

func (a *App) renderSitemap(c echo.Context, entries []content.Entry) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeSitemap(c.Response(), entries)
}

func (a *App) writeRobots(w io.Writer) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\nSitemap: %s\n", strings.TrimRight(a.Config.Site.SiteURL, "/")+"/sitemap.xml")
	return err
}
