package blog

import (
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vedran/blog/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

func (a *App) writeRSS(w io.Writer, entries []content.Entry) error {
	site := a.Config.Site
	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		pubDate := ""
		if !e.Date.IsZero() {
			pubDate = e.Date.Format(time.RFC1123Z)
		}
		desc := e.Description
		if desc == "" {
			desc = e.Excerpt
		}
		postURL := BuildURL(site.SiteURL, e.Slug)
		items = append(items, rssItem{
			Title:       e.Title,
			Link:        postURL,
			Description: desc,
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        BuildURL(site.SiteURL, "/"),
			Description: site.Description,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}

func (a *App) renderRSS(c echo.Context, entries []content.Entry) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeRSS(c.Response(), entries)
}
