package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/vedran/blog/content"
)

// absoluteURL resolves p against base. Values that already carry a scheme
// are returned unchanged.
func absoluteURL(base, p string) string {
	if strings.Contains(p, "://") {
		return p
	}
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return p
	}
	trailing := strings.HasSuffix(p, "/")
	u.Path = path.Join("/", u.Path, p)
	if trailing && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block for the site.
func WebsiteJsonLD(site content.Site) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Title,
		"url":      absoluteURL(site.SiteURL, "/"),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(site content.Site, e content.Entry, description string) string {
	postURL := absoluteURL(site.SiteURL, e.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    e.Title,
		"description": description,
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !e.Date.IsZero() {
		data["datePublished"] = e.Date.Format(time.RFC3339)
	}
	if e.FeaturedImage != "" {
		data["image"] = absoluteURL(site.SiteURL, e.FeaturedImage)
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
