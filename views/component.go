// Package views renders the site's pages with gomponents. Every page function
// takes the data it shows explicitly; there is no shared global state.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"

	"github.com/vedran/blog/content"
	"github.com/vedran/blog/subscribe"
)

// Component adapts a node to templ.Component, the type handlers and the
// static build render.
func Component(n g.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return n.Render(w)
	})
}

// PageContext is what every page needs besides its own content.
type PageContext struct {
	Site       content.Site
	Path       string // URL path of the page being rendered
	Avatar     string // URL of the header avatar
	TrackingID string // Google Analytics measurement ID, optional
	Form       FormContext
}

// FormContext configures the subscription form.
type FormContext struct {
	Action    string          // where the form posts
	CSRFField string          // hidden field name, used when CSRFToken is set
	CSRFToken string          // empty in static builds
	Result    subscribe.State // outcome shown under the form
}

// IsRootPage reports whether the page is the home page.
func (pc PageContext) IsRootPage() bool {
	return pc.Path == "/"
}
