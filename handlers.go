package blog

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vedran/blog/subscribe"
	"github.com/vedran/blog/views"
)

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/static/subscribe.js", a.handleSubscribeScript)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/rss.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/manifest.webmanifest", a.handleManifest)

	e.POST("/subscribe/", a.handleSubscribe)

	e.GET("/", a.handleHome)
	e.GET("/*", a.handlePage)
}

// pageContext collects what every page needs for the current request.
func (a *App) pageContext(c echo.Context) views.PageContext {
	pc := a.basePageContext(c.Request().URL.Path)
	pc.Form = views.FormContext{
		Action:    "/subscribe/",
		CSRFField: csrfField,
		CSRFToken: CsrfToken(c),
		Result:    popFlash(c),
	}
	return pc
}

func (a *App) basePageContext(p string) views.PageContext {
	return views.PageContext{
		Site:       a.Config.Site,
		Path:       p,
		Avatar:     AvatarURL,
		TrackingID: a.Config.TrackingID,
		Form:       views.FormContext{Action: "/subscribe/", Result: subscribe.Idle{}},
	}
}

func (a *App) handleHome(c echo.Context) error {
	entries, err := a.Cache.ListEntries()
	if err != nil {
		return err
	}
	return renderPage(c, "home", http.StatusOK, a.Views.Home(a.pageContext(c), entries))
}

// handlePage serves a post by its slug, or else a published file.
func (a *App) handlePage(c echo.Context) error {
	p := c.Request().URL.Path
	if !hasExt(p) {
		e, nav, err := a.Cache.GetEntry(p)
		if err == nil {
			page := views.NewPostPage(a.Config.Site, e, nav)
			return renderPage(c, "post", http.StatusOK, a.Views.Post(a.pageContext(c), page))
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if name, ok := a.lookupFile(p); ok {
		return c.File(name)
	}
	return echo.ErrNotFound
}

// lookupFile resolves a URL path against the generated files and then the
// static directory.
func (a *App) lookupFile(p string) (string, bool) {
	clean := filepath.FromSlash(path.Clean("/" + p))
	for _, root := range []string{a.siteDir(), a.Config.StaticDir} {
		name := filepath.Join(root, clean)
		info, err := os.Stat(name)
		if err == nil && !info.IsDir() {
			return name, true
		}
	}
	return "", false
}

// handleSubscribe relays a subscription. Script clients send X-Fragment and
// get the message back; plain form posts are redirected to the page they
// came from, which shows the message from a flash.
func (a *App) handleSubscribe(c echo.Context) error {
	if !a.submitLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many requests. Try again in a minute.")
	}

	form := subscribe.NewForm(a.subscriber, a.Log)
	state := form.Submit(c.Request().Context(), c.FormValue("email"))
	Subscriptions.WithLabelValues(subscribe.Outcome(state)).Inc()

	if c.Request().Header.Get("X-Fragment") == "true" {
		code := http.StatusOK
		if _, failed := state.(subscribe.Failed); failed {
			code = http.StatusBadGateway
		}
		return c.String(code, subscribe.Message(state))
	}

	if err := setFlash(c, subscribe.Outcome(state)); err != nil {
		a.Log.Warn("store subscription flash", zap.Error(err))
	}
	return c.Redirect(http.StatusSeeOther, backTo(c))
}

// backTo returns the local path of the referring page, or the home page.
func backTo(c echo.Context) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request().Host) {
		return "/"
	}
	return ref.Path
}

func (a *App) handleSubscribeScript(c echo.Context) error {
	data, err := fs.ReadFile(EmbeddedAssets, subscribeScript)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", data)
}

func (a *App) handleFeed(c echo.Context) error {
	entries, err := a.Cache.ListEntries()
	if err != nil {
		return err
	}
	return a.renderRSS(c, entries)
}

func (a *App) handleSitemap(c echo.Context) error {
	entries, err := a.Cache.ListEntries()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, entries)
}

func (a *App) handleRobots(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return a.writeRobots(c.Response())
}

func (a *App) handleManifest(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/manifest+json")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeManifest(c.Response())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = renderPage(c, "not_found", http.StatusNotFound, a.Views.NotFound(a.basePageContext(c.Request().URL.Path)))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = renderPage(c, "server_error", code, a.Views.ServerError(a.basePageContext(c.Request().URL.Path)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
