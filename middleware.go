package blog

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/vedran/blog/subscribe"
)

const (
	sessionName = "blog_session"
	flashKey    = "subscribe"
	csrfField   = "_csrf"
)

func (a *App) setupMiddleware() {
	e := a.Echo
	e.HideBanner = true
	e.HidePort = true

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			a.Log.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return isImage(c.Request().URL.Path)
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: contentSecurityPolicy(a.Config.Subscribe.Endpoint),
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:" + csrfField,
		CookieName:  csrfField,
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure: a.Config.CookieSecure,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/metrics"
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/static/") || path == "/metrics" {
				return true
			}
			return hasExt(path) && !a.isEntry(path+"/")
		},
	}))

	e.Use(cacheControlMiddleware)
}

// contentSecurityPolicy allows the analytics tag and lets the subscription
// form reach the relay at endpoint.
func contentSecurityPolicy(endpoint string) string {
	relay := ""
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		relay = " " + u.Scheme + "://" + u.Host
	}
	return "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline' https://www.googletagmanager.com; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' https: data:; " +
		"font-src 'self'; " +
		"connect-src 'self' https://*.google-analytics.com" + relay + "; " +
		"form-action 'self'" + relay
}

// isEntry reports whether slug names a loaded post.
func (a *App) isEntry(slug string) bool {
	_, _, err := a.Cache.GetEntry(slug)
	return err == nil
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/icons/") || path == AvatarURL:
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/rss.xml" || path == "/robots.txt" || path == "/manifest.webmanifest":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case path == "/subscribe/" || path == "/metrics":
			c.Response().Header().Set("Cache-Control", "no-store")
		case hasExt(path):
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		default:
			// Pages carry the CSRF token and the subscription flash.
			c.Response().Header().Set("Cache-Control", "no-cache")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// setFlash stores the outcome of a subscription for the next page view.
func setFlash(c echo.Context, outcome string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.AddFlash(outcome, flashKey)
	return sess.Save(c.Request(), c.Response())
}

// popFlash returns the subscription outcome stored by setFlash, once.
func popFlash(c echo.Context) subscribe.State {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return subscribe.Idle{}
	}
	flashes := sess.Flashes(flashKey)
	if len(flashes) == 0 {
		return subscribe.Idle{}
	}
	_ = sess.Save(c.Request(), c.Response())
	outcome, _ := flashes[0].(string)
	return subscribe.FromOutcome(outcome)
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
