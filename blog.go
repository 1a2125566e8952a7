// Package blog is the engine behind a personal blog. It loads markdown
// entries into a SQLite data layer and either serves them with Echo or
// renders the whole site into a directory of static files.
//
// Pages are produced by the ViewFuncs, which default to the gomponents views
// in the views package and can be replaced with WithViews.
package blog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vedran/blog/content"
	"github.com/vedran/blog/subscribe"
	"github.com/vedran/blog/views"
)

// ViewFuncs holds the components the server and the static build call when
// rendering pages.
type ViewFuncs struct {
	Home        func(pc views.PageContext, entries []content.Entry) templ.Component
	Post        func(pc views.PageContext, page views.PostPage) templ.Component
	NotFound    func(pc views.PageContext) templ.Component
	ServerError func(pc views.PageContext) templ.Component
}

// DefaultViews returns the bundled gomponents pages.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home: func(pc views.PageContext, entries []content.Entry) templ.Component {
			return views.Component(views.Home(pc, entries))
		},
		Post: func(pc views.PageContext, page views.PostPage) templ.Component {
			return views.Component(views.Post(pc, page))
		},
		NotFound: func(pc views.PageContext) templ.Component {
			return views.Component(views.NotFound(pc))
		},
		ServerError: func(pc views.PageContext) templ.Component {
			return views.Component(views.ServerError(pc))
		},
	}
}

// App wires together the store, the cache, the handlers and the views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *EntryCache
	Views  ViewFuncs
	Log    *zap.Logger

	subscriber    subscribe.Subscriber
	submitLimiter *SubmitLimiter
	customRoutes  []func(*App)

	reloadMu sync.Mutex
	cancel   context.CancelFunc
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  DefaultViews(),
		Log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.subscriber == nil {
		a.subscriber = subscribe.NewClient(a.Config.Subscribe.Endpoint, subscribe.WithLogger(a.Log))
	}
	return a
}

// Open opens the data layer. It is called by Start and Build when needed.
func (a *App) Open() error {
	if a.Store != nil {
		return nil
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("blog: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewEntryCache(a.Store, a.Config.CacheTTL)
	return nil
}

// siteDir holds the generated images and post assets the server publishes.
func (a *App) siteDir() string {
	return filepath.Join(a.Config.CacheDir, "site")
}

// load parses the content directory and replaces the stored entries.
func (a *App) load(ctx context.Context) ([]content.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coll, err := content.Load(os.DirFS(a.Config.ContentDir), content.LoadOptions{
		Drafts: a.Config.Drafts,
		Log:    a.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("blog: load content: %w", err)
	}
	entries := coll.Entries()
	if err := a.Store.ReplaceEntries(entries); err != nil {
		return nil, fmt.Errorf("blog: store entries: %w", err)
	}
	return entries, nil
}

// Reload reads the content directory again, republishes the images and post
// assets the server hands out and drops the cached entries.
func (a *App) Reload(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	if err := a.Open(); err != nil {
		return err
	}
	start := time.Now()
	entries, err := a.load(ctx)
	if err != nil {
		return err
	}
	if err := a.writeGeneratedImages(a.siteDir()); err != nil {
		return fmt.Errorf("blog: images: %w", err)
	}
	if err := a.writeAssets(a.siteDir(), entries); err != nil {
		return fmt.Errorf("blog: assets: %w", err)
	}
	a.Cache.Invalidate()
	a.Log.Info("content loaded",
		zap.Int("entries", len(entries)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Start loads the content, installs middleware and routes, and serves until
// the server is shut down.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return errors.New("blog: SessionSecret is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.Reload(ctx); err != nil {
		return err
	}

	a.setup()

	if a.Config.Watch {
		if err := a.watch(ctx); err != nil {
			return err
		}
	}

	a.Log.Info("serving", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.Site.SiteURL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// setup installs the limiter, middleware, built-in routes and custom routes.
func (a *App) setup() {
	a.submitLimiter = NewSubmitLimiter(a.Config.Subscribe.Limit, a.Config.Subscribe.Window)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.submitLimiter != nil {
		a.submitLimiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
