package blog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/vedran/blog/views"
)

// Build renders the whole site into dir (Config.OutputDir when empty). The
// directory is emptied first; the static directory is copied in, then the
// generated images, the post assets and every page are written.
func (a *App) Build(ctx context.Context, dir string) error {
	if dir == "" {
		dir = a.Config.OutputDir
	}
	if err := checkOutputDir(dir); err != nil {
		return err
	}
	if err := a.Open(); err != nil {
		return err
	}
	start := time.Now()

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("blog: clean %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("blog: create %s: %w", dir, err)
	}

	if err := copyDir(a.Config.StaticDir, dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("blog: copy static: %w", err)
		}
		a.Log.Debug("no static directory", zap.String("path", a.Config.StaticDir))
	}

	entries, err := a.load(ctx)
	if err != nil {
		return err
	}
	if a.Cache != nil {
		a.Cache.Invalidate()
	}

	if err := a.writeGeneratedImages(dir); err != nil {
		return fmt.Errorf("blog: images: %w", err)
	}
	if err := a.writeAssets(dir, entries); err != nil {
		return fmt.Errorf("blog: assets: %w", err)
	}
	script, err := fs.ReadFile(EmbeddedAssets, subscribeScript)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "static", "subscribe.js"), script); err != nil {
		return err
	}

	if err := writeComponent(ctx, filepath.Join(dir, "index.html"),
		a.Views.Home(a.staticPageContext("/"), entries)); err != nil {
		return err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		nav, err := a.Store.Navigation(e.Slug)
		if err != nil {
			return fmt.Errorf("blog: navigation of %s: %w", e.Slug, err)
		}
		page := views.NewPostPage(a.Config.Site, e, nav)
		name := filepath.Join(dir, filepath.FromSlash(path.Join(e.Slug, "index.html")))
		if err := writeComponent(ctx, name, a.Views.Post(a.staticPageContext(e.Slug), page)); err != nil {
			return err
		}
	}
	if err := writeComponent(ctx, filepath.Join(dir, "404.html"),
		a.Views.NotFound(a.staticPageContext("/404.html"))); err != nil {
		return err
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"rss.xml", func(w io.Writer) error { return a.writeRSS(w, entries) }},
		{"sitemap.xml", func(w io.Writer) error { return a.writeSitemap(w, entries) }},
		{"robots.txt", a.writeRobots},
		{"manifest.webmanifest", a.writeManifest},
	}
	for _, o := range outputs {
		if err := writeWith(filepath.Join(dir, o.name), o.write); err != nil {
			return fmt.Errorf("blog: %s: %w", o.name, err)
		}
	}

	a.Log.Info("site built",
		zap.String("dir", dir),
		zap.Int("entries", len(entries)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// staticPageContext is the page context in the static build: the form posts
// straight to the relay endpoint and carries no CSRF token.
func (a *App) staticPageContext(p string) views.PageContext {
	pc := a.basePageContext(p)
	pc.Form.Action = a.Config.Subscribe.Endpoint
	return pc
}

// checkOutputDir refuses output directories whose removal would be
// destructive beyond the build.
func checkOutputDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if abs == wd || abs == filepath.Dir(abs) {
		return fmt.Errorf("blog: refusing to build into %s", dir)
	}
	return nil
}

func writeComponent(ctx context.Context, name string, cmp templ.Component) error {
	return writeWith(name, func(w io.Writer) error {
		return cmp.Render(ctx, w)
	})
}

func writeWith(name string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// copyDir copies the contents of src into dst.
func copyDir(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return err
	}
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return writeFile(out, data)
	})
}
