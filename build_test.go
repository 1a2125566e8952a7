package blog

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func buildTestSite(t *testing.T, cfg SiteConfig) string {
	t.Helper()
	a := New(cfg, WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(func() { a.Close() })
	if err := a.Build(context.Background(), ""); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return cfg.OutputDir
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestBuildWritesSite(t *testing.T) {
	dir := buildTestSite(t, testSite(t))

	for _, name := range []string{
		"index.html",
		"404.html",
		"blog/hello-world/index.html",
		"blog/hello-world/salty_egg.png",
		"blog/my-second-post/index.html",
		"rss.xml",
		"sitemap.xml",
		"robots.txt",
		"manifest.webmanifest",
		"static/subscribe.js",
		"avatar.jpg",
		"icons/icon-48x48.png",
		"icons/icon-512x512.png",
		"hello.txt",
	} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "blog", "unfinished")); !os.IsNotExist(err) {
		t.Error("draft was built")
	}
}

func TestBuildPostPage(t *testing.T) {
	cfg := testSite(t)
	dir := buildTestSite(t, cfg)
	page := readOutput(t, dir, "blog/my-second-post/index.html")

	for _, want := range []string{
		"<h1", "My Second Post!", "May 06, 2015",
		`href="/blog/hello-world/" rel="prev"`,
		`<meta name="twitter:card" content="summary">`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("post page missing %q", want)
		}
	}
	if strings.Contains(page, `rel="next"`) {
		t.Error("newest post should have no next link")
	}

	hello := readOutput(t, dir, "blog/hello-world/index.html")
	if !strings.Contains(hello, `action="`+cfg.Subscribe.Endpoint+`"`) {
		t.Error("static form should post to the relay endpoint")
	}
	if strings.Contains(hello, `name="_csrf"`) {
		t.Error("static form should not carry a CSRF field")
	}
}

func TestBuildResizesWideImages(t *testing.T) {
	dir := buildTestSite(t, testSite(t))
	f, err := os.Open(filepath.Join(dir, "blog", "hello-world", "salty_egg.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != maxImageWidth || cfg.Height != 40*maxImageWidth/800 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestBuildCleansOutput(t *testing.T) {
	cfg := testSite(t)
	stale := filepath.Join(cfg.OutputDir, "stale.html")
	writeTestFile(t, stale, []byte("old"))
	buildTestSite(t, cfg)
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file survived the build")
	}
}

func TestBuildWithoutStaticOrImages(t *testing.T) {
	cfg := testSite(t)
	cfg.StaticDir = filepath.Join(t.TempDir(), "none")
	cfg.AvatarPath = filepath.Join(t.TempDir(), "missing.jpg")
	dir := buildTestSite(t, cfg)
	if _, err := os.Stat(filepath.Join(dir, "avatar.jpg")); !os.IsNotExist(err) {
		t.Error("avatar written without a source")
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		t.Errorf("index.html: %v", err)
	}
}

func TestCheckOutputDir(t *testing.T) {
	if err := checkOutputDir("."); err == nil {
		t.Error("building into the working directory should be refused")
	}
	if err := checkOutputDir("/"); err == nil {
		t.Error("building into / should be refused")
	}
	if err := checkOutputDir(filepath.Join(t.TempDir(), "public")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	writeTestFile(t, filepath.Join(src, "css", "site.css"), []byte("body{}"))
	dst := t.TempDir()
	if err := copyDir(src, dst); err != nil {
		t.Fatal(err)
	}
	if got := readOutput(t, dst, "css/site.css"); got != "body{}" {
		t.Errorf("copied %q", got)
	}
	if err := copyDir(filepath.Join(src, "missing"), dst); !os.IsNotExist(err) {
		t.Errorf("missing source error = %v", err)
	}
}
