package blog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWatchReloadsOnChange(t *testing.T) {
	cfg := testSite(t)
	a := setupTestApp(t, cfg, &fakeSubscriber{})
	// the watcher may still be logging when the test returns
	a.Log = zap.NewNop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.watch(ctx); err != nil {
		t.Fatalf("watch: %v", err)
	}

	// A new directory must be picked up as well as the file inside it.
	writeTestFile(t, filepath.Join(cfg.ContentDir, "blog", "fresh", "index.md"),
		[]byte("---\ntitle: Fresh\ndate: \"2020-02-02\"\n---\nJust written.\n"))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if e, _, err := a.Cache.GetEntry("/blog/fresh/"); err == nil {
			if e.Title != "Fresh" {
				t.Errorf("Title = %q", e.Title)
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("watcher did not reload the new post")
}

func TestWatchMissingDir(t *testing.T) {
	cfg := testSite(t)
	cfg.ContentDir = filepath.Join(t.TempDir(), "missing")
	a := New(cfg)
	if err := a.watch(context.Background()); err == nil {
		t.Fatal("expected an error watching a missing directory")
	}
}
